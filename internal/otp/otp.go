// Package otp generates and verifies the one-time codes of the login and
// registration flows, and models the single pending challenge.
package otp

import (
	"crypto/rand"
	"crypto/subtle"
	"time"
)

const codeDigits = 6

// GenerateCode returns a 6-digit numeric code string (e.g. "042317").
// Each digit is drawn independently from crypto/rand; leading zeros allowed.
func GenerateCode() (string, error) {
	b := make([]byte, codeDigits)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	s := make([]byte, codeDigits)
	for i := 0; i < codeDigits; i++ {
		s[i] = '0' + (b[i] % 10)
	}
	return string(s), nil
}

// Verify reports whether entered equals issued, byte for byte. No trimming, no
// case folding; any length mismatch is a mismatch. Constant time over equal
// lengths.
func Verify(entered, issued string) bool {
	if len(entered) != len(issued) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(entered), []byte(issued)) == 1
}

// Challenge is a pending one-time code awaiting verification. At most one is
// live per auth flow; issuing a new one discards the previous.
type Challenge struct {
	Identifier string // phone or email the code was issued for
	Code       string
	IssuedAt   time.Time
	ExpiresAt  time.Time // zero when expiry is disabled
}

// NewChallenge issues a fresh challenge for identifier. A zero ttl disables
// expiry and the challenge stays valid until overwritten or discarded.
func NewChallenge(identifier string, ttl time.Duration, now time.Time) (*Challenge, error) {
	code, err := GenerateCode()
	if err != nil {
		return nil, err
	}
	c := &Challenge{Identifier: identifier, Code: code, IssuedAt: now}
	if ttl > 0 {
		c.ExpiresAt = now.Add(ttl)
	}
	return c, nil
}

// Expired reports whether the challenge has passed its expiry. Always false
// when expiry is disabled.
func (c *Challenge) Expired(now time.Time) bool {
	if c.ExpiresAt.IsZero() {
		return false
	}
	return !c.ExpiresAt.After(now)
}
