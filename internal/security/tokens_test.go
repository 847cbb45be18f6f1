package security

import (
	"testing"
	"time"
)

func newTestProvider() *TokenProvider {
	return NewTokenProvider("test-secret", "krishi-auth", "krishi-api", time.Hour)
}

func TestIssueValidate_RoundTrip(t *testing.T) {
	p := newTestProvider()

	token, expiresAt, err := p.Issue("u1", "Asha", "9999999999")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if token == "" {
		t.Fatal("Issue returned empty token")
	}
	if !expiresAt.After(time.Now()) {
		t.Errorf("expiresAt = %v, want in the future", expiresAt)
	}

	userID, err := p.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if userID != "u1" {
		t.Errorf("userID = %q, want %q", userID, "u1")
	}
}

func TestValidate_RejectsWrongSecret(t *testing.T) {
	p := newTestProvider()
	token, _, err := p.Issue("u1", "", "")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	other := NewTokenProvider("other-secret", "krishi-auth", "krishi-api", time.Hour)
	if _, err := other.Validate(token); err == nil {
		t.Error("Validate should reject a token signed with a different secret")
	}
}

func TestValidate_RejectsWrongIssuerAudience(t *testing.T) {
	p := newTestProvider()
	token, _, err := p.Issue("u1", "", "")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	wrongIss := NewTokenProvider("test-secret", "someone-else", "krishi-api", time.Hour)
	if _, err := wrongIss.Validate(token); err == nil {
		t.Error("Validate should reject a token with the wrong issuer")
	}
	wrongAud := NewTokenProvider("test-secret", "krishi-auth", "other-api", time.Hour)
	if _, err := wrongAud.Validate(token); err == nil {
		t.Error("Validate should reject a token with the wrong audience")
	}
}

func TestValidate_RejectsExpired(t *testing.T) {
	p := NewTokenProvider("test-secret", "krishi-auth", "krishi-api", -time.Minute)
	token, _, err := p.Issue("u1", "", "")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := p.Validate(token); err == nil {
		t.Error("Validate should reject an expired token")
	}
}

func TestValidate_RejectsGarbage(t *testing.T) {
	p := newTestProvider()
	if _, err := p.Validate("not-a-token"); err == nil {
		t.Error("Validate should reject a malformed token")
	}
}
