// Package session persists the single active session: the logged-in user and
// the bearer token, stored as two independent records. The farm-record API
// reads the token from the same key.
package session

import (
	"context"
	"encoding/json"

	"github.com/shivxmhere/Krishi-Net-1.0-sub000/internal/kvstore"
	"github.com/shivxmhere/Krishi-Net-1.0-sub000/internal/user/domain"
)

// Storage keys, kept byte-compatible with the web client's records.
const (
	UserKey  = "krishi_net_user"
	TokenKey = "krishi_net_token"
)

// Store reads and writes the current session.
type Store struct {
	kv kvstore.Store
}

// New returns a session store backed by the given key-value store.
func New(kv kvstore.Store) *Store {
	return &Store{kv: kv}
}

// Current returns the persisted session user, or nil when absent. A user
// record without a token record is a stale session and is cleared. Malformed
// data fails safe: the record is cleared and nil is returned, never an error
// the caller has to handle differently from "not logged in".
func (s *Store) Current(ctx context.Context) (*domain.User, error) {
	raw, ok, err := s.kv.Get(ctx, UserKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	if _, hasToken, err := s.kv.Get(ctx, TokenKey); err != nil {
		return nil, err
	} else if !hasToken {
		_ = s.Clear(ctx)
		return nil, nil
	}
	var u domain.User
	if err := json.Unmarshal(raw, &u); err != nil || u.ID == "" {
		_ = s.Clear(ctx)
		return nil, nil
	}
	return &u, nil
}

// Set overwrites the persisted session with the given user.
func (s *Store) Set(ctx context.Context, u domain.User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, UserKey, raw)
}

// SetToken overwrites the persisted bearer token.
func (s *Store) SetToken(ctx context.Context, token string) error {
	return s.kv.Set(ctx, TokenKey, []byte(token))
}

// Token returns the persisted bearer token, or "" when absent.
func (s *Store) Token(ctx context.Context) (string, error) {
	raw, ok, err := s.kv.Get(ctx, TokenKey)
	if err != nil || !ok {
		return "", err
	}
	return string(raw), nil
}

// ClearToken removes only the bearer token record.
func (s *Store) ClearToken(ctx context.Context) error {
	return s.kv.Delete(ctx, TokenKey)
}

// Clear removes the session user and token. Clearing an absent session is not
// an error.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, UserKey); err != nil {
		return err
	}
	return s.kv.Delete(ctx, TokenKey)
}
