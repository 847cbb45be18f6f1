// Package directory holds the registered-farmer directory: a single persisted
// record mapping identifier (phone, else email) to the user. The whole mapping
// is read and written per operation, mirroring the storage layout the web
// client used; the store behind it decides durability.
package directory

import (
	"context"
	"encoding/json"

	"github.com/shivxmhere/Krishi-Net-1.0-sub000/internal/kvstore"
	"github.com/shivxmhere/Krishi-Net-1.0-sub000/internal/user/domain"
)

// StorageKey is the key the serialized directory lives under.
const StorageKey = "krishi_net_local_users"

// Record is a directory entry: the user plus the optional password hash.
// OTP-only farmers have no hash.
type Record struct {
	domain.User
	PasswordHash string `json:"passwordHash,omitempty"`
}

// Key derives the directory key for a user: phone when non-empty, else email.
// This is the single key-derivation rule; entries are never re-keyed after a
// profile change (the value is replaced in place under the old key).
func Key(u domain.User) string {
	if u.Phone != "" {
		return u.Phone
	}
	return u.Email
}

// Directory provides lookups and upserts over the persisted mapping.
type Directory struct {
	kv kvstore.Store
}

// New returns a Directory backed by the given store.
func New(kv kvstore.Store) *Directory {
	return &Directory{kv: kv}
}

// Upsert inserts or replaces the entry for rec under its derived key and
// persists the whole directory.
func (d *Directory) Upsert(ctx context.Context, rec Record) error {
	users, err := d.load(ctx)
	if err != nil {
		return err
	}
	users[Key(rec.User)] = rec
	return d.save(ctx, users)
}

// FindByIdentifier returns the first entry whose phone or email equals
// identifier, or nil if absent.
func (d *Directory) FindByIdentifier(ctx context.Context, identifier string) (*Record, error) {
	users, err := d.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, rec := range users {
		if rec.Phone == identifier || rec.Email == identifier {
			rec := rec
			return &rec, nil
		}
	}
	return nil, nil
}

// FindByID returns the entry with the given user id, or nil if absent.
func (d *Directory) FindByID(ctx context.Context, id string) (*Record, error) {
	users, err := d.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, rec := range users {
		if rec.ID == id {
			rec := rec
			return &rec, nil
		}
	}
	return nil, nil
}

// ReplaceByID overwrites the value of the entry whose id matches u.ID, keeping
// the entry under its existing key even when phone or email changed. No-op when
// the id is not present. The password hash of the existing entry is preserved.
func (d *Directory) ReplaceByID(ctx context.Context, u domain.User) error {
	users, err := d.load(ctx)
	if err != nil {
		return err
	}
	for key, rec := range users {
		if rec.ID == u.ID {
			users[key] = Record{User: u, PasswordHash: rec.PasswordHash}
			return d.save(ctx, users)
		}
	}
	return nil
}

// All returns every entry keyed by its directory key.
func (d *Directory) All(ctx context.Context) (map[string]Record, error) {
	return d.load(ctx)
}

// load reads the persisted mapping. A missing or malformed record reads as an
// empty directory rather than an error.
func (d *Directory) load(ctx context.Context) (map[string]Record, error) {
	raw, ok, err := d.kv.Get(ctx, StorageKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return map[string]Record{}, nil
	}
	var users map[string]Record
	if err := json.Unmarshal(raw, &users); err != nil || users == nil {
		return map[string]Record{}, nil
	}
	return users, nil
}

func (d *Directory) save(ctx context.Context, users map[string]Record) error {
	raw, err := json.Marshal(users)
	if err != nil {
		return err
	}
	return d.kv.Set(ctx, StorageKey, raw)
}
