// Package kvstore provides the string-keyed persistence layer the session and
// directory records live in. The interface is small on purpose so tests run
// against the in-memory store and production against Postgres.
package kvstore

import "context"

// Store is durable key-value storage scoped to this application.
// Get reports ok false for a missing key. Delete of a missing key is not an error.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
