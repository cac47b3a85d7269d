// Package kv implements the byte-level key/value repositories that back the
// account store: SQLite, Postgres, Redis, S3 and in-memory.
//
// Every backend reports an opaque version with each value so callers can do
// optimistic read-modify-write through PutIf. A missing key has the empty
// version, and PutIf with the empty version only succeeds if the key is
// still missing. A lost race is reported as common.ErrConflict.
package kv

import "context"

type Repository interface {
	// Get returns the value and its version. A missing key yields
	// nil, "", nil.
	Get(ctx context.Context, key string) ([]byte, string, error)

	// Put stores value unconditionally.
	Put(ctx context.Context, key string, value []byte) error

	// PutIf stores value only if the key is still at version.
	PutIf(ctx context.Context, key string, value []byte, version string) error

	// Delete removes the key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
