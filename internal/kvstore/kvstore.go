// Package kvstore is the string-keyed storage port the name list and the
// predetermined winner are persisted through.
package kvstore

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("kvstore: key not found")

const (
	table     = "kv_entries"
	colName   = "name"
	colValue  = "value"
	upsertSQL = "ON CONFLICT (" + colName + ") DO UPDATE SET " + colValue + " = EXCLUDED." + colValue
)

// UpdateFunc computes the next value of a key from its current one. found is
// false when the key has no value. Returning an error aborts the update.
type UpdateFunc func(current string, found bool) (string, error)

// Store gets and sets string values by key. Update runs a read-modify-write
// cycle that no other Update of the same key interleaves with.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Update(ctx context.Context, key string, fn UpdateFunc) error
	Close() error
}

// Driver names accepted by Open.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Options selects and configures a backend.
type Options struct {
	Driver      string
	SQLitePath  string
	DatabaseURL string
}

// Open returns the backend named by opts.Driver, migrated and ready.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case "", DriverMemory:
		return NewMemory(), nil
	case DriverSQLite:
		if opts.SQLitePath == "" {
			return nil, errors.New("kvstore: sqlite path is required")
		}
		return NewSQLite(ctx, opts.SQLitePath)
	case DriverPostgres:
		if opts.DatabaseURL == "" {
			return nil, errors.New("kvstore: database url is required")
		}
		return NewPostgres(ctx, opts.DatabaseURL)
	default:
		return nil, fmt.Errorf("kvstore: unknown driver %q", opts.Driver)
	}
}
