// Package cache is the local key-value mirror of the remote snapshot.
package cache

import (
	"context"
	"fmt"
	"strings"
)

// Cache stores string values under string keys.
type Cache interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Open returns the cache backend by name, storing its files under dir.
func Open(backend, dir string) (Cache, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendFile:
		return NewFile(dir)
	case BackendSQLite:
		return OpenSQLite(context.Background(), dir)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q (want file, sqlite or memory)", backend)
	}
}
