// Package cache stores built count tables between process runs.
//
// Tables are deterministic functions of n, so a cached entry never goes stale
// in content; TTLs exist only to bound disk usage. Keys are produced by a
// Keyer so that callers sharing one cache directory can be isolated with a
// ScopedKeyer.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the stored bytes and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Keyer derives cache keys for cached artifacts.
type Keyer interface {
	// TableKey returns the key for the count table of n items.
	TableKey(n int) string
}

// TableFormatVersion is mixed into table keys. Bump it whenever the binary
// table encoding changes so old entries are ignored instead of misread.
const TableFormatVersion = 2

// DefaultKeyer is the standard Keyer.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// TableKey returns "table:<hash(n, version)>".
func (DefaultKeyer) TableKey(n int) string {
	return hashKey("table", n, TableFormatVersion)
}
