// Package observability provides hooks for metrics, tracing, and logging.
//
// Libraries call the registered hooks; applications register implementations
// at startup. The defaults are no-ops, so library code never depends on a
// particular backend.
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetTableHooks(&myTableHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Table().OnTableBuildStart(ctx, n)
//	// ... build ...
//	observability.Table().OnTableBuildComplete(ctx, n, cells, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Table Hooks
// =============================================================================

// TableHooks receives events from count table construction.
type TableHooks interface {
	// OnTableBuildStart records the start of a build for n items.
	OnTableBuildStart(ctx context.Context, n int)

	// OnTableBuildComplete records the end of a build. cells is the number of
	// table cells allocated; it is zero when err is non-nil.
	OnTableBuildComplete(ctx context.Context, n int, cells int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopTableHooks is a no-op implementation of TableHooks.
type NoopTableHooks struct{}

func (NoopTableHooks) OnTableBuildStart(context.Context, int)                                {}
func (NoopTableHooks) OnTableBuildComplete(context.Context, int, int, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	tableHooks TableHooks = NoopTableHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	hooksMu    sync.RWMutex
)

// SetTableHooks registers custom table hooks.
// This should be called once at application startup before any tables are built.
func SetTableHooks(h TableHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		tableHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Table returns the registered table hooks.
func Table() TableHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return tableHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	tableHooks = NoopTableHooks{}
	cacheHooks = NoopCacheHooks{}
}
