package derange

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/derange/pkg/cache"
	"github.com/matzehuels/derange/pkg/errors"
	"github.com/matzehuels/derange/pkg/observability"
)

// cacheKeyType labels table entries in cache hooks.
const cacheKeyType = "table"

// Registry owns at most one Table per n and hands the same immutable table
// to every caller. Concurrent requests for an unbuilt n share a single build,
// which keeps running when a waiting caller gives up.
// Tables for different n are independent and may be built in parallel.
//
// A Registry is safe for concurrent use.
type Registry struct {
	maxN   int
	cache  cache.Cache
	keyer  cache.Keyer
	ttl    time.Duration
	logger *log.Logger

	mu     sync.RWMutex
	tables map[int]*Table
	group  singleflight.Group
}

// Option configures a Registry.
type Option func(*Registry)

// WithMaxN caps the n a registry will build tables for. Values outside
// [2, MaxN] are ignored.
func WithMaxN(n int) Option {
	return func(r *Registry) {
		if n >= 2 && n <= MaxN {
			r.maxN = n
		}
	}
}

// WithCache persists built tables in c under keys from keyer, expiring after
// ttl (zero keeps them forever). A nil keyer selects cache.DefaultKeyer.
func WithCache(c cache.Cache, keyer cache.Keyer, ttl time.Duration) Option {
	return func(r *Registry) {
		if c != nil {
			r.cache = c
		}
		if keyer != nil {
			r.keyer = keyer
		}
		r.ttl = ttl
	}
}

// WithLogger sets the logger used for build and cache diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRegistry creates an empty registry. Without options it keeps tables in
// memory only and accepts n up to MaxN.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		maxN:   MaxN,
		cache:  cache.NewNullCache(),
		keyer:  cache.NewDefaultKeyer(),
		logger: log.Default(),
		tables: make(map[int]*Table),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// MaxN returns the largest n this registry accepts.
func (r *Registry) MaxN() int { return r.maxN }

// Table returns the count table for n, building or loading it on first use.
func (r *Registry) Table(ctx context.Context, n int) (*Table, error) {
	if n < 1 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "table needs at least one item, got n=%d", n)
	}
	if n > r.maxN {
		return nil, errors.New(errors.ErrCodeOverflow, "n=%d exceeds configured maximum %d", n, r.maxN)
	}

	r.mu.RLock()
	t, ok := r.tables[n]
	r.mu.RUnlock()
	if ok {
		return t, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// The shared build is detached from any single caller's cancellation;
	// each caller stops waiting on its own ctx while the build runs on.
	buildCtx := context.WithoutCancel(ctx)
	ch := r.group.DoChan(strconv.Itoa(n), func() (any, error) {
		r.mu.RLock()
		t, ok := r.tables[n]
		r.mu.RUnlock()
		if ok {
			return t, nil
		}

		t, err := r.loadOrBuild(buildCtx, n)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.tables[n] = t
		r.mu.Unlock()
		return t, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Table), nil
	}
}

// loadOrBuild consults the persistent cache before building. Cache failures
// are logged and never fail the request; the table is simply rebuilt.
func (r *Registry) loadOrBuild(ctx context.Context, n int) (*Table, error) {
	key := r.keyer.TableKey(n)

	data, hit, err := r.cache.Get(ctx, key)
	switch {
	case err != nil:
		r.logger.Warn("count table cache read failed", "n", n, "err", err)
	case hit:
		var t Table
		if err := t.UnmarshalBinary(data); err == nil && t.N() == n {
			observability.Cache().OnCacheHit(ctx, cacheKeyType)
			r.logger.Debug("count table loaded from cache", "n", n, "bytes", len(data))
			return &t, nil
		}
		r.logger.Warn("discarding unreadable cached count table", "n", n)
		_ = r.cache.Delete(ctx, key)
	}
	observability.Cache().OnCacheMiss(ctx, cacheKeyType)

	start := time.Now()
	observability.Table().OnTableBuildStart(ctx, n)
	t, err := NewTable(n)
	elapsed := time.Since(start)
	if err != nil {
		observability.Table().OnTableBuildComplete(ctx, n, 0, elapsed, err)
		return nil, err
	}
	observability.Table().OnTableBuildComplete(ctx, n, t.Cells(), elapsed, nil)
	r.logger.Debug("built count table", "n", n, "cells", t.Cells(), "total", t.Total(), "duration", elapsed)

	if data, err := t.MarshalBinary(); err == nil {
		if err := r.cache.Set(ctx, key, data, r.ttl); err != nil {
			r.logger.Warn("count table cache write failed", "n", n, "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, cacheKeyType, len(data))
		}
	}
	return t, nil
}

// Warm builds the tables for every n in ns in parallel. The first error
// stops waiting for the remaining builds and is returned.
func (r *Registry) Warm(ctx context.Context, ns ...int) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, n := range ns {
		g.Go(func() error {
			_, err := r.Table(gctx, n)
			return err
		})
	}
	return g.Wait()
}

// Loaded returns how many tables are held in memory.
func (r *Registry) Loaded() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tables)
}

// NthDerangement returns the a-th derangement of n items (a mod !n) using
// the registry's shared table for n.
func (r *Registry) NthDerangement(ctx context.Context, n int, a uint64) ([]int, error) {
	if err := errors.ValidateN(n, r.maxN); err != nil {
		return nil, err
	}
	t, err := r.Table(ctx, n)
	if err != nil {
		return nil, err
	}
	return t.Unrank(a)
}

// Rank returns the lexicographic rank of derangement d.
func (r *Registry) Rank(ctx context.Context, d []int) (uint64, error) {
	if err := errors.ValidateN(len(d), r.maxN); err != nil {
		return 0, err
	}
	t, err := r.Table(ctx, len(d))
	if err != nil {
		return 0, err
	}
	return t.Rank(d)
}
