// Package cache holds the exchange-rate cache shared by request handlers and
// the refresh job.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"luxe-estates.backend/pkg/currency"
	"luxe-estates.backend/pkg/logger"
	"luxe-estates.backend/pkg/metrics"
)

// MirrorKey is the redis key holding the latest live snapshot.
const MirrorKey = "currency:rates:latest"

// RateProvider fetches a live snapshot from upstream.
type RateProvider interface {
	FetchRates(ctx context.Context) (*currency.Snapshot, error)
}

// DefaultFailureBackoff is how long a failed fetch suppresses new upstream
// calls.
const DefaultFailureBackoff = 15 * time.Second

const fetchKey = "rates"

// RateCache keeps the latest live snapshot for ttl. A failed upstream fetch
// yields the static fallback table, which is never cached. Concurrent misses
// share one upstream call.
type RateCache struct {
	provider RateProvider
	ttl      time.Duration
	backoff  time.Duration
	mirror   *redis.Client
	metrics  *metrics.Metrics
	now      func() time.Time
	group    singleflight.Group

	mu         sync.Mutex
	snapshot   *currency.Snapshot
	storedAt   time.Time
	retryAfter time.Time
}

// Option configures a RateCache.
type Option func(*RateCache)

// WithMirror shares snapshots across instances through redis.
func WithMirror(client *redis.Client) Option {
	return func(c *RateCache) { c.mirror = client }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *RateCache) { c.now = now }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *RateCache) { c.metrics = m }
}

// WithFailureBackoff sets how long Get serves the fallback table without
// calling upstream after a failed fetch. Zero retries on every miss.
func WithFailureBackoff(d time.Duration) Option {
	return func(c *RateCache) { c.backoff = d }
}

func NewRateCache(provider RateProvider, ttl time.Duration, opts ...Option) *RateCache {
	c := &RateCache{provider: provider, ttl: ttl, backoff: DefaultFailureBackoff, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns a fresh cached snapshot, then a fresh mirrored one, then a
// live fetch, and finally the fallback table.
func (c *RateCache) Get(ctx context.Context) currency.Snapshot {
	c.mu.Lock()
	if c.freshLocked() {
		snap := *c.snapshot
		c.mu.Unlock()
		return c.served(snap, currency.SourceCache)
	}
	backingOff := c.now().Before(c.retryAfter)
	c.mu.Unlock()

	if snap, storedAt, ok := c.loadMirror(ctx); ok {
		c.mu.Lock()
		c.snapshot, c.storedAt = snap, storedAt
		c.mu.Unlock()
		return c.served(*snap, currency.SourceCache)
	}
	if backingOff {
		return c.served(currency.FallbackSnapshot(c.now()), currency.SourceFallback)
	}

	snap, err := c.fetch(ctx)
	if err != nil {
		logger.Warn(ctx, "Exchange rate fetch failed, serving fallback table", zap.Error(err))
		return c.served(currency.FallbackSnapshot(c.now()), currency.SourceFallback)
	}
	return c.served(snap, currency.SourceLive)
}

// Refresh fetches from upstream regardless of freshness or backoff. On
// failure the cached snapshot is left untouched.
func (c *RateCache) Refresh(ctx context.Context) (currency.Snapshot, error) {
	snap, err := c.fetch(ctx)
	if err != nil {
		return currency.Snapshot{}, err
	}
	c.metrics.ObserveRateSource(string(currency.SourceLive))
	return snap, nil
}

// Invalidate drops the in-process snapshot.
func (c *RateCache) Invalidate() {
	c.mu.Lock()
	c.snapshot = nil
	c.storedAt = time.Time{}
	c.mu.Unlock()
}

func (c *RateCache) served(snap currency.Snapshot, source currency.Source) currency.Snapshot {
	snap.Source = source
	snap.Rates = snap.Rates.Merge(currency.FallbackRates())
	c.metrics.ObserveRateSource(string(source))
	return snap
}

func (c *RateCache) freshLocked() bool {
	return c.snapshot != nil && c.now().Sub(c.storedAt) < c.ttl
}

// fetch calls upstream without holding mu. Callers that arrive while a fetch
// is in flight wait for its result.
func (c *RateCache) fetch(ctx context.Context) (currency.Snapshot, error) {
	if c.provider == nil {
		return currency.Snapshot{}, errors.New("rate cache: no provider configured")
	}
	v, err, _ := c.group.Do(fetchKey, func() (interface{}, error) {
		fetchCtx := context.WithoutCancel(ctx)
		snap, err := c.provider.FetchRates(fetchCtx)
		c.mu.Lock()
		if err != nil {
			c.retryAfter = c.now().Add(c.backoff)
			c.mu.Unlock()
			return nil, err
		}
		c.snapshot = snap
		c.storedAt = c.now()
		c.retryAfter = time.Time{}
		c.mu.Unlock()
		c.storeMirror(fetchCtx, snap)
		return *snap, nil
	})
	if err != nil {
		return currency.Snapshot{}, err
	}
	return v.(currency.Snapshot), nil
}

type mirrorEntry struct {
	Snapshot currency.Snapshot `json:"snapshot"`
	StoredAt time.Time         `json:"storedAt"`
}

func (c *RateCache) loadMirror(ctx context.Context) (*currency.Snapshot, time.Time, bool) {
	if c.mirror == nil {
		return nil, time.Time{}, false
	}
	raw, err := c.mirror.Get(ctx, MirrorKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn(ctx, "Exchange rate mirror read failed", zap.Error(err))
		}
		return nil, time.Time{}, false
	}
	var entry mirrorEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		logger.Warn(ctx, "Exchange rate mirror entry is corrupt", zap.Error(err))
		return nil, time.Time{}, false
	}
	if c.now().Sub(entry.StoredAt) >= c.ttl {
		return nil, time.Time{}, false
	}
	return &entry.Snapshot, entry.StoredAt, true
}

func (c *RateCache) storeMirror(ctx context.Context, snap *currency.Snapshot) {
	if c.mirror == nil {
		return
	}
	payload, err := json.Marshal(mirrorEntry{Snapshot: *snap, StoredAt: c.now()})
	if err != nil {
		return
	}
	if err := c.mirror.Set(ctx, MirrorKey, payload, c.ttl).Err(); err != nil {
		logger.Warn(ctx, "Exchange rate mirror write failed", zap.Error(err))
	}
}
