package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"luxe-estates.backend/pkg/currency"
)

type stubProvider struct {
	calls int
	snap  *currency.Snapshot
	err   error
}

func (s *stubProvider) FetchRates(context.Context) (*currency.Snapshot, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	cp := *s.snap
	return &cp, nil
}

func liveSnapshot(zar float64) *currency.Snapshot {
	return &currency.Snapshot{
		Base:   currency.Base,
		Rates:  currency.Rates{currency.USD: 1, currency.ZAR: zar, currency.AED: 3.6725, currency.EUR: 0.86, currency.GBP: 0.74},
		Source: currency.SourceLive,
	}
}

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time { return f.t }

func TestRateCache_ServesLiveThenCache(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)}
	p := &stubProvider{snap: liveSnapshot(17.9)}
	c := NewRateCache(p, time.Hour, WithClock(clock.Now))

	first := c.Get(context.Background())
	assert.Equal(t, currency.SourceLive, first.Source)
	assert.Equal(t, 17.9, first.Rates[currency.ZAR])

	clock.t = clock.t.Add(59 * time.Minute)
	second := c.Get(context.Background())
	assert.Equal(t, currency.SourceCache, second.Source)
	assert.Equal(t, 1, p.calls)

	clock.t = clock.t.Add(2 * time.Minute)
	p.snap = liveSnapshot(18.1)
	third := c.Get(context.Background())
	assert.Equal(t, currency.SourceLive, third.Source)
	assert.Equal(t, 18.1, third.Rates[currency.ZAR])
	assert.Equal(t, 2, p.calls)
}

func TestRateCache_FailureServesFallbackTable(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)}
	p := &stubProvider{err: errors.New("503 from upstream")}
	c := NewRateCache(p, time.Hour, WithClock(clock.Now), WithFailureBackoff(10*time.Second))

	fallback := currency.Rates{currency.USD: 1, currency.ZAR: 18.5, currency.AED: 3.67, currency.EUR: 0.92, currency.GBP: 0.79}
	got := c.Get(context.Background())
	assert.Equal(t, currency.SourceFallback, got.Source)
	assert.Equal(t, fallback, got.Rates)

	clock.t = clock.t.Add(5 * time.Second)
	got = c.Get(context.Background())
	assert.Equal(t, currency.SourceFallback, got.Source)
	assert.Equal(t, fallback, got.Rates)
	assert.Equal(t, 1, p.calls)

	clock.t = clock.t.Add(6 * time.Second)
	c.Get(context.Background())
	assert.Equal(t, 2, p.calls)

	p.err, p.snap = nil, liveSnapshot(18.2)
	clock.t = clock.t.Add(11 * time.Second)
	got = c.Get(context.Background())
	assert.Equal(t, currency.SourceLive, got.Source)
	assert.Equal(t, 18.2, got.Rates[currency.ZAR])
}

func TestRateCache_NoBackoffRetriesEveryMiss(t *testing.T) {
	p := &stubProvider{err: errors.New("503 from upstream")}
	c := NewRateCache(p, time.Hour, WithFailureBackoff(0))

	c.Get(context.Background())
	c.Get(context.Background())
	assert.Equal(t, 2, p.calls)
}

type slowFailingProvider struct {
	calls atomic.Int32
	delay time.Duration
}

func (s *slowFailingProvider) FetchRates(context.Context) (*currency.Snapshot, error) {
	s.calls.Add(1)
	time.Sleep(s.delay)
	return nil, errors.New("upstream timeout")
}

func TestRateCache_ConcurrentMissesShareOneFetch(t *testing.T) {
	p := &slowFailingProvider{delay: 200 * time.Millisecond}
	c := NewRateCache(p, time.Hour)

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := c.Get(context.Background())
			assert.Equal(t, currency.SourceFallback, got.Source)
		}()
	}
	wg.Wait()

	assert.Less(t, time.Since(start), 600*time.Millisecond)
	assert.Equal(t, int32(1), p.calls.Load())
}

func TestRateCache_RefreshKeepsSnapshotOnError(t *testing.T) {
	p := &stubProvider{snap: liveSnapshot(17.9)}
	c := NewRateCache(p, time.Hour)

	_, err := c.Refresh(context.Background())
	require.NoError(t, err)

	p.err = errors.New("timeout")
	_, err = c.Refresh(context.Background())
	require.Error(t, err)

	got := c.Get(context.Background())
	assert.Equal(t, currency.SourceCache, got.Source)
	assert.Equal(t, 17.9, got.Rates[currency.ZAR])

	c.Invalidate()
	got = c.Get(context.Background())
	assert.Equal(t, currency.SourceFallback, got.Source)
}

func TestRateCache_MirrorSharesAcrossInstances(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	warm := NewRateCache(&stubProvider{snap: liveSnapshot(17.5)}, time.Hour, WithMirror(client))
	require.Equal(t, currency.SourceLive, warm.Get(context.Background()).Source)
	assert.True(t, mr.Exists(MirrorKey))

	coldProvider := &stubProvider{err: errors.New("down")}
	cold := NewRateCache(coldProvider, time.Hour, WithMirror(client))
	got := cold.Get(context.Background())
	assert.Equal(t, currency.SourceCache, got.Source)
	assert.Equal(t, 17.5, got.Rates[currency.ZAR])
	assert.Equal(t, 0, coldProvider.calls)
}

func TestRateCache_CorruptMirrorFallsThrough(t *testing.T) {
	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set(MirrorKey, "{broken"))
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	p := &stubProvider{snap: liveSnapshot(17.9)}
	got := NewRateCache(p, time.Hour, WithMirror(client)).Get(context.Background())
	assert.Equal(t, currency.SourceLive, got.Source)
	assert.Equal(t, 1, p.calls)
}
