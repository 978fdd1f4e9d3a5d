package jobs

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"luxe-estates.backend/pkg/currency"
	"luxe-estates.backend/pkg/logger"
)

// RateRefresher is the part of the rate cache the job drives.
type RateRefresher interface {
	Refresh(ctx context.Context) (currency.Snapshot, error)
}

// RateRefreshJob keeps the exchange-rate cache warm
type RateRefreshJob struct {
	cache    RateRefresher
	interval time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

func NewRateRefreshJob(cache RateRefresher, interval time.Duration) *RateRefreshJob {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	return &RateRefreshJob{
		cache:    cache,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// Start refreshes once immediately, then on every tick until ctx is done or Stop is called.
func (j *RateRefreshJob) Start(ctx context.Context) {
	logger.Info(ctx, "Starting exchange rate refresh job", zap.Duration("interval", j.interval))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Exchange rate refresh job stopped (context cancelled)")
			return
		case <-j.stop:
			logger.Info(ctx, "Exchange rate refresh job stopped")
			return
		case <-ticker.C:
			j.refresh(ctx)
		}
	}
}

func (j *RateRefreshJob) Stop() {
	j.stopOnce.Do(func() { close(j.stop) })
}

func (j *RateRefreshJob) refresh(ctx context.Context) {
	snap, err := j.cache.Refresh(ctx)
	if err != nil {
		logger.Warn(ctx, "Exchange rate refresh failed", zap.Error(err))
		return
	}
	logger.Debug(ctx, "Exchange rates refreshed",
		zap.Int("currencies", len(snap.Rates)),
		zap.Time("fetched_at", snap.FetchedAt),
	)
}
