package stats

import (
	"context"
	"log/slog"
	"time"

	"github.com/ideaforge/idea-engine/internal/cache"
	"github.com/ideaforge/idea-engine/internal/storage"
)

// Refresher periodically recomputes global per-achievement unlock
// counts from storage and caches them in Redis for the stats endpoint
type Refresher struct {
	repo     storage.Repository
	cache    *cache.Cache
	interval time.Duration
}

// NewRefresher creates a stats refresher worker
func NewRefresher(repo storage.Repository, c *cache.Cache, interval time.Duration) *Refresher {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	return &Refresher{
		repo:     repo,
		cache:    c,
		interval: interval,
	}
}

// Start begins the refresher in a goroutine
func (r *Refresher) Start(ctx context.Context) {
	go r.run(ctx)
}

// run is the main loop for the refresher worker
func (r *Refresher) run(ctx context.Context) {
	slog.Info("stats refresher started", "interval", r.interval)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	// Run immediately on start
	r.refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("stats refresher stopped")
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

// refresh recomputes and caches the unlock counts
func (r *Refresher) refresh(ctx context.Context) {
	slog.Debug("running stats refresh cycle")

	counts, err := r.repo.CountUnlocks(ctx)
	if err != nil {
		slog.Error("failed to count unlocks", "error", err)
		return
	}

	// Cache outlives two intervals so a single failed cycle does not
	// blank the stats endpoint
	if err := r.cache.SetUnlockCounts(ctx, counts, 2*r.interval); err != nil {
		slog.Error("failed to cache unlock counts", "error", err)
		return
	}

	slog.Debug("stats refreshed", "achievements", len(counts))
}
