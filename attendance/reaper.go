package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultRetention is how long a job is kept after creation
	DefaultRetention = time.Hour
	// DefaultSweepInterval is how often the reaper runs
	DefaultSweepInterval = 30 * time.Minute
)

// ReaperOptions groups dependencies for Reaper.
type ReaperOptions struct {
	Repo      Repository    // Required
	Interval  time.Duration // Optional: defaults to DefaultSweepInterval
	Retention time.Duration // Optional: defaults to DefaultRetention
	Logger    zerolog.Logger
	Now       func() time.Time // Optional: defaults to time.Now
}

// Reaper evicts jobs older than the retention window, whatever their status,
// so the store does not grow without bound.
type Reaper struct {
	repo      Repository
	interval  time.Duration
	retention time.Duration
	logger    zerolog.Logger
	now       func() time.Time
}

// NewReaper constructs a Reaper
func NewReaper(opts ReaperOptions) (*Reaper, error) {
	if opts.Repo == nil {
		return nil, errors.New("job repository is required")
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	retention := opts.Retention
	if retention <= 0 {
		retention = DefaultRetention
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Reaper{
		repo:      opts.Repo,
		interval:  interval,
		retention: retention,
		logger:    opts.Logger.With().Str("component", "reaper").Logger(),
		now:       now,
	}, nil
}

// Run sweeps on every tick until ctx is cancelled.
// Returns nil on graceful shutdown (context.Canceled), error otherwise.
func (r *Reaper) Run(ctx context.Context) error {
	r.logger.Info().Dur("interval", r.interval).Dur("retention", r.retention).Msg("starting reaper")

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Err(ctx.Err()).Msg("reaper stopping")
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
			if _, err := r.Sweep(ctx); err != nil {
				// keep running; the next tick retries
				r.logger.Error().Err(err).Msg("sweep failed")
			}
		}
	}
}

// Sweep evicts every job created before now minus the retention window and returns how many were removed
func (r *Reaper) Sweep(ctx context.Context) (int, error) {
	cutoff := r.now().Add(-r.retention)

	evicted, err := r.repo.Evict(ctx, func(job Job) bool {
		// a job without a usable creation time is never eligible
		if job.CreatedAt.IsZero() {
			return false
		}
		return job.CreatedAt.Before(cutoff)
	})
	if err != nil {
		return 0, fmt.Errorf("evicting jobs: %w", err)
	}

	remaining, err := r.repo.Count(ctx)
	if err != nil {
		return evicted, fmt.Errorf("counting jobs: %w", err)
	}

	r.logger.Info().
		Int("evicted", evicted).
		Int("remaining", remaining).
		Time("cutoff", cutoff).
		Msg("swept expired jobs")

	return evicted, nil
}
