package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/marcelsud/attendance-relay/attendance"
)

// RepositoryCollector implements the Collector interface over the job store
type RepositoryCollector struct {
	repo attendance.Reader
	now  func() time.Time
}

// NewRepositoryCollector creates a new job store metrics collector
func NewRepositoryCollector(repo attendance.Reader) *RepositoryCollector {
	return &RepositoryCollector{
		repo: repo,
		now:  time.Now,
	}
}

// GetStatusCounts returns counts of jobs grouped by status
func (c *RepositoryCollector) GetStatusCounts(ctx context.Context) (map[string]int64, error) {
	statusCounts := map[string]int64{
		attendance.Processing.String(): 0,
		attendance.Success.String():    0,
		attendance.Failed.String():     0,
	}

	jobs, err := c.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	for _, job := range jobs {
		statusCounts[job.Status.String()]++
	}

	return statusCounts, nil
}

// GetThroughput counts successful deliveries finished within each time window
func (c *RepositoryCollector) GetThroughput(ctx context.Context) (ThroughputMetrics, error) {
	now := c.now()
	oneMinuteAgo := now.Add(-1 * time.Minute)
	fiveMinutesAgo := now.Add(-5 * time.Minute)
	fifteenMinutesAgo := now.Add(-15 * time.Minute)

	jobs, err := c.repo.List(ctx)
	if err != nil {
		return ThroughputMetrics{}, fmt.Errorf("listing jobs: %w", err)
	}

	var tp ThroughputMetrics
	for _, job := range jobs {
		if job.Status != attendance.Success || job.UpdatedAt.Before(fifteenMinutesAgo) {
			continue
		}
		tp.LastFifteenMinutes++
		if !job.UpdatedAt.Before(fiveMinutesAgo) {
			tp.LastFiveMinutes++
			if !job.UpdatedAt.Before(oneMinuteAgo) {
				tp.LastMinute++
			}
		}
	}

	return tp, nil
}
