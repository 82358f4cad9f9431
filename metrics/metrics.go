package metrics

import "context"

// ThroughputMetrics represents deliveries completed over different time windows.
type ThroughputMetrics struct {
	// LastMinute is jobs delivered in the last 1 minute
	LastMinute int64 `json:"last_minute"`

	// LastFiveMinutes is jobs delivered in the last 5 minutes
	LastFiveMinutes int64 `json:"last_five_minutes"`

	// LastFifteenMinutes is jobs delivered in the last 15 minutes
	LastFifteenMinutes int64 `json:"last_fifteen_minutes"`
}

// Collector defines the interface for collecting metrics from the relay.
type Collector interface {
	// GetStatusCounts returns the count of jobs by status
	GetStatusCounts(ctx context.Context) (map[string]int64, error)

	// GetThroughput returns jobs delivered over time windows
	GetThroughput(ctx context.Context) (ThroughputMetrics, error)
}
