package ports

import "context"

// StatsCache is a best-effort snapshot cache for requirement statistics.
// Implementations must treat a miss as (nil, nil); the service falls back
// to the live aggregation on any miss or error.
type StatsCache interface {
	Get(ctx context.Context) (*RequirementStats, error)
	Set(ctx context.Context, stats *RequirementStats) error
}
