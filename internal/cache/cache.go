package cache

import (
	"context"

	"github.com/SAP-F-2025/analytics-service/internal/models"
)

// AnalyticsCache stores the last computed bundle per faculty ID. Entries
// are overwritten atomically on Put, read non-destructively, and removed
// on Invalidate. All implementations must be safe for concurrent use
// across faculty IDs.
//
// The cache is best-effort: callers log errors and continue uncached, so
// no implementation may panic or block indefinitely.
type AnalyticsCache interface {
	// Get returns the cached entry, or nil when the key is absent.
	Get(ctx context.Context, facultyID string) (*models.CacheEntry, error)
	Put(ctx context.Context, facultyID string, bundle models.AnalyticsBundle) error
	Invalidate(ctx context.Context, facultyID string) error
}
