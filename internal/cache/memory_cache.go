package cache

import (
	"context"
	"sync"
	"time"

	"github.com/SAP-F-2025/analytics-service/internal/models"
)

// memoryCache is the in-process fallback used in tests and in deployments
// running without Redis.
type memoryCache struct {
	mu      sync.RWMutex
	entries map[string]models.CacheEntry
	now     func() time.Time
}

func NewMemoryCache() AnalyticsCache {
	return &memoryCache{
		entries: make(map[string]models.CacheEntry),
		now:     time.Now,
	}
}

func (m *memoryCache) Get(_ context.Context, facultyID string) (*models.CacheEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[facultyID]
	if !ok {
		return nil, nil
	}
	// Copy out so callers cannot mutate the stored entry.
	cp := entry
	return &cp, nil
}

func (m *memoryCache) Put(_ context.Context, facultyID string, bundle models.AnalyticsBundle) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[facultyID] = models.CacheEntry{
		FacultyID:  facultyID,
		Bundle:     bundle,
		ComputedAt: m.now(),
	}
	return nil
}

func (m *memoryCache) Invalidate(_ context.Context, facultyID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, facultyID)
	return nil
}
