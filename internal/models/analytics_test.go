package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEmptyBundle(t *testing.T) {
	bundle := EmptyBundle()

	assert.NotNil(t, bundle.Clustering)
	assert.NotNil(t, bundle.Insights)
	assert.NotNil(t, bundle.Recommendations)

	// The degraded bundle must serialize with empty arrays, not nulls.
	payload, err := json.Marshal(bundle)
	assert.NoError(t, err)
	assert.JSONEq(t, `{
		"clustering": [],
		"insights": [],
		"recommendations": [],
		"performance": {
			"average_grade": 0,
			"completion_rate": 0,
			"total_students": 0,
			"at_risk_students": 0,
			"active_courses": 0
		}
	}`, string(payload))
}

func TestCacheEntry_AgeHours(t *testing.T) {
	computed := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	entry := CacheEntry{FacultyID: "F1", ComputedAt: computed}

	tests := []struct {
		name string
		now  time.Time
		want float64
	}{
		{"immediately after write", computed, 0},
		{"ninety minutes later", computed.Add(90 * time.Minute), 1.5},
		{"rounded to one decimal", computed.Add(3*time.Hour + 44*time.Minute), 3.7},
		{"clock skew clamps to zero", computed.Add(-time.Hour), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, entry.AgeHours(tt.now))
		})
	}
}

func TestClusterLabel_DisplayName(t *testing.T) {
	assert.Equal(t, "High Performers", ClusterHighPerformers.DisplayName())
	assert.Equal(t, "Consistent", ClusterConsistent.DisplayName())
	assert.Equal(t, "At-Risk", ClusterAtRisk.DisplayName())
	assert.Equal(t, "Struggling", ClusterStruggling.DisplayName())
	assert.Equal(t, "custom", ClusterLabel("custom").DisplayName())
}
