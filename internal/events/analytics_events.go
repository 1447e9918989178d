package events

import (
	"time"

	"github.com/ThreeDotsLabs/watermill"
)

// EventType identifies the analytics lifecycle events published to Kafka.
type EventType string

const (
	EventComputationStarted   EventType = "analytics.computation.started"
	EventComputationCompleted EventType = "analytics.computation.completed"
	EventCacheRefreshed       EventType = "analytics.cache.refreshed"
)

const (
	eventSource  = "analytics-service"
	eventVersion = "1.0"
)

// AnalyticsEvent is the envelope for all published analytics events.
type AnalyticsEvent struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// ComputationStartedEvent is emitted when a pipeline run begins.
type ComputationStartedEvent struct {
	FacultyID string `json:"faculty_id"`
	Refresh   bool   `json:"refresh"`
}

// ComputationCompletedEvent is emitted when a run finishes, degraded or not.
type ComputationCompletedEvent struct {
	FacultyID     string  `json:"faculty_id"`
	DurationMs    int64   `json:"duration_ms"`
	TotalStudents int     `json:"total_students"`
	ActiveCourses int     `json:"active_courses"`
	AverageGrade  float64 `json:"average_grade"`
	Degraded      bool    `json:"degraded"`
}

// CacheRefreshedEvent is emitted after an explicit invalidate-and-recompute.
type CacheRefreshedEvent struct {
	FacultyID string `json:"faculty_id"`
}

// NewAnalyticsEvent wraps payload data in the standard envelope.
func NewAnalyticsEvent(eventType EventType, data interface{}) *AnalyticsEvent {
	return &AnalyticsEvent{
		ID:        watermill.NewUUID(),
		Type:      eventType,
		Source:    eventSource,
		Version:   eventVersion,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}
