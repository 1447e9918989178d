package models

import (
	"time"

	"gorm.io/datatypes"
)

// AnalyticsSnapshot is the persisted history row written after each
// successful computation run. The cache answers "latest" queries; snapshots
// exist so dashboards can chart how a faculty's metrics move over time.
type AnalyticsSnapshot struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	FacultyID string `json:"faculty_id" gorm:"index;not null"`

	// Denormalized headline numbers for cheap trend queries.
	AverageGrade   float64 `json:"average_grade"`
	CompletionRate float64 `json:"completion_rate"`
	TotalStudents  int     `json:"total_students"`
	AtRiskStudents int     `json:"at_risk_students"`
	ActiveCourses  int     `json:"active_courses"`

	Bundle datatypes.JSON `json:"bundle" gorm:"type:jsonb"` // AnalyticsBundle

	ComputedAt time.Time `json:"computed_at" gorm:"index"`
	CreatedAt  time.Time `json:"created_at"`
}

func (AnalyticsSnapshot) TableName() string {
	return "analytics_snapshots"
}
