package models

import (
	"math"
	"time"
)

// ===== CLUSTERING =====

type ClusterLabel string

const (
	ClusterHighPerformers ClusterLabel = "high_performers"
	ClusterConsistent     ClusterLabel = "consistent"
	ClusterAtRisk         ClusterLabel = "at_risk"
	ClusterStruggling     ClusterLabel = "struggling"
)

func (l ClusterLabel) DisplayName() string {
	switch l {
	case ClusterHighPerformers:
		return "High Performers"
	case ClusterConsistent:
		return "Consistent"
	case ClusterAtRisk:
		return "At-Risk"
	case ClusterStruggling:
		return "Struggling"
	}
	return string(l)
}

// CentroidThresholds holds the normalized [0,1] reference point a cluster
// was assigned against.
type CentroidThresholds struct {
	Attendance float64 `json:"attendance"`
	Grade      float64 `json:"grade"`
}

// StudentSummary is the per-student view embedded in a cluster.
type StudentSummary struct {
	StudentID      string  `json:"student_id"`
	EnrollmentID   string  `json:"enrollment_id"`
	FullName       string  `json:"full_name"`
	AttendanceRate float64 `json:"attendance_rate"`
	AverageGrade   float64 `json:"average_grade"`
}

type Cluster struct {
	Label              ClusterLabel       `json:"label"`
	StudentCount       int                `json:"student_count"`
	Students           []StudentSummary   `json:"students"`
	CentroidThresholds CentroidThresholds `json:"centroid_thresholds"`
}

// ===== FEATURES =====

// StudentFeature is the per-(student, class) feature vector the clustering
// engine consumes. Instances are immutable after construction; a new
// computation run produces new instances.
type StudentFeature struct {
	StudentID            string  `json:"student_id"`
	EnrollmentID         string  `json:"enrollment_id"`
	FullName             string  `json:"full_name"`
	AttendanceRate       float64 `json:"attendance_rate"` // percent, [0,100]
	AverageGrade         float64 `json:"average_grade"`   // percent, [0,100]
	TotalSessions        int     `json:"total_sessions"`
	CompletedAssessments int     `json:"completed_assessments"`
}

// Summary projects the feature into the cluster member view.
func (f StudentFeature) Summary() StudentSummary {
	return StudentSummary{
		StudentID:      f.StudentID,
		EnrollmentID:   f.EnrollmentID,
		FullName:       f.FullName,
		AttendanceRate: f.AttendanceRate,
		AverageGrade:   f.AverageGrade,
	}
}

// ===== AGGREGATE METRICS =====

type PerformanceMetrics struct {
	AverageGrade   float64 `json:"average_grade"`   // percent, [0,100]
	CompletionRate float64 `json:"completion_rate"` // percent, [0,100]
	TotalStudents  int     `json:"total_students"`
	AtRiskStudents int     `json:"at_risk_students"`
	ActiveCourses  int     `json:"active_courses"`
}

// ===== INSIGHTS =====

type InsightKind string

const (
	InsightCritical    InsightKind = "critical"
	InsightWarning     InsightKind = "warning"
	InsightPositive    InsightKind = "positive"
	InsightPerformance InsightKind = "performance"
	InsightEngagement  InsightKind = "engagement"
	InsightAttendance  InsightKind = "attendance"
)

type Insight struct {
	Kind        InsightKind            `json:"kind"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Details     map[string]interface{} `json:"details,omitempty"`
}

// ===== RECOMMENDATIONS =====

type RecommendationPriority string

const (
	PriorityHigh   RecommendationPriority = "high"
	PriorityMedium RecommendationPriority = "medium"
	PriorityLow    RecommendationPriority = "low"
)

type RecommendationKind string

const (
	RecommendationIntervention RecommendationKind = "intervention"
	RecommendationAcademic     RecommendationKind = "academic"
	RecommendationEngagement   RecommendationKind = "engagement"
)

type Recommendation struct {
	Kind        RecommendationKind     `json:"kind"`
	Priority    RecommendationPriority `json:"priority"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Action      string                 `json:"action"`
}

// ===== BUNDLE =====

// AnalyticsBundle is the unit of caching and the unit returned to callers.
type AnalyticsBundle struct {
	Clustering      []Cluster          `json:"clustering"`
	Insights        []Insight          `json:"insights"`
	Recommendations []Recommendation   `json:"recommendations"`
	Performance     PerformanceMetrics `json:"performance"`
}

// EmptyBundle is the degraded-but-safe bundle substituted when a
// computation fails mid-pipeline. Slices are non-nil so the JSON shape
// stays stable for the UI.
func EmptyBundle() AnalyticsBundle {
	return AnalyticsBundle{
		Clustering:      []Cluster{},
		Insights:        []Insight{},
		Recommendations: []Recommendation{},
		Performance:     PerformanceMetrics{},
	}
}

// ===== CACHE =====

// CacheEntry wraps a cached bundle with staleness metadata. Owned
// exclusively by the analytics cache.
type CacheEntry struct {
	FacultyID  string          `json:"faculty_id"`
	Bundle     AnalyticsBundle `json:"bundle"`
	ComputedAt time.Time       `json:"computed_at"`
}

// AgeHours reports the entry age relative to now, rounded to one decimal
// for display.
func (e CacheEntry) AgeHours(now time.Time) float64 {
	age := now.Sub(e.ComputedAt).Hours()
	if age < 0 {
		return 0
	}
	return math.Round(age*10) / 10
}
