package repositories

import (
	"context"
	"time"

	"github.com/SAP-F-2025/analytics-service/internal/models"
)

// RecordSource is the read-only academic records backend the analytics
// pipeline aggregates over. Every query is keyed by an identifier and may
// fail or come back empty independently of its siblings; callers treat a
// failed or empty sub-query as "no data" for that item and keep going.
type RecordSource interface {
	ClassesForFaculty(ctx context.Context, facultyID string) ([]models.ClassContext, error)
	StudentsForClass(ctx context.Context, sectionID string) ([]models.ClassStudent, error)
	AssessmentsForClass(ctx context.Context, sectionID string) ([]models.ClassAssessment, error)
	SubAssessmentsForAssessment(ctx context.Context, assessmentID string) ([]models.SubAssessment, error)
	GradesForSubAssessment(ctx context.Context, subAssessmentID string) ([]models.GradeRow, error)
	AttendanceSummaryForEnrollment(ctx context.Context, enrollmentID string) (*models.AttendanceSummary, error)
}

// SnapshotFilters narrows snapshot history queries.
type SnapshotFilters struct {
	Since  *time.Time `json:"since"`
	Limit  int        `json:"limit"`
	Offset int        `json:"offset"`
}

// SnapshotRepository persists per-run analytics history. Writes are
// best-effort from the pipeline's point of view.
type SnapshotRepository interface {
	Create(ctx context.Context, snapshot *models.AnalyticsSnapshot) error
	GetLatestByFaculty(ctx context.Context, facultyID string) (*models.AnalyticsSnapshot, error)
	ListByFaculty(ctx context.Context, facultyID string, filters SnapshotFilters) ([]*models.AnalyticsSnapshot, int64, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
