package services

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/SAP-F-2025/analytics-service/internal/models"
	"github.com/SAP-F-2025/analytics-service/internal/repositories"
	"github.com/SAP-F-2025/analytics-service/internal/utils"
)

// FeatureBuilder derives one StudentFeature per (student, class) pair from
// the record source. A student enrolled in several of the faculty's classes
// gets several feature rows; there is no merge step, matching the
// per-class scope of the aggregate metrics.
type FeatureBuilder struct {
	source  repositories.RecordSource
	logger  utils.Logger
	workers int
}

func NewFeatureBuilder(source repositories.RecordSource, logger utils.Logger, workers int) *FeatureBuilder {
	if workers <= 0 {
		workers = 1
	}
	return &FeatureBuilder{
		source:  source,
		logger:  logger.With("component", "feature_builder"),
		workers: workers,
	}
}

// gradeStats accumulates a student's graded rows within one class.
type gradeStats struct {
	percentageSum float64
	count         int
}

// classRoster pairs a class with its students and per-enrollment grades.
type classRoster struct {
	class    models.ClassContext
	students []models.ClassStudent
	grades   map[string]gradeStats // keyed by enrollment ID
}

// Build walks the class list and emits the feature vectors for clustering.
// onProgress, when non-nil, is invoked once per student with
// (processed, total); each count in 1..total is delivered exactly once,
// though delivery order can interleave under concurrency.
func (b *FeatureBuilder) Build(ctx context.Context, classes []models.ClassContext, onProgress func(processed, total int)) []models.StudentFeature {
	rosters := b.collectRosters(ctx, classes)

	total := 0
	for _, roster := range rosters {
		total += len(roster.students)
	}

	// Slots are preassigned so concurrent fan-out keeps a deterministic
	// output order (class order, then roster order).
	features := make([]models.StudentFeature, total)
	var processed int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)

	slot := 0
	for _, roster := range rosters {
		roster := roster
		for _, student := range roster.students {
			student, slot := student, slot
			g.Go(func() error {
				features[slot] = b.buildFeature(gctx, roster, student)
				if onProgress != nil {
					done := int(atomic.AddInt64(&processed, 1))
					onProgress(done, total)
				}
				return nil
			})
			slot++
		}
	}
	_ = g.Wait()

	return features
}

// collectRosters fetches students and grade indices per class. A failing
// class yields an empty roster and is logged, never fatal.
func (b *FeatureBuilder) collectRosters(ctx context.Context, classes []models.ClassContext) []classRoster {
	rosters := make([]classRoster, len(classes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)

	for i, class := range classes {
		i, class := i, class
		g.Go(func() error {
			rosters[i] = b.collectRoster(gctx, class)
			return nil
		})
	}
	_ = g.Wait()

	return rosters
}

func (b *FeatureBuilder) collectRoster(ctx context.Context, class models.ClassContext) classRoster {
	roster := classRoster{class: class, grades: make(map[string]gradeStats)}

	students, err := b.source.StudentsForClass(ctx, class.SectionID)
	if err != nil {
		b.logger.Warn("Skipping class roster in feature building",
			"section_id", class.SectionID, "error", err)
		return roster
	}
	roster.students = students

	assessments, err := b.source.AssessmentsForClass(ctx, class.SectionID)
	if err != nil {
		b.logger.Warn("No assessments available for class",
			"section_id", class.SectionID, "error", err)
		return roster
	}

	for _, assessment := range assessments {
		subs, err := b.source.SubAssessmentsForAssessment(ctx, assessment.AssessmentID)
		if err != nil {
			b.logger.Warn("Skipping assessment in feature building",
				"assessment_id", assessment.AssessmentID, "error", err)
			continue
		}

		for _, sub := range subs {
			if !sub.IsPublished {
				continue
			}
			grades, err := b.source.GradesForSubAssessment(ctx, sub.SubAssessmentID)
			if err != nil {
				b.logger.Warn("Skipping sub-assessment grades in feature building",
					"sub_assessment_id", sub.SubAssessmentID, "error", err)
				continue
			}

			for _, grade := range grades {
				if grade.TotalScore == nil {
					continue
				}
				percentage, ok := gradePercentage(*grade.TotalScore, sub.TotalPoints)
				if !ok {
					continue
				}
				stats := roster.grades[grade.EnrollmentID]
				stats.percentageSum += percentage
				stats.count++
				roster.grades[grade.EnrollmentID] = stats
			}
		}
	}

	return roster
}

func (b *FeatureBuilder) buildFeature(ctx context.Context, roster classRoster, student models.ClassStudent) models.StudentFeature {
	feature := models.StudentFeature{
		StudentID:    student.StudentID,
		EnrollmentID: student.EnrollmentID,
		FullName:     student.FullName,
	}

	summary, err := b.source.AttendanceSummaryForEnrollment(ctx, student.EnrollmentID)
	if err != nil || summary == nil {
		// Attendance defaults to zero on failure; the feature row survives.
		if err != nil {
			b.logger.Warn("Attendance summary unavailable",
				"enrollment_id", student.EnrollmentID, "error", err)
		}
	} else {
		feature.AttendanceRate = summary.AttendanceRate
		feature.TotalSessions = summary.TotalSessions
	}

	if stats, ok := roster.grades[student.EnrollmentID]; ok && stats.count > 0 {
		feature.AverageGrade = round2(stats.percentageSum / float64(stats.count))
		feature.CompletedAssessments = stats.count
	}

	return feature
}
