package services

import (
	"context"
	"math"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/SAP-F-2025/analytics-service/internal/models"
	"github.com/SAP-F-2025/analytics-service/internal/repositories"
	"github.com/SAP-F-2025/analytics-service/internal/utils"
)

// atRiskThreshold is the fixed percentage below which a graded submission
// counts a student as at risk.
const atRiskThreshold = 75.0

// MetricsAggregator computes class-wide performance metrics for a faculty's
// classes in a single walk over the record source. Classes are fanned out
// concurrently; a failure fetching any one class's sub-data makes that
// class contribute zero to every sum without aborting the run.
type MetricsAggregator struct {
	source  repositories.RecordSource
	logger  utils.Logger
	workers int
}

func NewMetricsAggregator(source repositories.RecordSource, logger utils.Logger, workers int) *MetricsAggregator {
	if workers <= 0 {
		workers = 1
	}
	return &MetricsAggregator{
		source:  source,
		logger:  logger.With("component", "metrics_aggregator"),
		workers: workers,
	}
}

// classTally accumulates one class's contribution to the faculty metrics.
type classTally struct {
	gradeSum        float64
	gradeCount      int
	atRiskCount     int
	completedGrades int
	possibleGrades  int
	studentCount    int
}

// Aggregate computes PerformanceMetrics over the given class list.
func (a *MetricsAggregator) Aggregate(ctx context.Context, classes []models.ClassContext) models.PerformanceMetrics {
	var (
		mu    sync.Mutex
		total classTally
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)

	for _, class := range classes {
		class := class
		g.Go(func() error {
			tally, err := a.tallyClass(gctx, class)
			if err != nil {
				// Per-class failure isolation: log and contribute zero.
				a.logger.Warn("Skipping class in metrics aggregation",
					"section_id", class.SectionID,
					"course_code", class.CourseCode,
					"error", err)
				return nil
			}

			mu.Lock()
			total.gradeSum += tally.gradeSum
			total.gradeCount += tally.gradeCount
			total.atRiskCount += tally.atRiskCount
			total.completedGrades += tally.completedGrades
			total.possibleGrades += tally.possibleGrades
			total.studentCount += tally.studentCount
			mu.Unlock()
			return nil
		})
	}
	// Workers never return errors; Wait only observes context cancellation.
	_ = g.Wait()

	metrics := models.PerformanceMetrics{
		TotalStudents:  total.studentCount,
		AtRiskStudents: total.atRiskCount,
		ActiveCourses:  len(classes),
	}
	if total.gradeCount > 0 {
		metrics.AverageGrade = round2(total.gradeSum / float64(total.gradeCount))
	}
	if total.possibleGrades > 0 {
		metrics.CompletionRate = math.Round(float64(total.completedGrades) / float64(total.possibleGrades) * 100)
	}
	return metrics
}

// tallyClass walks one class's students, published sub-assessments and
// grade rows. Any source failure aborts only this class.
func (a *MetricsAggregator) tallyClass(ctx context.Context, class models.ClassContext) (classTally, error) {
	var tally classTally

	students, err := a.source.StudentsForClass(ctx, class.SectionID)
	if err != nil {
		return tally, NewSourceFetchError("students_for_class", class.SectionID, err)
	}
	tally.studentCount = len(students)

	assessments, err := a.source.AssessmentsForClass(ctx, class.SectionID)
	if err != nil {
		return tally, NewSourceFetchError("assessments_for_class", class.SectionID, err)
	}

	for _, assessment := range assessments {
		subs, err := a.source.SubAssessmentsForAssessment(ctx, assessment.AssessmentID)
		if err != nil {
			return tally, NewSourceFetchError("sub_assessments_for_assessment", assessment.AssessmentID, err)
		}

		for _, sub := range subs {
			if !sub.IsPublished {
				continue
			}
			tally.possibleGrades += len(students)

			grades, err := a.source.GradesForSubAssessment(ctx, sub.SubAssessmentID)
			if err != nil {
				return tally, NewSourceFetchError("grades_for_sub_assessment", sub.SubAssessmentID, err)
			}

			for _, grade := range grades {
				if grade.TotalScore == nil {
					continue
				}
				tally.completedGrades++

				percentage, ok := gradePercentage(*grade.TotalScore, sub.TotalPoints)
				if !ok {
					a.logger.Warn("Discarding corrupt grade row",
						"sub_assessment_id", sub.SubAssessmentID,
						"enrollment_id", grade.EnrollmentID,
						"score", *grade.TotalScore,
						"total_points", sub.TotalPoints)
					continue
				}

				tally.gradeSum += percentage
				tally.gradeCount++
				if percentage < atRiskThreshold {
					tally.atRiskCount++
				}
			}
		}
	}

	return tally, nil
}

// gradePercentage converts a raw score into a percentage, rejecting rows
// whose result falls outside [0,100] or whose denominator is zero.
func gradePercentage(score, totalPoints float64) (float64, bool) {
	if totalPoints <= 0 {
		return 0, false
	}
	percentage := score / totalPoints * 100
	if percentage < 0 || percentage > 100 {
		return 0, false
	}
	return percentage, true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
