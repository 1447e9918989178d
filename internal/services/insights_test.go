package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SAP-F-2025/analytics-service/internal/models"
)

func clusterOf(label models.ClusterLabel, count int) models.Cluster {
	students := make([]models.StudentSummary, count)
	for i := range students {
		students[i] = models.StudentSummary{StudentID: "ST", EnrollmentID: "EN"}
	}
	return models.Cluster{
		Label:        label,
		StudentCount: count,
		Students:     students,
	}
}

func healthyMetrics() models.PerformanceMetrics {
	return models.PerformanceMetrics{
		AverageGrade:   90,
		CompletionRate: 95,
		TotalStudents:  20,
		AtRiskStudents: 0,
		ActiveCourses:  2,
	}
}

func TestInsightGenerator_Generate(t *testing.T) {
	generator := NewInsightGenerator()

	t.Run("struggling cluster produces critical insight", func(t *testing.T) {
		insights := generator.Generate(
			[]models.Cluster{clusterOf(models.ClusterStruggling, 3)},
			healthyMetrics(),
		)

		assert.Len(t, insights, 1)
		assert.Equal(t, models.InsightCritical, insights[0].Kind)
		assert.Equal(t, 3, insights[0].Details["student_count"])
	})

	t.Run("at-risk cluster produces warning insight", func(t *testing.T) {
		insights := generator.Generate(
			[]models.Cluster{clusterOf(models.ClusterAtRisk, 2)},
			healthyMetrics(),
		)

		assert.Len(t, insights, 1)
		assert.Equal(t, models.InsightWarning, insights[0].Kind)
	})

	t.Run("high performers produce positive insight", func(t *testing.T) {
		insights := generator.Generate(
			[]models.Cluster{clusterOf(models.ClusterHighPerformers, 5)},
			healthyMetrics(),
		)

		assert.Len(t, insights, 1)
		assert.Equal(t, models.InsightPositive, insights[0].Kind)
	})

	t.Run("average grade below 80 produces performance insight", func(t *testing.T) {
		metrics := healthyMetrics()
		metrics.AverageGrade = 72.5
		metrics.AtRiskStudents = 4

		insights := generator.Generate(nil, metrics)

		assert.Len(t, insights, 1)
		assert.Equal(t, models.InsightPerformance, insights[0].Kind)
		assert.Equal(t, 72.5, insights[0].Details["average_grade"])
		assert.Equal(t, 80.0, insights[0].Details["target"])
		assert.Equal(t, 4, insights[0].Details["at_risk_students"])
	})

	t.Run("completion below 70 produces engagement insight", func(t *testing.T) {
		metrics := healthyMetrics()
		metrics.CompletionRate = 55

		insights := generator.Generate(nil, metrics)

		assert.Len(t, insights, 1)
		assert.Equal(t, models.InsightEngagement, insights[0].Kind)
		assert.Equal(t, 55.0, insights[0].Details["completion_rate"])
	})

	t.Run("large at-risk share produces attendance insight", func(t *testing.T) {
		metrics := healthyMetrics()
		metrics.TotalStudents = 10
		metrics.AtRiskStudents = 3 // 70% on track, below the 85% target

		insights := generator.Generate(nil, metrics)

		assert.Len(t, insights, 1)
		assert.Equal(t, models.InsightAttendance, insights[0].Kind)
		assert.Equal(t, 70.0, insights[0].Details["on_track_share"])
	})

	t.Run("zero students never produces the attendance insight", func(t *testing.T) {
		metrics := healthyMetrics()
		metrics.TotalStudents = 0

		insights := generator.Generate(nil, metrics)
		assert.Empty(t, insights)
	})

	t.Run("healthy faculty produces no insights", func(t *testing.T) {
		insights := generator.Generate(
			[]models.Cluster{clusterOf(models.ClusterConsistent, 10)},
			healthyMetrics(),
		)
		assert.Empty(t, insights)
	})

	t.Run("struggling faculty triggers every rule in order", func(t *testing.T) {
		clusters := []models.Cluster{
			clusterOf(models.ClusterHighPerformers, 1),
			clusterOf(models.ClusterAtRisk, 3),
			clusterOf(models.ClusterStruggling, 2),
		}
		metrics := models.PerformanceMetrics{
			AverageGrade:   60,
			CompletionRate: 40,
			TotalStudents:  6,
			AtRiskStudents: 5,
			ActiveCourses:  1,
		}

		insights := generator.Generate(clusters, metrics)

		kinds := make([]models.InsightKind, len(insights))
		for i, insight := range insights {
			kinds[i] = insight.Kind
		}
		assert.Equal(t, []models.InsightKind{
			models.InsightCritical,
			models.InsightWarning,
			models.InsightPositive,
			models.InsightPerformance,
			models.InsightEngagement,
			models.InsightAttendance,
		}, kinds)
	})
}
