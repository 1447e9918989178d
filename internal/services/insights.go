package services

import (
	"fmt"

	"github.com/SAP-F-2025/analytics-service/internal/models"
)

// Fixed targets the insight rules compare against. These mirror the
// institutional policy values and are deliberately not configurable.
const (
	targetAverageGrade    = 80.0
	targetCompletionRate  = 70.0
	targetAttendanceShare = 85.0
)

// InsightGenerator derives labeled findings from cluster populations and
// aggregate metrics. Rules run in a fixed order and each contributes zero
// or one insight.
type InsightGenerator struct{}

func NewInsightGenerator() *InsightGenerator {
	return &InsightGenerator{}
}

func (g *InsightGenerator) Generate(clusters []models.Cluster, metrics models.PerformanceMetrics) []models.Insight {
	insights := make([]models.Insight, 0, 6)

	if cluster := clusterByLabel(clusters, models.ClusterStruggling); cluster != nil && cluster.StudentCount > 0 {
		insights = append(insights, models.Insight{
			Kind:  models.InsightCritical,
			Title: "Students need immediate support",
			Description: fmt.Sprintf("%d student(s) show both low attendance and low grades and need immediate attention.",
				cluster.StudentCount),
			Details: map[string]interface{}{
				"cluster":       string(models.ClusterStruggling),
				"student_count": cluster.StudentCount,
			},
		})
	}

	if cluster := clusterByLabel(clusters, models.ClusterAtRisk); cluster != nil && cluster.StudentCount > 0 {
		insights = append(insights, models.Insight{
			Kind:  models.InsightWarning,
			Title: "At-risk students detected",
			Description: fmt.Sprintf("%d student(s) are trending below expectations and may fall behind without intervention.",
				cluster.StudentCount),
			Details: map[string]interface{}{
				"cluster":       string(models.ClusterAtRisk),
				"student_count": cluster.StudentCount,
			},
		})
	}

	if cluster := clusterByLabel(clusters, models.ClusterHighPerformers); cluster != nil && cluster.StudentCount > 0 {
		insights = append(insights, models.Insight{
			Kind:  models.InsightPositive,
			Title: "Strong performers identified",
			Description: fmt.Sprintf("%d student(s) maintain excellent attendance and grades.",
				cluster.StudentCount),
			Details: map[string]interface{}{
				"cluster":       string(models.ClusterHighPerformers),
				"student_count": cluster.StudentCount,
			},
		})
	}

	if metrics.AverageGrade < targetAverageGrade {
		insights = append(insights, models.Insight{
			Kind:  models.InsightPerformance,
			Title: "Class average below target",
			Description: fmt.Sprintf("The class average of %.2f%% is below the %.0f%% target.",
				metrics.AverageGrade, targetAverageGrade),
			Details: map[string]interface{}{
				"average_grade":    metrics.AverageGrade,
				"target":           targetAverageGrade,
				"at_risk_students": metrics.AtRiskStudents,
			},
		})
	}

	if metrics.CompletionRate < targetCompletionRate {
		insights = append(insights, models.Insight{
			Kind:  models.InsightEngagement,
			Title: "Low assessment completion",
			Description: fmt.Sprintf("Only %.0f%% of expected submissions were graded, below the %.0f%% target.",
				metrics.CompletionRate, targetCompletionRate),
			Details: map[string]interface{}{
				"completion_rate": metrics.CompletionRate,
				"target":          targetCompletionRate,
			},
		})
	}

	if metrics.TotalStudents > 0 {
		share := float64(metrics.TotalStudents-metrics.AtRiskStudents) / float64(metrics.TotalStudents) * 100
		if share < targetAttendanceShare {
			insights = append(insights, models.Insight{
				Kind:  models.InsightAttendance,
				Title: "Large at-risk share",
				Description: fmt.Sprintf("Only %.0f%% of students are performing on track, below the %.0f%% target.",
					share, targetAttendanceShare),
				Details: map[string]interface{}{
					"on_track_share": share,
					"target":         targetAttendanceShare,
				},
			})
		}
	}

	return insights
}

func clusterByLabel(clusters []models.Cluster, label models.ClusterLabel) *models.Cluster {
	for i := range clusters {
		if clusters[i].Label == label {
			return &clusters[i]
		}
	}
	return nil
}
