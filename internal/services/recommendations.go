package services

import (
	"fmt"

	"github.com/SAP-F-2025/analytics-service/internal/models"
)

// RecommendationGenerator maps clusters and insights to prioritized action
// items. Rules are additive: overlapping conditions produce overlapping
// recommendations on purpose, because the consuming UI groups them by kind.
type RecommendationGenerator struct{}

func NewRecommendationGenerator() *RecommendationGenerator {
	return &RecommendationGenerator{}
}

func (g *RecommendationGenerator) Generate(clusters []models.Cluster, insights []models.Insight) []models.Recommendation {
	recommendations := make([]models.Recommendation, 0, 4)

	if cluster := clusterByLabel(clusters, models.ClusterAtRisk); cluster != nil && cluster.StudentCount > 0 {
		recommendations = append(recommendations, models.Recommendation{
			Kind:     models.RecommendationIntervention,
			Priority: models.PriorityHigh,
			Title:    "Schedule individual counseling",
			Description: fmt.Sprintf("%d at-risk student(s) would benefit from one-on-one counseling sessions.",
				cluster.StudentCount),
			Action: "schedule_counseling",
		})
	}

	for _, insight := range insights {
		switch insight.Kind {
		case models.InsightPerformance:
			if detailInt(insight.Details, "at_risk_students") > 0 {
				recommendations = append(recommendations, models.Recommendation{
					Kind:        models.RecommendationAcademic,
					Priority:    models.PriorityMedium,
					Title:       "Review assessment strategy",
					Description: "Several graded submissions fall below the at-risk threshold. Consider revisiting assessment difficulty and weighting.",
					Action:      "review_assessments",
				})
			}
			if detailFloat(insight.Details, "average_grade") < targetAverageGrade {
				recommendations = append(recommendations, models.Recommendation{
					Kind:        models.RecommendationAcademic,
					Priority:    models.PriorityMedium,
					Title:       "Adjust instructional methods",
					Description: "The class average is below target. Alternative teaching approaches or review sessions may help.",
					Action:      "adjust_instruction",
				})
			}
		case models.InsightEngagement:
			recommendations = append(recommendations, models.Recommendation{
				Kind:        models.RecommendationEngagement,
				Priority:    models.PriorityMedium,
				Title:       "Follow up on missing submissions",
				Description: "Completion is below target. Reach out to students with ungraded or missing work.",
				Action:      "follow_up_submissions",
			})
		}
	}

	return recommendations
}

// detailInt reads a numeric insight detail that may have gone through a
// JSON round trip (where all numbers decode as float64).
func detailInt(details map[string]interface{}, key string) int {
	switch v := details[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

func detailFloat(details map[string]interface{}, key string) float64 {
	switch v := details[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}
