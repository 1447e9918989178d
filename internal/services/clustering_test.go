package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SAP-F-2025/analytics-service/internal/models"
)

func feature(id string, attendance, grade float64) models.StudentFeature {
	return models.StudentFeature{
		StudentID:      id,
		EnrollmentID:   "EN-" + id,
		FullName:       "Student " + id,
		AttendanceRate: attendance,
		AverageGrade:   grade,
	}
}

func TestNearestCentroidClassifier_Cluster(t *testing.T) {
	classifier := NewNearestCentroidClassifier()

	t.Run("empty feature set yields no clusters", func(t *testing.T) {
		clusters := classifier.Cluster(nil)
		assert.Empty(t, clusters)
	})

	t.Run("high attendance and grade lands in high performers", func(t *testing.T) {
		clusters := classifier.Cluster([]models.StudentFeature{feature("ST-1", 95, 90)})

		assert.Len(t, clusters, 1)
		assert.Equal(t, models.ClusterHighPerformers, clusters[0].Label)
		assert.Equal(t, 1, clusters[0].StudentCount)
		assert.Equal(t, 0.90, clusters[0].CentroidThresholds.Attendance)
		assert.Equal(t, 0.85, clusters[0].CentroidThresholds.Grade)
	})

	t.Run("low attendance and grade lands in struggling", func(t *testing.T) {
		clusters := classifier.Cluster([]models.StudentFeature{feature("ST-1", 40, 35)})

		assert.Len(t, clusters, 1)
		assert.Equal(t, models.ClusterStruggling, clusters[0].Label)
	})

	t.Run("every feature lands in exactly one cluster", func(t *testing.T) {
		features := []models.StudentFeature{
			feature("ST-1", 95, 90),
			feature("ST-2", 82, 74),
			feature("ST-3", 71, 66),
			feature("ST-4", 45, 40),
			feature("ST-5", 60, 55),
			feature("ST-6", 88, 80),
		}
		clusters := classifier.Cluster(features)

		total := 0
		seen := make(map[string]int)
		for _, cluster := range clusters {
			total += cluster.StudentCount
			assert.Len(t, cluster.Students, cluster.StudentCount)
			for _, member := range cluster.Students {
				seen[member.StudentID]++
			}
		}
		assert.Equal(t, len(features), total)
		for id, count := range seen {
			assert.Equal(t, 1, count, "student %s assigned more than once", id)
		}
	})

	t.Run("assignment is deterministic across runs", func(t *testing.T) {
		features := []models.StudentFeature{
			feature("ST-1", 95, 90),
			feature("ST-2", 75, 70),
			feature("ST-3", 40, 35),
			feature("ST-4", 80, 77),
		}

		first := classifier.Cluster(features)
		second := classifier.Cluster(features)
		assert.Equal(t, first, second)
	})

	t.Run("empty clusters are omitted", func(t *testing.T) {
		clusters := classifier.Cluster([]models.StudentFeature{
			feature("ST-1", 95, 90),
			feature("ST-2", 40, 35),
		})

		assert.Len(t, clusters, 2)
		assert.Equal(t, models.ClusterHighPerformers, clusters[0].Label)
		assert.Equal(t, models.ClusterStruggling, clusters[1].Label)
	})

	t.Run("equidistant feature keeps first-listed centroid", func(t *testing.T) {
		// (0.85, 0.80) is exactly between the high-performer and
		// consistent centroids.
		clusters := classifier.Cluster([]models.StudentFeature{feature("ST-1", 85, 80)})

		assert.Len(t, clusters, 1)
		assert.Equal(t, models.ClusterHighPerformers, clusters[0].Label)
	})
}

func TestKMeansClusterer_Cluster(t *testing.T) {
	t.Run("empty feature set yields no clusters", func(t *testing.T) {
		clusterer := NewKMeansClusterer(0)
		assert.Empty(t, clusterer.Cluster(nil))
	})

	t.Run("membership is total and unique", func(t *testing.T) {
		clusterer := NewKMeansClusterer(25)
		features := []models.StudentFeature{
			feature("ST-1", 98, 95),
			feature("ST-2", 92, 88),
			feature("ST-3", 75, 70),
			feature("ST-4", 72, 68),
			feature("ST-5", 35, 30),
			feature("ST-6", 40, 42),
		}

		clusters := clusterer.Cluster(features)

		total := 0
		for _, cluster := range clusters {
			total += cluster.StudentCount
		}
		assert.Equal(t, len(features), total)
	})

	t.Run("deterministic for a fixed feature set", func(t *testing.T) {
		clusterer := NewKMeansClusterer(25)
		features := []models.StudentFeature{
			feature("ST-1", 98, 95),
			feature("ST-2", 60, 55),
			feature("ST-3", 75, 70),
			feature("ST-4", 30, 25),
		}

		assert.Equal(t, clusterer.Cluster(features), clusterer.Cluster(features))
	})

	t.Run("tight groups separate into their seed labels", func(t *testing.T) {
		clusterer := NewKMeansClusterer(25)
		features := []models.StudentFeature{
			feature("ST-1", 95, 90),
			feature("ST-2", 93, 88),
			feature("ST-3", 42, 38),
			feature("ST-4", 45, 40),
		}

		clusters := clusterer.Cluster(features)

		labels := make(map[models.ClusterLabel]int)
		for _, cluster := range clusters {
			labels[cluster.Label] = cluster.StudentCount
		}
		assert.Equal(t, 2, labels[models.ClusterHighPerformers])
		assert.Equal(t, 2, labels[models.ClusterStruggling])
	})
}
