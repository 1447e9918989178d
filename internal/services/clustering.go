package services

import (
	"math"

	"github.com/SAP-F-2025/analytics-service/internal/models"
)

// ClusterStrategy partitions feature vectors into behavioral segments.
// Every feature is assigned to exactly one of the four labels; clusters
// with no members are omitted from the result.
type ClusterStrategy interface {
	Cluster(features []models.StudentFeature) []models.Cluster
}

// centroid is a reference point in normalized (attendance, grade) space.
type centroid struct {
	label      models.ClusterLabel
	attendance float64
	grade      float64
}

// Declaration order doubles as the tie break: on equal distance the
// first-listed centroid wins.
var fixedCentroids = []centroid{
	{models.ClusterHighPerformers, 0.90, 0.85},
	{models.ClusterConsistent, 0.80, 0.75},
	{models.ClusterAtRisk, 0.70, 0.65},
	{models.ClusterStruggling, 0.50, 0.50},
}

// NearestCentroidClassifier assigns each feature to the closest of the
// four fixed centroids by Euclidean distance. This is a single
// deterministic pass; centroids are never re-estimated from data.
type NearestCentroidClassifier struct{}

func NewNearestCentroidClassifier() *NearestCentroidClassifier {
	return &NearestCentroidClassifier{}
}

func (c *NearestCentroidClassifier) Cluster(features []models.StudentFeature) []models.Cluster {
	return assignToCentroids(features, fixedCentroids)
}

// assignToCentroids buckets every feature under its argmin centroid and
// drops empty buckets, preserving centroid order in the result.
func assignToCentroids(features []models.StudentFeature, centroids []centroid) []models.Cluster {
	buckets := make([][]models.StudentSummary, len(centroids))

	for _, feature := range features {
		idx := nearestCentroid(feature, centroids)
		buckets[idx] = append(buckets[idx], feature.Summary())
	}

	clusters := make([]models.Cluster, 0, len(centroids))
	for i, members := range buckets {
		if len(members) == 0 {
			continue
		}
		clusters = append(clusters, models.Cluster{
			Label:        centroids[i].label,
			StudentCount: len(members),
			Students:     members,
			CentroidThresholds: models.CentroidThresholds{
				Attendance: centroids[i].attendance,
				Grade:      centroids[i].grade,
			},
		})
	}
	return clusters
}

func nearestCentroid(feature models.StudentFeature, centroids []centroid) int {
	attendance := feature.AttendanceRate / 100
	grade := feature.AverageGrade / 100

	best := 0
	bestDist := math.Inf(1)
	for i, c := range centroids {
		d := euclidean(attendance, grade, c.attendance, c.grade)
		// Strict less-than keeps the first-listed centroid on ties.
		if d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

func euclidean(x1, y1, x2, y2 float64) float64 {
	dx := x1 - x2
	dy := y1 - y2
	return math.Sqrt(dx*dx + dy*dy)
}

// ===== ITERATIVE K-MEANS VARIANT =====

// KMeansClusterer runs Lloyd's algorithm seeded from the fixed centroids,
// re-estimating each centroid as the mean of its members until assignments
// stop changing or maxIterations is hit. Labels keep their seed semantics
// (a drifted "high performers" centroid still carries that label), and the
// whole procedure is deterministic for a given feature set.
type KMeansClusterer struct {
	maxIterations int
}

func NewKMeansClusterer(maxIterations int) *KMeansClusterer {
	if maxIterations <= 0 {
		maxIterations = 25
	}
	return &KMeansClusterer{maxIterations: maxIterations}
}

func (k *KMeansClusterer) Cluster(features []models.StudentFeature) []models.Cluster {
	if len(features) == 0 {
		return []models.Cluster{}
	}

	centroids := make([]centroid, len(fixedCentroids))
	copy(centroids, fixedCentroids)

	assignments := make([]int, len(features))
	for i := range assignments {
		assignments[i] = -1
	}

	for iter := 0; iter < k.maxIterations; iter++ {
		changed := false
		for i, feature := range features {
			idx := nearestCentroid(feature, centroids)
			if idx != assignments[i] {
				assignments[i] = idx
				changed = true
			}
		}
		if !changed {
			break
		}

		// Re-estimate. An empty cluster keeps its previous centroid so the
		// label space stays intact.
		var sums [4]struct {
			attendance float64
			grade      float64
			n          int
		}
		for i, feature := range features {
			s := &sums[assignments[i]]
			s.attendance += feature.AttendanceRate / 100
			s.grade += feature.AverageGrade / 100
			s.n++
		}
		for i := range centroids {
			if sums[i].n == 0 {
				continue
			}
			centroids[i].attendance = sums[i].attendance / float64(sums[i].n)
			centroids[i].grade = sums[i].grade / float64(sums[i].n)
		}
	}

	return assignToCentroids(features, centroids)
}
