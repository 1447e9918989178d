package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/analytics-service/internal/models"
	"github.com/SAP-F-2025/analytics-service/internal/repositories"
)

type stubAnalyticsService struct {
	mock.Mock
}

func (m *stubAnalyticsService) ComputeAnalytics(ctx context.Context, facultyID string, onProgress ProgressFunc) (*models.AnalyticsBundle, error) {
	args := m.Called(ctx, facultyID, onProgress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AnalyticsBundle), args.Error(1)
}

func (m *stubAnalyticsService) GetCachedAnalytics(ctx context.Context, facultyID string) (*models.CacheEntry, error) {
	args := m.Called(ctx, facultyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CacheEntry), args.Error(1)
}

func (m *stubAnalyticsService) RefreshAnalytics(ctx context.Context, facultyID string, onProgress ProgressFunc) (*models.AnalyticsBundle, error) {
	args := m.Called(ctx, facultyID, onProgress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AnalyticsBundle), args.Error(1)
}

func (m *stubAnalyticsService) ListSnapshots(ctx context.Context, facultyID string, filters repositories.SnapshotFilters) ([]*models.AnalyticsSnapshot, int64, error) {
	args := m.Called(ctx, facultyID, filters)
	return args.Get(0).([]*models.AnalyticsSnapshot), args.Get(1).(int64), args.Error(2)
}

func exportBundle() models.AnalyticsBundle {
	return models.AnalyticsBundle{
		Clustering: []models.Cluster{{
			Label:        models.ClusterHighPerformers,
			StudentCount: 1,
			Students: []models.StudentSummary{{
				StudentID:      "ST-1",
				EnrollmentID:   "EN-1",
				FullName:       "Grace Hopper",
				AttendanceRate: 96,
				AverageGrade:   93,
			}},
		}},
		Insights: []models.Insight{{
			Kind:  models.InsightPositive,
			Title: "Strong performers identified",
		}},
		Recommendations: []models.Recommendation{{
			Kind:     models.RecommendationEngagement,
			Priority: models.PriorityMedium,
			Title:    "Follow up on missing submissions",
			Action:   "follow_up_submissions",
		}},
		Performance: models.PerformanceMetrics{
			AverageGrade:   93,
			CompletionRate: 100,
			TotalStudents:  1,
			ActiveCourses:  1,
		},
	}
}

func TestExportService_ExportAnalyticsReport(t *testing.T) {
	ctx := context.Background()

	t.Run("exports the cached bundle when present", func(t *testing.T) {
		analytics := &stubAnalyticsService{}
		analytics.On("GetCachedAnalytics", mock.Anything, "F1").Return(&models.CacheEntry{
			FacultyID:  "F1",
			Bundle:     exportBundle(),
			ComputedAt: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		}, nil)

		service := NewExportService(analytics, testLogger())
		report, err := service.ExportAnalyticsReport(ctx, "F1")
		assert.NoError(t, err)
		assert.NotEmpty(t, report)

		f, err := excelize.OpenReader(bytes.NewReader(report))
		assert.NoError(t, err)
		defer f.Close()

		assert.ElementsMatch(t, []string{"Overview", "Clusters", "Insights"}, f.GetSheetList())

		facultyCell, err := f.GetCellValue("Overview", "B1")
		assert.NoError(t, err)
		assert.Equal(t, "F1", facultyCell)

		name, err := f.GetCellValue("Clusters", "D2")
		assert.NoError(t, err)
		assert.Equal(t, "Grace Hopper", name)

		action, err := f.GetCellValue("Insights", "F3")
		assert.NoError(t, err)
		assert.Equal(t, "follow_up_submissions", action)

		analytics.AssertNotCalled(t, "ComputeAnalytics", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("computes on a cold cache", func(t *testing.T) {
		analytics := &stubAnalyticsService{}
		analytics.On("GetCachedAnalytics", mock.Anything, "F1").Return(nil, nil)
		bundle := exportBundle()
		analytics.On("ComputeAnalytics", mock.Anything, "F1", mock.Anything).Return(&bundle, nil)

		service := NewExportService(analytics, testLogger())
		report, err := service.ExportAnalyticsReport(ctx, "F1")
		assert.NoError(t, err)
		assert.NotEmpty(t, report)
		analytics.AssertExpectations(t)
	})

	t.Run("propagates computation failure", func(t *testing.T) {
		analytics := &stubAnalyticsService{}
		analytics.On("GetCachedAnalytics", mock.Anything, "F1").Return(nil, nil)
		analytics.On("ComputeAnalytics", mock.Anything, "F1", mock.Anything).Return(nil, assert.AnError)

		service := NewExportService(analytics, testLogger())
		_, err := service.ExportAnalyticsReport(ctx, "F1")
		assert.Error(t, err)
	})
}
