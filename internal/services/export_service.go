package services

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/analytics-service/internal/models"
	"github.com/SAP-F-2025/analytics-service/internal/utils"
)

// ExportService renders an analytics bundle as a downloadable Excel
// report for faculty who want the raw segment membership.
type ExportService interface {
	ExportAnalyticsReport(ctx context.Context, facultyID string) ([]byte, error)
}

type exportService struct {
	analytics AnalyticsService
	logger    utils.Logger
}

func NewExportService(analytics AnalyticsService, logger utils.Logger) ExportService {
	return &exportService{
		analytics: analytics,
		logger:    logger.With("service", "export"),
	}
}

func (s *exportService) ExportAnalyticsReport(ctx context.Context, facultyID string) ([]byte, error) {
	entry, err := s.analytics.GetCachedAnalytics(ctx, facultyID)
	if err != nil {
		return nil, err
	}

	var bundle models.AnalyticsBundle
	var computedAt time.Time
	if entry != nil {
		bundle = entry.Bundle
		computedAt = entry.ComputedAt
	} else {
		computed, err := s.analytics.ComputeAnalytics(ctx, facultyID, nil)
		if err != nil {
			return nil, err
		}
		bundle = *computed
		computedAt = time.Now()
	}

	f := excelize.NewFile()

	if err := s.writeOverviewSheet(f, facultyID, bundle.Performance, computedAt); err != nil {
		return nil, err
	}
	if err := s.writeClustersSheet(f, bundle.Clustering); err != nil {
		return nil, err
	}
	if err := s.writeInsightsSheet(f, bundle.Insights, bundle.Recommendations); err != nil {
		return nil, err
	}

	// Drop the default sheet excelize creates.
	f.DeleteSheet("Sheet1")

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *exportService) writeOverviewSheet(f *excelize.File, facultyID string, metrics models.PerformanceMetrics, computedAt time.Time) error {
	sheetName := "Overview"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)

	rows := [][]interface{}{
		{"Faculty ID", facultyID},
		{"Computed At", computedAt.Format("2006-01-02 15:04:05")},
		{"Average Grade (%)", metrics.AverageGrade},
		{"Completion Rate (%)", metrics.CompletionRate},
		{"Total Students", metrics.TotalStudents},
		{"At-Risk Students", metrics.AtRiskStudents},
		{"Active Courses", metrics.ActiveCourses},
	}

	for rowIndex, row := range rows {
		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+1)
			f.SetCellValue(sheetName, cell, value)
		}
	}
	return nil
}

func (s *exportService) writeClustersSheet(f *excelize.File, clusters []models.Cluster) error {
	sheetName := "Clusters"
	if _, err := f.NewSheet(sheetName); err != nil {
		return fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	headers := []string{
		"Cluster", "Student ID", "Enrollment ID", "Full Name",
		"Attendance Rate (%)", "Average Grade (%)",
	}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	rowIndex := 2
	for _, cluster := range clusters {
		for _, student := range cluster.Students {
			row := []interface{}{
				cluster.Label.DisplayName(),
				student.StudentID,
				student.EnrollmentID,
				student.FullName,
				student.AttendanceRate,
				student.AverageGrade,
			}
			for colIndex, value := range row {
				cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex)
				f.SetCellValue(sheetName, cell, value)
			}
			rowIndex++
		}
	}
	return nil
}

func (s *exportService) writeInsightsSheet(f *excelize.File, insights []models.Insight, recommendations []models.Recommendation) error {
	sheetName := "Insights"
	if _, err := f.NewSheet(sheetName); err != nil {
		return fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	headers := []string{"Type", "Kind", "Priority", "Title", "Description", "Action"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	rowIndex := 2
	for _, insight := range insights {
		row := []interface{}{"insight", string(insight.Kind), "", insight.Title, insight.Description, ""}
		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex)
			f.SetCellValue(sheetName, cell, value)
		}
		rowIndex++
	}
	for _, rec := range recommendations {
		row := []interface{}{"recommendation", string(rec.Kind), string(rec.Priority), rec.Title, rec.Description, rec.Action}
		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex)
			f.SetCellValue(sheetName, cell, value)
		}
		rowIndex++
	}
	return nil
}
