package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/analytics-service/internal/repositories"
	"github.com/SAP-F-2025/analytics-service/internal/services"
	"github.com/SAP-F-2025/analytics-service/internal/utils"
)

// timeNow is swappable in tests that assert staleness output.
var timeNow = time.Now

type AnalyticsHandler struct {
	BaseHandler
	analyticsService services.AnalyticsService
	exportService    services.ExportService
	validator        *utils.Validator
}

func NewAnalyticsHandler(
	analyticsService services.AnalyticsService,
	exportService services.ExportService,
	validator *utils.Validator,
	logger utils.Logger,
) *AnalyticsHandler {
	return &AnalyticsHandler{
		BaseHandler:      NewBaseHandler(logger),
		analyticsService: analyticsService,
		exportService:    exportService,
		validator:        validator,
	}
}

type HistoryQuery struct {
	Limit  int `form:"limit" validate:"min=0,max=500"`
	Offset int `form:"offset" validate:"min=0"`
}

// GetAnalytics returns the analytics bundle for a faculty, serving from
// cache when a fresh entry exists.
// @Summary Get faculty analytics
// @Description Returns cached analytics or computes them on a cache miss
// @Tags analytics
// @Produce json
// @Param faculty_id path string true "Faculty ID"
// @Success 200 {object} models.AnalyticsBundle
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /analytics/{faculty_id} [get]
func (h *AnalyticsHandler) GetAnalytics(c *gin.Context) {
	facultyID := ParseStringIDParam(c, "faculty_id")
	if facultyID == "" {
		return
	}

	h.LogRequest(c, "Computing analytics", "faculty_id", facultyID)

	bundle, err := h.analyticsService.ComputeAnalytics(c.Request.Context(), facultyID, h.progressLogger(facultyID))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, bundle)
}

// RefreshAnalytics invalidates the cache and recomputes.
// @Summary Refresh faculty analytics
// @Description Invalidates the cached bundle and recomputes from the record source
// @Tags analytics
// @Produce json
// @Param faculty_id path string true "Faculty ID"
// @Success 200 {object} models.AnalyticsBundle
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /analytics/{faculty_id}/refresh [post]
func (h *AnalyticsHandler) RefreshAnalytics(c *gin.Context) {
	facultyID := ParseStringIDParam(c, "faculty_id")
	if facultyID == "" {
		return
	}

	h.LogRequest(c, "Refreshing analytics", "faculty_id", facultyID)

	bundle, err := h.analyticsService.RefreshAnalytics(c.Request.Context(), facultyID, h.progressLogger(facultyID))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, bundle)
}

// GetCachedAnalytics returns the cached entry with staleness metadata.
// @Summary Get cached analytics
// @Description Returns the cached bundle and its age, or 404 when absent
// @Tags analytics
// @Produce json
// @Param faculty_id path string true "Faculty ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /analytics/{faculty_id}/cached [get]
func (h *AnalyticsHandler) GetCachedAnalytics(c *gin.Context) {
	facultyID := ParseStringIDParam(c, "faculty_id")
	if facultyID == "" {
		return
	}

	entry, err := h.analyticsService.GetCachedAnalytics(c.Request.Context(), facultyID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	if entry == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "No cached analytics for faculty",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"faculty_id":  entry.FacultyID,
		"bundle":      entry.Bundle,
		"computed_at": entry.ComputedAt,
		"age_hours":   entry.AgeHours(timeNow()),
	})
}

// GetAnalyticsHistory lists persisted computation snapshots, newest first.
// @Summary Get analytics history
// @Tags analytics
// @Produce json
// @Param faculty_id path string true "Faculty ID"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Router /analytics/{faculty_id}/history [get]
func (h *AnalyticsHandler) GetAnalyticsHistory(c *gin.Context) {
	facultyID := ParseStringIDParam(c, "faculty_id")
	if facultyID == "" {
		return
	}

	var query HistoryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid query parameters",
			Details: err.Error(),
		})
		return
	}
	if err := h.validator.Validate(&query); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: err.Error(),
		})
		return
	}
	if query.Limit == 0 {
		query.Limit = 20
	}

	snapshots, total, err := h.analyticsService.ListSnapshots(c.Request.Context(), facultyID, repositories.SnapshotFilters{
		Limit:  query.Limit,
		Offset: query.Offset,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"snapshots": snapshots,
		"total":     total,
	})
}

// ExportAnalytics streams the bundle as an Excel workbook.
// @Summary Export analytics report
// @Tags analytics
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param faculty_id path string true "Faculty ID"
// @Success 200 {file} binary
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /analytics/{faculty_id}/export [get]
func (h *AnalyticsHandler) ExportAnalytics(c *gin.Context) {
	facultyID := ParseStringIDParam(c, "faculty_id")
	if facultyID == "" {
		return
	}

	h.LogRequest(c, "Exporting analytics report", "faculty_id", facultyID)

	report, err := h.exportService.ExportAnalyticsReport(c.Request.Context(), facultyID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="analytics-report-`+facultyID+`.xlsx"`)
	c.Header("Content-Length", strconv.Itoa(len(report)))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", report)
}

func (h *AnalyticsHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrFacultyIDRequired), services.IsValidation(err):
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request", err)
	case errors.Is(err, services.ErrNoCachedAnalytics):
		h.RespondWithError(c, http.StatusNotFound, "No cached analytics for faculty", err)
	default:
		h.RespondWithError(c, http.StatusInternalServerError, "Internal server error", err)
	}
}

// progressLogger traces pipeline checkpoints at debug level.
func (h *AnalyticsHandler) progressLogger(facultyID string) services.ProgressFunc {
	return func(p services.Progress) {
		h.logger.Debug("Analytics progress",
			"faculty_id", facultyID,
			"stage", p.Stage,
			"percent", p.Percent)
	}
}
