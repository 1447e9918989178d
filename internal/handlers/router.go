package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/analytics-service/internal/services"
	"github.com/SAP-F-2025/analytics-service/internal/utils"
)

type HandlerManager struct {
	analyticsHandler *AnalyticsHandler
	authMiddleware   gin.HandlerFunc
}

func NewHandlerManager(
	analyticsService services.AnalyticsService,
	exportService services.ExportService,
	validator *utils.Validator,
	logger utils.Logger,
	authMiddleware gin.HandlerFunc,
) *HandlerManager {
	return &HandlerManager{
		analyticsHandler: NewAnalyticsHandler(analyticsService, exportService, validator, logger),
		authMiddleware:   authMiddleware,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Health check endpoint
	router.GET("/health", HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	if hm.authMiddleware != nil {
		v1.Use(hm.authMiddleware)
	}
	{
		analytics := v1.Group("/analytics")
		{
			analytics.GET("/:faculty_id", hm.analyticsHandler.GetAnalytics)
			analytics.POST("/:faculty_id/refresh", hm.analyticsHandler.RefreshAnalytics)
			analytics.GET("/:faculty_id/cached", hm.analyticsHandler.GetCachedAnalytics)
			analytics.GET("/:faculty_id/history", hm.analyticsHandler.GetAnalyticsHistory)
			analytics.GET("/:faculty_id/export", hm.analyticsHandler.ExportAnalytics)
		}
	}
}
