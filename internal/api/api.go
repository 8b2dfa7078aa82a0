// internal/api/api.go
package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/shiftops/internal/api/handlers"
	"github.com/andresuchdata/shiftops/internal/api/middleware"
	"github.com/andresuchdata/shiftops/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const healthTimeout = 2 * time.Second

type Services struct {
	ShiftAnalyticsService *service.ShiftAnalyticsService
	// Ping reports backing-store health for /health; nil means always healthy.
	Ping func(ctx context.Context) error
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", healthHandler(services))

	apiGroup := router.Group("/api/v1")

	if services != nil && services.ShiftAnalyticsService != nil {
		shiftHandler := handlers.NewShiftHandler(services.ShiftAnalyticsService)

		shiftGroup := apiGroup.Group("/shifts")
		{
			shiftGroup.GET("", shiftHandler.GetShifts)
			shiftGroup.GET("/statistics", shiftHandler.GetStatistics)
			shiftGroup.GET("/options", shiftHandler.GetFilterOptions)
			shiftGroup.GET("/breakdown", shiftHandler.GetBreakdown)
			shiftGroup.GET("/export", shiftHandler.ExportShifts)
		}

		analyticsGroup := apiGroup.Group("/analytics")
		{
			analyticsGroup.GET("/buckets", shiftHandler.GetBuckets)
			analyticsGroup.GET("/trend", shiftHandler.GetTrend)
			analyticsGroup.GET("/forecast", shiftHandler.GetMonthForecast)
			analyticsGroup.DELETE("/cache", shiftHandler.InvalidateCache)
		}
	}

	return router
}

func healthHandler(services *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		if services != nil && services.Ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
			defer cancel()
			if err := services.Ping(ctx); err != nil {
				errorResponse(c, http.StatusServiceUnavailable, "database unavailable: "+err.Error())
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func errorResponse(c *gin.Context, statusCode int, message string) {
	log.Error().Msg(message)
	c.JSON(statusCode, gin.H{"error": message})
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
