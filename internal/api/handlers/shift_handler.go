package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/andresuchdata/shiftops/internal/api/middleware"
	"github.com/andresuchdata/shiftops/internal/domain"
	"github.com/andresuchdata/shiftops/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ShiftHandler struct {
	service *service.ShiftAnalyticsService
}

func NewShiftHandler(service *service.ShiftAnalyticsService) *ShiftHandler {
	return &ShiftHandler{service: service}
}

func (h *ShiftHandler) GetShifts(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		respondError(c, err, "invalid filter")
		return
	}

	rows, err := h.service.GetShifts(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, "failed to fetch shifts")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": rows,
		"total": len(rows),
	})
}

func (h *ShiftHandler) GetStatistics(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		respondError(c, err, "invalid filter")
		return
	}

	stats, err := h.service.GetStatistics(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, "failed to fetch statistics")
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *ShiftHandler) GetFilterOptions(c *gin.Context) {
	opts, err := h.service.GetFilterOptions(c.Request.Context())
	if err != nil {
		respondError(c, err, "failed to fetch filter options")
		return
	}

	c.JSON(http.StatusOK, opts)
}

func (h *ShiftHandler) GetBreakdown(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		respondError(c, err, "invalid filter")
		return
	}

	by := domain.BreakdownDimension(c.DefaultQuery("by", string(domain.BreakdownByOrganization)))
	groups, err := h.service.GetBreakdown(c.Request.Context(), filter, by)
	if err != nil {
		respondError(c, err, "failed to fetch breakdown")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"by":     by,
		"groups": groups,
	})
}

func (h *ShiftHandler) ExportShifts(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		respondError(c, err, "invalid filter")
		return
	}

	file, err := h.service.ExportReport(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, "failed to export shifts")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	c.Data(http.StatusOK, xlsxContentType, file.Data)
}

func (h *ShiftHandler) GetBuckets(c *gin.Context) {
	filter, g, m, err := parseSeriesRequest(c)
	if err != nil {
		respondError(c, err, "invalid request")
		return
	}

	buckets, err := h.service.GetBuckets(c.Request.Context(), filter, g, m)
	if err != nil {
		respondError(c, err, "failed to fetch buckets")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"granularity": g,
		"metric":      m,
		"buckets":     buckets,
	})
}

func (h *ShiftHandler) GetTrend(c *gin.Context) {
	filter, g, m, err := parseSeriesRequest(c)
	if err != nil {
		respondError(c, err, "invalid request")
		return
	}

	report, err := h.service.GetTrend(c.Request.Context(), filter, g, m)
	if errors.Is(err, service.ErrInsufficientData) {
		c.JSON(http.StatusOK, gin.H{
			"granularity":    g,
			"metric":         m,
			"trend":          nil,
			"current_period": nil,
		})
		return
	}
	if err != nil {
		respondError(c, err, "failed to fetch trend")
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *ShiftHandler) GetMonthForecast(c *gin.Context) {
	filter, g, m, err := parseSeriesRequest(c)
	if err != nil {
		respondError(c, err, "invalid request")
		return
	}

	month, err := parseMonth(c, h.service.Now())
	if err != nil {
		respondError(c, err, "invalid request")
		return
	}

	fc, err := h.service.GetMonthForecast(c.Request.Context(), filter, g, m, month)
	if err != nil {
		respondError(c, err, "failed to fetch forecast")
		return
	}

	c.JSON(http.StatusOK, fc)
}

func (h *ShiftHandler) InvalidateCache(c *gin.Context) {
	if err := h.service.InvalidateCache(c.Request.Context()); err != nil {
		respondError(c, err, "failed to invalidate cache")
		return
	}

	log.Info().Str("request_id", middleware.GetRequestID(c)).Msg("Statistics cache invalidated")
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func parseSeriesRequest(c *gin.Context) (domain.FilterState, domain.Granularity, domain.Metric, error) {
	filter, err := parseFilter(c)
	if err != nil {
		return filter, "", "", err
	}
	g, err := parseGranularity(c)
	if err != nil {
		return filter, "", "", err
	}
	m, err := parseMetric(c)
	if err != nil {
		return filter, "", "", err
	}
	return filter, g, m, nil
}

// respondError answers 400 for invalid input and 500 for everything else.
func respondError(c *gin.Context, err error, message string) {
	status := http.StatusInternalServerError
	if errors.Is(err, service.ErrInvalidInput) {
		status = http.StatusBadRequest
	} else {
		log.Error().
			Err(err).
			Str("request_id", middleware.GetRequestID(c)).
			Str("path", c.Request.URL.Path).
			Msg(message)
	}

	c.JSON(status, gin.H{"error": message, "details": err.Error()})
}
