package handlers

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/snipper-app/snipper/app/dto"
	businessflow "github.com/snipper-app/snipper/business_flow"
	"github.com/snipper-app/snipper/utils"
)

const dateParamLayout = "2006-01-02"

// AnalyticsHandlerInterface defines the contract for analytics handlers
type AnalyticsHandlerInterface interface {
	GetAnalytics(c fiber.Ctx) error
	GetStats(c fiber.Ctx) error
	ExportClicks(c fiber.Ctx) error
}

type AnalyticsHandler struct {
	analyticsFlow businessflow.AnalyticsFlow
	exportFlow    businessflow.ExportFlow
}

func NewAnalyticsHandler(analyticsFlow businessflow.AnalyticsFlow, exportFlow businessflow.ExportFlow) AnalyticsHandlerInterface {
	return &AnalyticsHandler{
		analyticsFlow: analyticsFlow,
		exportFlow:    exportFlow,
	}
}

func (h *AnalyticsHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *AnalyticsHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// GetAnalytics aggregates a short link's click history across all dimensions
// @Summary Get Short Link Analytics
// @Tags Analytics
// @Produce json
// @Param uuid path string true "Short link UUID"
// @Param start query string false "Start date (YYYY-MM-DD)"
// @Param end query string false "End date (YYYY-MM-DD), inclusive"
// @Success 200 {object} dto.APIResponse{data=dto.AnalyticsSnapshotDTO} "Retrieved"
// @Failure 400 {object} dto.APIResponse "Invalid date range"
// @Failure 404 {object} dto.APIResponse "Short link not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/links/{uuid}/analytics [get]
func (h *AnalyticsHandler) GetAnalytics(c fiber.Ctx) error {
	linkUUID := c.Params("uuid")

	dateRange, err := parseDateRange(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid date range", "INVALID_DATE_RANGE", err.Error())
	}

	snapshot, err := h.analyticsFlow.AggregateByUUID(h.createRequestContext(c, "/api/v1/links/"+linkUUID+"/analytics"), linkUUID, dateRange)
	if err != nil {
		return h.flowError(c, err, "Failed to aggregate analytics", "ANALYTICS_AGGREGATE_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Analytics retrieved", snapshot)
}

// GetStats returns the lightweight per-link click counter
// @Summary Get Short Link Stats
// @Tags Analytics
// @Produce json
// @Param uuid path string true "Short link UUID"
// @Success 200 {object} dto.APIResponse{data=dto.LinkStatsDTO} "Retrieved"
// @Failure 404 {object} dto.APIResponse "Short link not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/links/{uuid}/stats [get]
func (h *AnalyticsHandler) GetStats(c fiber.Ctx) error {
	linkUUID := c.Params("uuid")

	stats, err := h.analyticsFlow.Stats(h.createRequestContext(c, "/api/v1/links/"+linkUUID+"/stats"), linkUUID)
	if err != nil {
		return h.flowError(c, err, "Failed to fetch stats", "STATS_FETCH_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Stats retrieved", stats)
}

// ExportClicks streams the raw click history as CSV or Excel
// @Summary Export Short Link Clicks
// @Tags Analytics
// @Produce application/octet-stream
// @Param uuid path string true "Short link UUID"
// @Param format query string false "Export format: csv or xlsx" default(csv)
// @Param start query string false "Start date (YYYY-MM-DD)"
// @Param end query string false "End date (YYYY-MM-DD), inclusive"
// @Success 200 {file} file "Export file"
// @Failure 400 {object} dto.APIResponse "Invalid format or date range"
// @Failure 404 {object} dto.APIResponse "Short link not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/links/{uuid}/clicks/export [get]
func (h *AnalyticsHandler) ExportClicks(c fiber.Ctx) error {
	linkUUID := c.Params("uuid")

	dateRange, err := parseDateRange(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid date range", "INVALID_DATE_RANGE", err.Error())
	}

	ctx := h.createRequestContext(c, "/api/v1/links/"+linkUUID+"/clicks/export")

	var (
		filename    string
		payload     []byte
		contentType string
	)
	switch c.Query("format", "csv") {
	case "csv":
		filename, payload, err = h.exportFlow.DownloadClicksCSV(ctx, linkUUID, dateRange)
		contentType = "text/csv"
	case "xlsx":
		filename, payload, err = h.exportFlow.DownloadClicksExcel(ctx, linkUUID, dateRange)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Unsupported export format", "INVALID_FORMAT", "format must be csv or xlsx")
	}
	if err != nil {
		return h.flowError(c, err, "Failed to export clicks", "CLICKS_EXPORT_FAILED")
	}

	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Status(fiber.StatusOK).Send(payload)
}

func (h *AnalyticsHandler) flowError(c fiber.Ctx, err error, message, fallbackCode string) error {
	if be, ok := err.(*businessflow.BusinessError); ok {
		switch be.Code {
		case "SHORT_LINK_NOT_FOUND":
			return h.ErrorResponse(c, fiber.StatusNotFound, "Short link not found", be.Code, nil)
		case "INVALID_DATE_RANGE":
			return h.ErrorResponse(c, fiber.StatusBadRequest, be.Message, be.Code, nil)
		}
	}
	log.Println(message, err)
	return h.ErrorResponse(c, fiber.StatusInternalServerError, message, fallbackCode, nil)
}

// parseDateRange reads the optional start/end query parameters. End stays a
// bare date here; the flow widens it to the end of its day.
func parseDateRange(c fiber.Ctx) (*businessflow.AnalyticsDateRange, error) {
	startParam := c.Query("start")
	endParam := c.Query("end")
	if startParam == "" && endParam == "" {
		return nil, nil
	}

	dateRange := &businessflow.AnalyticsDateRange{}
	if startParam != "" {
		start, err := time.Parse(dateParamLayout, startParam)
		if err != nil {
			return nil, err
		}
		dateRange.Start = &start
	}
	if endParam != "" {
		end, err := time.Parse(dateParamLayout, endParam)
		if err != nil {
			return nil, err
		}
		dateRange.End = &end
	}
	return dateRange, nil
}

func (h *AnalyticsHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *AnalyticsHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
