package http

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/smartcity/calo/internal/domain"
	"github.com/smartcity/calo/internal/service"
)

const (
	serviceStatus = "CALO Backend Operational"
	serviceVer    = "0.2"
)

// Analyzer is the pipeline surface the handlers depend on
type Analyzer interface {
	Analyze(ctx context.Context) (domain.AnalyzeResponse, error)
	History(ctx context.Context, limit int) ([]domain.AnalysisRecord, error)
	Services(ctx context.Context) map[string]string
}

// Handler contains all HTTP handlers
type Handler struct {
	analyzer Analyzer
	logger   *slog.Logger
}

// NewHandler creates a new handler
func NewHandler(analyzer Analyzer, logger *slog.Logger) *Handler {
	return &Handler{analyzer: analyzer, logger: logger}
}

// HealthCheck returns process status and the state of each pipeline component
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":   serviceStatus,
		"version":  serviceVer,
		"services": h.analyzer.Services(c.Context()),
	})
}

// Analyze runs the pipeline and returns the published analysis
func (h *Handler) Analyze(c *fiber.Ctx) error {
	resp, err := h.analyzer.Analyze(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// AnalyzeDeprecated serves the legacy /analyze path
func (h *Handler) AnalyzeDeprecated(c *fiber.Ctx) error {
	c.Set("Deprecation", "true")
	c.Set("Link", `</api/v1/analyze>; rel="successor-version"`)
	return h.Analyze(c)
}

// GetHistory returns recent analyses, newest first
func (h *Handler) GetHistory(c *fiber.Ctx) error {
	limit := service.DefaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "limit must be an integer")
		}
		limit = n
	}

	records, err := h.analyzer.History(c.Context(), limit)
	if errors.Is(err, service.ErrInvalidLimit) {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    records,
		"count":   len(records),
	})
}
