package http

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes configures all HTTP routes
func SetupRoutes(app *fiber.App, analyzer Analyzer, logger *slog.Logger) {
	handler := NewHandler(analyzer, logger)

	// Health check
	app.Get("/", handler.HealthCheck)

	// Deprecated alias of /api/v1/analyze
	app.Get("/analyze", handler.AnalyzeDeprecated)

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// API v1 routes
	api := app.Group("/api/v1")
	{
		api.Get("/analyze", handler.Analyze)
		api.Get("/history", handler.GetHistory)
	}
}
