package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"

	"github.com/smartcity/calo/internal/config"
	"github.com/smartcity/calo/internal/delivery/http"
	"github.com/smartcity/calo/internal/domain"
	"github.com/smartcity/calo/internal/observability"
	"github.com/smartcity/calo/internal/repository/postgres"
	"github.com/smartcity/calo/internal/service"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := observability.NewLogger(cfg)
	slog.SetDefault(logger)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	// Database connection
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var repo domain.AnalysisRepository = postgres.NewMockRepository()
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set, analysis history kept in memory")
	} else if pool, err := connectPostgres(ctx, cfg.DatabaseURL); err != nil {
		logger.Warn("could not connect to database, analysis history kept in memory", "error", err)
	} else {
		defer pool.Close()
		pgRepo := postgres.NewPostgresRepository(pool)
		if err := pgRepo.EnsureSchema(ctx); err != nil {
			logger.Warn("schema setup failed", "error", err)
		}
		repo = pgRepo
		logger.Info("connected to PostgreSQL")
	}

	// Pipeline components, created once and read-only afterwards
	catalog := service.LoadProtocolCatalog(cfg.ProtocolsPath, logger)
	metrics.CatalogProtocols.Set(float64(catalog.Len()))

	chain := service.NewReasoningChain(cfg.ReasoningTimeout, logger, metrics,
		service.ProviderCandidate{
			Name:       "groq",
			Configured: cfg.GroqAPIKey != "",
			Build: func() (service.ReasoningStrategy, error) {
				return service.NewGroqClient(service.ProviderConfig{
					APIKey:  cfg.GroqAPIKey,
					Model:   cfg.GroqModel,
					BaseURL: cfg.GroqBaseURL,
					City:    cfg.CityName,
					Timeout: cfg.ReasoningTimeout,
				})
			},
		},
		service.ProviderCandidate{
			Name:       "gemini",
			Configured: cfg.GeminiAPIKey != "",
			Build: func() (service.ReasoningStrategy, error) {
				return service.NewGeminiClient(service.ProviderConfig{
					APIKey:  cfg.GeminiAPIKey,
					Model:   cfg.GeminiModel,
					BaseURL: cfg.GeminiBaseURL,
					City:    cfg.CityName,
					Timeout: cfg.ReasoningTimeout,
				})
			},
		},
	)

	// Data acquisition
	var collector domain.CityDataCollector = service.NewCityCollector(
		cfg.CityName,
		service.NewWeatherService(cfg.WeatherAPIURL, cfg.UseRealData, cfg.FetchTimeout, clock),
		service.NewComplaintService(0, clock),
		service.NewTrendService(cfg.CityName),
		service.NewNewsService(cfg.NewsRSSURL, cfg.UseRealData, cfg.FetchTimeout),
		clock, logger, metrics,
	)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unavailable, snapshot cache disabled", "addr", cfg.RedisAddr, "error", err)
		} else {
			collector = service.NewCachedCollector(collector, rdb, cfg.CityName, cfg.CacheTTL, logger, metrics)
			logger.Info("snapshot cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.CacheTTL)
		}
	}

	analysisSvc := service.NewAnalysisService(service.AnalysisDeps{
		City:       cfg.CityName,
		LiveData:   cfg.UseRealData,
		Collector:  collector,
		Normalizer: service.NewSignalNormalizer(cfg.CityName),
		Evaluator:  service.NewRiskEvaluator(),
		Catalog:    catalog,
		Chain:      chain,
		Formatter:  service.NewResponseFormatter(logger),
		Repo:       repo,
		Clock:      clock,
		Logger:     logger,
		Metrics:    metrics,
	})

	// Fiber App
	app := fiber.New(fiber.Config{
		AppName:      "CALO API v0.2",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.ReasoningTimeout + 10*time.Second,
		ErrorHandler: http.NewErrorHandler(cfg.IsDevelopment(), logger),
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.AllowedOrigins, ","),
		AllowMethods: "GET,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Routes
	http.SetupRoutes(app, analysisSvc, logger)

	// Graceful shutdown
	go func() {
		logger.Info("server starting", "port", cfg.Port, "env", cfg.Env, "reasoning_provider", chain.Provider())
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	analysisSvc.WaitBackground()
	logger.Info("server exited gracefully")
}

func connectPostgres(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
