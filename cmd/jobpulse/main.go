package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/jobpulse/backend/internal/analytics"
	"github.com/jobpulse/backend/internal/api"
	"github.com/jobpulse/backend/internal/api/handlers"
	"github.com/jobpulse/backend/internal/api/middleware"
	"github.com/jobpulse/backend/internal/config"
	"github.com/jobpulse/backend/internal/domain"
	"github.com/jobpulse/backend/internal/export"
	"github.com/jobpulse/backend/internal/fetch"
	"github.com/jobpulse/backend/internal/pipeline"
	"github.com/jobpulse/backend/internal/store"
	"github.com/jobpulse/backend/pkg/logger"
)

const appVersion = "1.0.0"

func main() {
	// Parse flags
	configPath := flag.String("config", "", "Path to config file")
	mode := flag.String("mode", "run", "run: one pipeline run; serve: HTTP API")
	source := flag.String("source", "", "Override fetch source (browser or serpapi)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *source != "" {
		cfg.Source.Mode = *source
	}

	// Initialize logger
	logger.Init(cfg.Server.Debug)
	defer logger.Sync()

	logger.Info("Starting JobPulse",
		zap.String("version", appVersion),
		zap.String("mode", *mode),
		zap.String("source", cfg.Source.Mode),
	)

	switch *mode {
	case "run":
		if err := runOnce(cfg); err != nil {
			logger.Fatal("Run failed", zap.Error(err))
		}
	case "serve":
		serve(cfg)
	default:
		fmt.Fprintf(os.Stderr, "Unknown mode %q\n", *mode)
		os.Exit(1)
	}
}

// runOnce executes one full pipeline run and writes every configured output.
func runOnce(cfg *config.Config) error {
	adapter, err := newAdapter(cfg)
	if err != nil {
		return err
	}
	defer adapter.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	queries := pipeline.BuildQueries(cfg.Search.Roles, cfg.Search.Locations)
	orch := pipeline.New(adapter, policyFromConfig(cfg), logger.Get())

	result := orch.Run(ctx, queries)
	analysis := analytics.Analyze(result.Jobs)

	artifacts, err := export.Write(cfg.Output.Dir, result.Jobs, analysis)
	if err != nil {
		return err
	}
	logger.Info("Artifacts written",
		zap.String("json", artifacts.JSONPath),
		zap.String("csv", artifacts.CSVPath),
		zap.String("report", artifacts.ReportPath),
	)

	return persist(ctx, cfg, result)
}

// persist writes the run into Postgres and Redis when they are enabled.
// Storage failures are reported, never fatal: the filesystem artifacts
// already hold the run.
func persist(ctx context.Context, cfg *config.Config, result *domain.PipelineRunResult) error {
	if cfg.Database.Postgres.Enabled {
		pg, err := store.NewPostgres(ctx, cfg.Database.Postgres.DSN())
		if err != nil {
			logger.Error("Postgres unavailable, skipping persistence", zap.Error(err))
		} else {
			defer pg.Close()
			if err := pg.SavePostings(ctx, result.Jobs); err != nil {
				logger.Error("Failed to save postings", zap.Error(err))
			}
			if runID, err := pg.SaveRun(ctx, result); err != nil {
				logger.Error("Failed to save run summary", zap.Error(err))
			} else {
				logger.Info("Run persisted", zap.Int64("run_id", runID))
			}
		}
	}

	if cfg.Redis.Enabled {
		cache, err := store.NewSeenCache(ctx, cfg.Redis.URL, cfg.Redis.SeenTTL)
		if err != nil {
			logger.Error("Redis unavailable, skipping seen cache", zap.Error(err))
		} else {
			defer cache.Close()
			if err := cache.MarkSeen(ctx, result.Jobs); err != nil {
				logger.Error("Failed to mark postings seen", zap.Error(err))
			}
		}
	}
	return nil
}

// serve runs the HTTP API with runs triggered on demand.
func serve(cfg *config.Config) {
	adapter, err := newAdapter(cfg)
	if err != nil {
		logger.Fatal("Adapter setup failed", zap.Error(err))
	}
	defer adapter.Close()

	queries := pipeline.BuildQueries(cfg.Search.Roles, cfg.Search.Locations)
	orch := pipeline.New(adapter, policyFromConfig(cfg), logger.Get())
	runs := handlers.NewRunService(runnerFunc(orch.Run), queries)

	app := fiber.New(fiber.Config{
		AppName:               "JobPulse API v" + appVersion,
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		DisableStartupMessage: !cfg.Server.Debug,
		ErrorHandler:          errorHandler,
	})

	middleware.Setup(app, cfg)
	api.SetupRoutes(app, runs)

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		logger.Info("Shutting down gracefully...")
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server starting", zap.String("address", addr))

	if err := app.Listen(addr); err != nil {
		logger.Fatal("Server failed to start", zap.Error(err))
	}
}

func newAdapter(cfg *config.Config) (fetch.Adapter, error) {
	switch cfg.Source.Mode {
	case "serpapi":
		return fetch.NewAPIAdapter(fetch.APIOptions{
			APIKey: cfg.Source.SerpAPI.APIKey,
		}, logger.Get())
	case "browser", "":
		return fetch.NewSessionAdapter(fetch.SessionOptions{
			Headless:   cfg.Scraper.Headless,
			NavTimeout: cfg.Scraper.NavTimeout,
			MinDelay:   cfg.Scraper.MinDelay,
			MaxDelay:   cfg.Scraper.MaxDelay,
			TimeRange:  time.Duration(cfg.Scraper.TimeRangeSeconds) * time.Second,
		}, logger.Get())
	default:
		return nil, fmt.Errorf("unknown source mode %q", cfg.Source.Mode)
	}
}

func policyFromConfig(cfg *config.Config) pipeline.Policy {
	maxPages := cfg.Scraper.MaxPages
	if cfg.Source.Mode == "serpapi" && cfg.Source.SerpAPI.PagesPerQuery > 0 {
		maxPages = cfg.Source.SerpAPI.PagesPerQuery
	}
	return pipeline.Policy{
		MaxRetries: cfg.Scraper.MaxRetries,
		MaxPages:   maxPages,
		Backoff:    cfg.Scraper.BackoffFactor,
	}
}

// runnerFunc adapts the orchestrator's Run method to the handlers.Runner
// interface.
type runnerFunc func(ctx context.Context, queries []domain.Query) *domain.PipelineRunResult

func (f runnerFunc) Run(ctx context.Context, queries []domain.Query) *domain.PipelineRunResult {
	return f(ctx, queries)
}

// errorHandler handles errors globally
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	logger.Error("Request error",
		zap.Int("status", code),
		zap.String("path", c.Path()),
		zap.Error(err),
	)

	return c.Status(code).JSON(fiber.Map{
		"error":   "request_failed",
		"message": message,
		"path":    c.Path(),
	})
}
