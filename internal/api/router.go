package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jobpulse/backend/internal/api/handlers"
)

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, runs *handlers.RunService) {
	// Health check routes (no prefix)
	app.Get("/health", handlers.HealthCheck())
	app.Get("/", handlers.Root())

	// API routes
	api := app.Group("/api")

	// Run lifecycle
	runsHandler := handlers.NewRunsHandler(runs)
	api.Post("/runs", runsHandler.Trigger)
	api.Get("/runs/status", runsHandler.Status)

	// Corpus and analytics from the latest run
	jobsHandler := handlers.NewJobsHandler(runs)
	api.Get("/jobs", jobsHandler.List)
	api.Get("/analytics", jobsHandler.Analytics)
}
