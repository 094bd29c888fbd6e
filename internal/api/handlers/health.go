package handlers

import (
	"github.com/gofiber/fiber/v2"
)

const version = "1.0.0"

// HealthCheck returns the health status
func HealthCheck() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"version": version,
		})
	}
}

// Root returns basic API info
func Root() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"name":    "JobPulse Ingestion API",
			"version": version,
			"health":  "/health",
		})
	}
}
