package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gradtrack/gradtrack-api/database"
	"github.com/gradtrack/gradtrack-api/utils/response"
)

// HealthCheck reports whether the API and its database are reachable
func HealthCheck(store database.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := store.HealthCheck(); err != nil {
			return response.Error(c, fiber.StatusServiceUnavailable, "Database is unreachable", "SERVICE_UNAVAILABLE")
		}
		return response.Success(c, fiber.Map{"status": "ok"})
	}
}
