package handler

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"

	"staffingapi/internal/http/middleware"
	"staffingapi/internal/storage"
)

// HealthCheck reports database and object storage reachability. A missing
// store is reported as disabled and does not make the service unhealthy.
//
// @Summary Dependency health
// @Tags health
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 503 {object} errorPayload
// @Router /health [get]
func HealthCheck(db *sql.DB, store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.Locals(middleware.ErrorLocalKey, err.Error())
			return writeError(c, fiber.StatusServiceUnavailable, CodeServiceUnavailable, "dependency unavailable",
				map[string]any{"database": "unreachable"})
		}

		checks := fiber.Map{"database": "ok", "storage": "disabled"}
		if store != nil {
			if err := store.Ping(ctx); err != nil {
				c.Locals(middleware.ErrorLocalKey, err.Error())
				return writeError(c, fiber.StatusServiceUnavailable, CodeServiceUnavailable, "dependency unavailable",
					map[string]any{"storage": "unreachable"})
			}
			checks["storage"] = "ok"
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy", "checks": checks})
	}
}

// LivenessProbe answers 200 while the process is serving.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}
