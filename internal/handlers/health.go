package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/localnerve/ops-portal/internal/utils"
)

// Healthz handles GET /healthz. It answers as long as the process serves requests.
func Healthz(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ok",
		"timestamp": utils.Timestamp(),
	})
}
