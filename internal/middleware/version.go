package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// APIVersion is the version advertised on every API response.
const APIVersion = "1.0.0"

// VersionMiddleware parses the X-Api-Version header, stores it in context, and marks
// API responses as uncacheable.
func VersionMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		version := c.Get("X-Api-Version", APIVersion)

		// Support version aliases
		if version == "1.0" || version == "1" {
			version = APIVersion
		}

		c.Locals("apiVersion", version)
		c.Set("X-Api-Version", APIVersion)
		c.Set(fiber.HeaderCacheControl, "no-store")

		return c.Next()
	}
}
