package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const serviceName = "brokwise-developer-api"

// ResponseFormatter stamps headers common to every API reply. Inventory data
// changes under the editor's feet, so API responses are never cacheable.
func ResponseFormatter() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("X-Service", serviceName)
		if strings.HasPrefix(c.Path(), "/api/") {
			c.Set(fiber.HeaderCacheControl, "no-store")
		}
		return c.Next()
	}
}
