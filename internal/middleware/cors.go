package middleware

import (
	"strings"

	"github.com/Brokwise/brokwise-developer/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// CORSConfig restricts browser origins to the portal's own domains, with a
// header-based escape hatch for local frontend development.
type CORSConfig struct {
	AllowedSuffix string
	DevPassword   string
}

// CORS allows same-origin and non-browser clients through untouched, answers
// localhost preflights during development, and otherwise requires the origin
// to end with AllowedSuffix or carry the dev-password header.
func CORS(cfg CORSConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		origin := c.Get(fiber.HeaderOrigin)
		if origin == "" {
			return c.Next()
		}

		if c.Method() == fiber.MethodOptions && isLocalhost(origin) {
			allowOrigin(c, origin)
			return c.SendStatus(fiber.StatusNoContent)
		}

		if cfg.originAllowed(c, origin) {
			allowOrigin(c, origin)
			return c.Next()
		}
		return response.Error(c, "Not allowed by CORS", fiber.StatusForbidden, map[string]interface{}{})
	}
}

func (cfg CORSConfig) originAllowed(c *fiber.Ctx, origin string) bool {
	if cfg.AllowedSuffix != "" && strings.HasSuffix(strings.ToLower(origin), strings.ToLower(cfg.AllowedSuffix)) {
		return true
	}
	return cfg.DevPassword != "" && c.Get("dev-password") == cfg.DevPassword
}

func isLocalhost(origin string) bool {
	return strings.HasPrefix(origin, "http://localhost:") || strings.HasPrefix(origin, "http://127.0.0.1:")
}

func allowOrigin(c *fiber.Ctx, origin string) {
	c.Set(fiber.HeaderAccessControlAllowOrigin, origin)
	c.Set(fiber.HeaderAccessControlAllowCredentials, "true")
	c.Set(fiber.HeaderAccessControlAllowHeaders, "Content-Type, dev-password")
}
