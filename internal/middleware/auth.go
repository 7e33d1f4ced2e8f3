package middleware

import (
	"github.com/Brokwise/brokwise-developer/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// RequireAuth gates a route group on a logged-in session user.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if GetUser(c) == nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		return c.Next()
	}
}

// GetUser returns the session user loaded by the session middleware,
// or nil for anonymous requests.
func GetUser(c *fiber.Ctx) interface{} {
	return c.Locals(userLocal)
}
