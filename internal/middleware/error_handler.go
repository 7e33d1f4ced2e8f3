package middleware

import (
	"errors"

	"github.com/Brokwise/brokwise-developer/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// ErrorHandler converts errors that escape handlers into the standard error
// envelope. Handlers normally reply through response.FromError themselves,
// so anything arriving here is a routing error or a genuine surprise.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return response.Error(c, fiberErr.Message, fiberErr.Code, map[string]interface{}{})
	}

	log.Error().
		Str("trace_id", GetTraceID(c)).
		Str("path", c.Path()).
		Err(err).
		Msg("unhandled error")
	return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, map[string]interface{}{})
}
