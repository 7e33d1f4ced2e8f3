package middleware

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Redis keys for the rolling traffic stats shown on the status dashboard.
// The health package reads and resets these.
const (
	KeyReqTotal  = "health:global:req_total"
	KeyReqErrors = "health:global:req_errors"
	KeyResTime   = "health:global:res_time_total"
	KeyResCount  = "health:global:res_count"
	KeyStartTime = "health:global:start_time"
	KeyLastReq   = "health:global:last_request"
	KeyErrorLog  = "health:global:error_log"
)

// HealthMarker counts API traffic and response times in Redis. The status
// pages themselves are excluded so watching the dashboard does not move
// the numbers.
func HealthMarker(rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if skipStats(c.Path()) {
			return c.Next()
		}

		ctx := c.UserContext()
		start := time.Now()
		if snapshot, err := json.Marshal(map[string]interface{}{
			"time":   start,
			"ip":     c.IP(),
			"path":   c.OriginalURL(),
			"method": c.Method(),
		}); err == nil {
			rdb.Set(ctx, KeyLastReq, snapshot, 0)
		}
		rdb.Incr(ctx, KeyReqTotal)

		err := c.Next()

		pipe := rdb.Pipeline()
		pipe.Incr(ctx, KeyResCount)
		pipe.IncrByFloat(ctx, KeyResTime, float64(time.Since(start).Milliseconds()))
		if c.Response().StatusCode() >= fiber.StatusInternalServerError {
			pipe.Incr(ctx, KeyReqErrors)
		}
		_, _ = pipe.Exec(ctx)
		return err
	}
}

func skipStats(path string) bool {
	return path == "/" || strings.HasPrefix(path, "/health") || strings.HasPrefix(path, "/favicon")
}
