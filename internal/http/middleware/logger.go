package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Logger is a middleware that logs each HTTP request as one structured line.
// Fields:
// - request_id (taken from context locals set by RequestID middleware)
// - method, path
// - content_type, content_length (as received, never parsed)
// - status
// - latency_ms
// Authorization headers are never logged.
func Logger(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		resolveError(c, c.Next())

		rid, _ := c.Locals(RequestIDLocalKey).(string)
		log.Info("request",
			zap.String("request_id", rid),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("content_type", c.Get(fiber.HeaderContentType)),
			zap.String("content_length", c.Get(fiber.HeaderContentLength)),
			zap.Int("status", c.Response().StatusCode()),
			zap.Float64("latency_ms", float64(time.Since(start).Microseconds())/1000),
		)

		return nil
	}
}
