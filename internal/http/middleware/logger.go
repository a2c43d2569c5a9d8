package middleware

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Logger logs each HTTP request as one JSON object per line on stdout:
// ts, request_id, method, path (without query string), status, and latency
// in milliseconds.
func Logger() fiber.Handler {
	return LoggerWithWriter(os.Stdout)
}

// LoggerWithWriter is Logger writing to w.
func LoggerWithWriter(w io.Writer) fiber.Handler {
	enc := json.NewEncoder(w)

	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		// Collected after the handler ran so the final status is captured.
		rid, _ := c.Locals(RequestIDLocalKey).(string)

		_ = enc.Encode(map[string]any{
			"ts":         start.UTC().Format(time.RFC3339Nano),
			"request_id": rid,
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     c.Response().StatusCode(),
			"latency":    float64(time.Since(start).Milliseconds()),
		})

		return err
	}
}
