package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"hirelink/internal/metrics"
)

// Metrics records request counts and latency per route pattern.
func Metrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Path() == "/metrics" {
			return c.Next()
		}

		start := time.Now()
		metrics.HTTPInFlight(1)
		defer metrics.HTTPInFlight(-1)

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status, _, _ = resolve(err)
		}

		metrics.ObserveHTTPRequest(c.Method(), c.Route().Path, strconv.Itoa(status), time.Since(start).Seconds())
		return err
	}
}
