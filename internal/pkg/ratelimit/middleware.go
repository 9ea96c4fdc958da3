package ratelimit

import (
	"github.com/gofiber/fiber/v2"
)

// Middleware throttles requests keyed by client IP and route.
func Middleware(l *Limiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.IP() + ":" + c.Route().Path
		if !l.Allow(c.UserContext(), key) {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "too many requests",
			})
		}
		return c.Next()
	}
}
