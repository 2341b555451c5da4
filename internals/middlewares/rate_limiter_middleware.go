package middlewares

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	helper "sifs_backend/internals/helpers"
)

func limitBy(max int, window time.Duration, message string) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return helper.JsonError(c, fiber.StatusTooManyRequests, message)
		},
	})
}

// Global limiter for every endpoint
func GlobalRateLimiter() fiber.Handler {
	return limitBy(100, 1*time.Minute, "❌ Too many requests. Please try again later.")
}

// VerifyRateLimiter guards the verification lookups against number guessing.
func VerifyRateLimiter() fiber.Handler {
	return limitBy(20, 1*time.Minute, "❌ Too many verification attempts. Please wait a moment.")
}

// ExportRateLimiter is stricter, every export renders a full image.
func ExportRateLimiter() fiber.Handler {
	return limitBy(5, 1*time.Minute, "❌ Too many export requests. Please wait a moment.")
}
