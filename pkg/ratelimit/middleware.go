package ratelimit

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/limiter"
)

// Config bounds requests per client.
type Config struct {
	Max        int           // requests per window, non-positive disables limiting
	Expiration time.Duration // window length, one minute when zero
	Storage    fiber.Storage // counters, in memory when nil
}

// New returns a limiter handler keyed by client IP. Rejected requests fail
// with fiber.ErrTooManyRequests so the app's error handler renders them.
func New(cfg Config) fiber.Handler {
	if cfg.Max <= 0 {
		return func(c fiber.Ctx) error { return c.Next() }
	}

	if cfg.Expiration <= 0 {
		cfg.Expiration = time.Minute
	}

	return limiter.New(limiter.Config{
		Max:        cfg.Max,
		Expiration: cfg.Expiration,
		Storage:    cfg.Storage,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(fiber.Ctx) error {
			return fiber.ErrTooManyRequests
		},
	})
}
