package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/arnold/studytrack-api/internal/logger"
)

// RequestLogger logs one line per request once the response status is known.
func RequestLogger(log logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		if err := c.Next(); err != nil {
			// render the error now so the logged status is the one sent
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		log.Info("request",
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"latency", time.Since(start),
			"ip", c.IP(),
			"requestId", c.Locals("requestid"),
			"user", CurrentUser(c),
		)
		return nil
	}
}
