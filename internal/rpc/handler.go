package rpc

import (
	"github.com/gofiber/fiber/v2"

	"github.com/arnold/studytrack-api/internal/logger"
	"github.com/arnold/studytrack-api/internal/models"
)

// ErrorHandler renders every error returned by a fiber handler as an error
// response. Server errors are logged along with the acting user.
func ErrorHandler(log logger.Logger, user func(*fiber.Ctx) *models.User) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		e := FromError(err)
		if e.Code == CodeInternal {
			var usr *models.User
			if user != nil {
				usr = user(c)
			}
			log.Error(e.Message, "method", c.Method(), "path", c.Path(), "err", err, "user", usr)
		}
		return c.Status(e.Status()).JSON(Response{Error: e})
	}
}
