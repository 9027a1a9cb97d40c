package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// statusOf reports the status the error handler will answer with. The
// response code is not final yet when a handler returned an error.
func statusOf(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}
