package http

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// NewErrorHandler renders errors as JSON. Internal detail is only exposed
// when development is true.
func NewErrorHandler(development bool, logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		}

		body := fiber.Map{
			"error":   true,
			"message": message,
		}
		if code >= fiber.StatusInternalServerError {
			logger.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
			if development {
				body["detail"] = err.Error()
			}
		}

		return c.Status(code).JSON(body)
	}
}
