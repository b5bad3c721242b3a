package presenter

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func JSON(c *fiber.Ctx, status int, v any) error {
	return c.Status(status).JSON(v)
}

func Error(c *fiber.Ctx, status int, message string) error {
	return JSON(c, status, ErrorResponse{Error: message})
}

// ErrorHandler renders errors that escape handlers (unknown routes, wrong
// methods, panics) as ErrorResponse.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if !errors.As(err, &fe) {
			log.Error("unhandled error", zap.String("path", utils.CopyString(c.Path())), zap.Error(err))
			return Error(c, fiber.StatusInternalServerError, "Server error")
		}
		switch fe.Code {
		case fiber.StatusNotFound:
			return Error(c, fe.Code, "Not found")
		case fiber.StatusMethodNotAllowed:
			return Error(c, fe.Code, "Method not allowed")
		}
		return Error(c, fe.Code, fe.Message)
	}
}
