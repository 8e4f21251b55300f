package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-app/internal/apperrors"
)

// ErrorHandler renders every error as {"error": ..., "success": false}.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		body := fiber.Map{
			"error":   err.Error(),
			"success": false,
		}

		var fiberErr *fiber.Error
		var appErr *apperrors.AppError
		switch {
		case errors.As(err, &fiberErr):
			code = fiberErr.Code
		case errors.As(err, &appErr):
			code = apperrors.HTTPStatus(appErr)
			body["error"] = appErr.Message
			body["type"] = appErr.Type
			if appErr.Code != "" {
				body["code"] = appErr.Code
			}
		default:
			body["error"] = "internal server error"
		}

		if code >= fiber.StatusInternalServerError {
			logger.Error("HTTP error",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err))
		} else {
			logger.Debug("HTTP client error",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Int("status", code),
				zap.Error(err))
		}

		return c.Status(code).JSON(body)
	}
}
