package response

import (
	"walletd/internal/errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func Success(c *fiber.Ctx, message string, data interface{}) error {
	return c.JSON(fiber.Map{
		"message": message,
		"data":    data,
	})
}

func Created(c *fiber.Ctx, message string, data interface{}) error {
	c.Status(fiber.StatusCreated)
	return Success(c, message, data)
}

// Accepted answers a request whose effect happens later, off the request path.
func Accepted(c *fiber.Ctx, message string, data interface{}) error {
	c.Status(fiber.StatusAccepted)
	return Success(c, message, data)
}

func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}

func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, message)
}

func NotFound(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusNotFound, message)
}

func ServerError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, message)
}

func Unauthorized(c *fiber.Ctx) error {
	return Error(c, fiber.StatusUnauthorized, "Unauthorized")
}

func Forbidden(c *fiber.Ctx) error {
	return Error(c, fiber.StatusForbidden, "Insufficient permissions")
}

// FromError writes the status that matches err's kind. Errors without a kind
// are logged and hidden behind a 500.
func FromError(c *fiber.Ctx, err error) error {
	kind, ok := errors.KindOf(err)
	if !ok {
		zap.L().Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err))
		return ServerError(c, "Internal server error")
	}

	return c.Status(StatusFor(kind)).JSON(fiber.Map{
		"error": err.Error(),
		"code":  errors.CodeOf(err),
	})
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind errors.Kind) int {
	switch kind {
	case errors.KindConflict:
		return fiber.StatusConflict
	case errors.KindNotFound:
		return fiber.StatusNotFound
	case errors.KindInsufficientFunds:
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusBadRequest
	}
}
