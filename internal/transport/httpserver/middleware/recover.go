package middleware

import (
	"runtime/debug"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"cachelock-service/internal/logger"
	"cachelock-service/internal/transport/httpserver/dto"
)

// Recover returns a middleware that recovers from panics.
func Recover(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered",
					zap.Any("error", r),
					zap.String("stack", string(debug.Stack())),
					zap.String("path", c.Path()),
					zap.String(logger.TraceIDKey, TraceID(c)),
				)

				err = c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
					Error:   "internal server error",
					Code:    "PANIC",
					TraceID: TraceID(c),
				})
			}
		}()

		return c.Next()
	}
}
