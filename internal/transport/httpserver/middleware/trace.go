package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// RequestIDKey is the locals key under which the request id is stored.
const RequestIDKey = "requestid"

// RequestID assigns every request an X-Request-ID, honoring one sent by
// the client.
func RequestID() fiber.Handler {
	return requestid.New(requestid.Config{
		Header:     fiber.HeaderXRequestID,
		ContextKey: RequestIDKey,
	})
}

// TraceID returns the request id of c, used as the trace id for component
// calls.
func TraceID(c *fiber.Ctx) string {
	if id, ok := c.Locals(RequestIDKey).(string); ok && id != "" {
		return id
	}
	return c.Get(fiber.HeaderXRequestID)
}
