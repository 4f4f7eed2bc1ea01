package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RequestIDHeader is the header carrying the request id, echoed back on
// every response.
const RequestIDHeader = "X-Request-ID"

// RequestIDKey is the Locals key under which the request id is stored.
const RequestIDKey = "request_id"

// RequestID is a Fiber middleware that tags every request with an id. An
// id supplied by the caller is kept; otherwise a fresh UUID is issued.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}

		// Store for handlers to include in logs, and echo to the caller.
		c.Locals(RequestIDKey, id)
		c.Set(RequestIDHeader, id)

		return c.Next()
	}
}
