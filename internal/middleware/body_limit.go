package middleware

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/runsapi/runs-api/internal/pkg/errors"
)

// BodyLimit rejects requests whose body exceeds limit bytes before any
// handler reads it. Both the declared Content-Length and the received
// body are checked.
func BodyLimit(limit int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if declared := c.Request().Header.ContentLength(); declared > limit {
			return apperrors.BodyTooLarge(fmt.Errorf("declared content length %d exceeds %d bytes", declared, limit))
		}
		if received := len(c.Body()); received > limit {
			return apperrors.BodyTooLarge(fmt.Errorf("received body of %d bytes exceeds %d bytes", received, limit))
		}
		return c.Next()
	}
}
