package middleware

import (
	"fmt"
	"runtime/debug"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/runsapi/runs-api/internal/pkg/logger"
)

const sentryHubKey = "sentry_hub"

// PanicError is a panic recovered during request handling
type PanicError struct {
	Value any
	Stack []byte
}

// Error implements the error interface
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap returns the panic value when it is an error
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// RecoverWithSentry recovers panics in downstream handlers, reports them
// to Sentry when enabled and returns them as an unclassified error for
// the error handler.
func RecoverWithSentry(log *zap.Logger, sentryEnabled bool) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			stack := debug.Stack()
			panicErr := &PanicError{Value: r, Stack: stack}

			reqLog := logger.WithRequestID(log, GetRequestID(c))
			reqLog.Error("panic recovered",
				zap.Error(panicErr),
				zap.String("path", c.Path()),
				zap.String("method", c.Method()),
				zap.String("ip", c.IP()),
				zap.String("stack", string(stack)),
			)

			if sentryEnabled {
				hub := hubFor(c)
				hub.Scope().SetExtra("stack_trace", string(stack))
				hub.Scope().SetLevel(sentry.LevelFatal)

				eventID := hub.RecoverWithContext(c.UserContext(), r)
				if eventID != nil {
					reqLog.Info("panic reported to Sentry",
						zap.String("event_id", string(*eventID)),
					)
				}

				// Flush to ensure the event is sent
				hub.Flush(2 * time.Second)
			}

			err = panicErr
		}()

		return c.Next()
	}
}

// SentryMiddleware creates a middleware that adds Sentry context to requests
func SentryMiddleware(enabled bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !enabled {
			return c.Next()
		}

		hub := sentry.CurrentHub().Clone()
		setSentryRequestContext(hub, c)
		hub.Scope().SetTag("request_id", GetRequestID(c))

		// Store hub in context for later use
		c.Locals(sentryHubKey, hub)

		return c.Next()
	}
}

// CaptureError reports an error to Sentry from a Fiber context
func CaptureError(c *fiber.Ctx, err error) {
	hub := hubFor(c)

	hub.Scope().SetExtra("path", c.Path())
	hub.Scope().SetExtra("method", c.Method())
	hub.Scope().SetTag("request_id", GetRequestID(c))

	hub.CaptureException(err)
}

// hubFor returns the request's hub, or a clone of the current hub when
// the request never passed through SentryMiddleware.
func hubFor(c *fiber.Ctx) *sentry.Hub {
	if hub, ok := c.Locals(sentryHubKey).(*sentry.Hub); ok && hub != nil {
		return hub
	}

	hub := sentry.CurrentHub().Clone()
	setSentryRequestContext(hub, c)
	return hub
}

// setSentryRequestContext sets request context on a Sentry hub from Fiber context
func setSentryRequestContext(hub *sentry.Hub, c *fiber.Ctx) {
	headers := make(map[string]string)
	c.Request().Header.VisitAll(func(key, value []byte) {
		k := string(key)
		// Don't include sensitive headers
		if k != "Authorization" && k != "Cookie" {
			headers[k] = string(value)
		}
	})

	hub.Scope().SetContext("Request", map[string]interface{}{
		"url":          c.OriginalURL(),
		"method":       c.Method(),
		"headers":      headers,
		"query_string": string(c.Request().URI().QueryString()),
		"remote_addr":  c.IP(),
	})
}
