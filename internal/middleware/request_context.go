package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/runsapi/runs-api/internal/pkg/id"
)

// HeaderRequestID is the response header carrying the request ID
const HeaderRequestID = "X-Request-ID"

const requestIDKey = "requestID"

// RequestContextConfig configures the request context middleware
type RequestContextConfig struct {
	// Header is the response header key for the request ID
	Header string
	// Generator generates a new request ID
	Generator func() string
}

// DefaultRequestContextConfig returns default request context config
func DefaultRequestContextConfig() RequestContextConfig {
	return RequestContextConfig{
		Header:    HeaderRequestID,
		Generator: id.NewRequestID,
	}
}

// RequestContext assigns every request a fresh ID. The ID is recorded on
// the request span, stored in locals and set on the response, so it is
// present whether the request succeeds or fails. Inbound request ID
// headers are ignored.
func RequestContext(config ...RequestContextConfig) fiber.Handler {
	cfg := DefaultRequestContextConfig()
	if len(config) > 0 {
		cfg = config[0]
	}

	return func(c *fiber.Ctx) error {
		requestID := cfg.Generator()

		if span := GetRequestSpan(c); span != nil {
			span.RecordRequestID(requestID)
		}

		c.Set(cfg.Header, requestID)
		c.Locals(requestIDKey, requestID)

		return c.Next()
	}
}

// GetRequestID gets the request ID from context
func GetRequestID(c *fiber.Ctx) string {
	if requestID, ok := c.Locals(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// ensureRequestID returns the request ID, assigning one when the request
// never passed through RequestContext.
func ensureRequestID(c *fiber.Ctx) string {
	if requestID := GetRequestID(c); requestID != "" {
		return requestID
	}

	requestID := id.NewRequestID()
	c.Set(HeaderRequestID, requestID)
	c.Locals(requestIDKey, requestID)
	return requestID
}
