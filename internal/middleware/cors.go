package middleware

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CORSConfig configures the CORS middleware
type CORSConfig struct {
	// AllowOrigins is a list of allowed origins
	AllowOrigins []string
	// AllowMethods is a list of allowed methods
	AllowMethods []string
	// AllowHeaders is a list of allowed headers
	AllowHeaders []string
	// ExposeHeaders is a list of headers to expose
	ExposeHeaders []string
	// MaxAge indicates how long the results of a preflight request can be cached
	MaxAge int
}

// DefaultCORSConfig returns default CORS config
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOrigins: []string{"http://localhost:3000"},
		AllowMethods: []string{
			fiber.MethodGet,
			fiber.MethodPost,
		},
		AllowHeaders: []string{
			fiber.HeaderContentType,
		},
		ExposeHeaders: []string{
			HeaderRequestID,
		},
		MaxAge: 86400, // 24 hours
	}
}

// CORSMiddleware creates a CORS middleware
type CORSMiddleware struct {
	config CORSConfig
}

// NewCORSMiddleware creates a new CORS middleware
func NewCORSMiddleware(config CORSConfig) *CORSMiddleware {
	return &CORSMiddleware{
		config: config,
	}
}

// CORS returns the CORS handler for the given origins with the default
// methods and headers.
func CORS(origins []string) fiber.Handler {
	config := DefaultCORSConfig()
	if len(origins) > 0 {
		config.AllowOrigins = origins
	}
	return NewCORSMiddleware(config).Handler()
}

// Handler returns the CORS handler
func (m *CORSMiddleware) Handler() fiber.Handler {
	allowMethods := strings.Join(m.config.AllowMethods, ", ")
	allowHeaders := strings.Join(m.config.AllowHeaders, ", ")
	exposeHeaders := strings.Join(m.config.ExposeHeaders, ", ")
	maxAge := strconv.Itoa(m.config.MaxAge)

	return func(c *fiber.Ctx) error {
		origin := c.Get(fiber.HeaderOrigin)
		if origin == "" {
			return c.Next()
		}

		if !m.allowed(origin) {
			return c.Next()
		}

		c.Set(fiber.HeaderAccessControlAllowOrigin, origin)
		c.Vary(fiber.HeaderOrigin)

		if exposeHeaders != "" {
			c.Set(fiber.HeaderAccessControlExposeHeaders, exposeHeaders)
		}

		// Handle preflight request
		if c.Method() == fiber.MethodOptions {
			c.Set(fiber.HeaderAccessControlAllowMethods, allowMethods)
			c.Set(fiber.HeaderAccessControlAllowHeaders, allowHeaders)

			if m.config.MaxAge > 0 {
				c.Set(fiber.HeaderAccessControlMaxAge, maxAge)
			}

			return c.SendStatus(fiber.StatusNoContent)
		}

		return c.Next()
	}
}

func (m *CORSMiddleware) allowed(origin string) bool {
	for _, o := range m.config.AllowOrigins {
		if o == origin || o == "*" {
			return true
		}
		// Support wildcard subdomains (e.g., *.example.com)
		if strings.HasPrefix(o, "*.") && strings.HasSuffix(origin, o[1:]) {
			return true
		}
	}
	return false
}
