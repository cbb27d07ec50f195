package middleware

import (
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestRequestTimeout(t *testing.T) {
	t.Run("sets deadline on user context", func(t *testing.T) {
		app := fiber.New()

		var (
			deadline time.Time
			ok       bool
		)
		app.Use(RequestTimeout(time.Minute))
		app.Get("/test", func(c *fiber.Ctx) error {
			deadline, ok = c.UserContext().Deadline()
			return c.SendStatus(200)
		})

		doRequest(t, app, get("/test"))

		assert.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
	})

	t.Run("zero disables the deadline", func(t *testing.T) {
		app := fiber.New()

		ok := true
		app.Use(RequestTimeout(0))
		app.Get("/test", func(c *fiber.Ctx) error {
			_, ok = c.UserContext().Deadline()
			return c.SendStatus(200)
		})

		doRequest(t, app, get("/test"))

		assert.False(t, ok)
	})
}
