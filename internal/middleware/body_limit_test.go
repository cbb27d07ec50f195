package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	apperrors "github.com/runsapi/runs-api/internal/pkg/errors"
)

func TestBodyLimit(t *testing.T) {
	handled := false
	app := newPipelineApp(zap.NewNop(), func(app *fiber.App) {
		app.Post("/limited", BodyLimit(1024), func(c *fiber.Ctx) error {
			handled = true
			return c.SendString("ok")
		})
	})

	t.Run("accepts body at the limit", func(t *testing.T) {
		handled = false
		req := httptest.NewRequest(http.MethodPost, "/limited", bytes.NewReader(bytes.Repeat([]byte("a"), 1024)))

		resp := doRequest(t, app, req)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, handled)
	})

	t.Run("rejects body over the limit", func(t *testing.T) {
		handled = false
		req := httptest.NewRequest(http.MethodPost, "/limited", strings.NewReader(`{"target":"`+strings.Repeat("a", 1100)+`"}`))

		resp := doRequest(t, app, req)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.False(t, handled)
		assert.NotEmpty(t, resp.Header.Get(HeaderRequestID))
		assert.Equal(t, apperrors.Envelope{Code: 400, Message: "request body is too large"}, decodeEnvelope(t, resp))
	})

	t.Run("rejects on declared content length", func(t *testing.T) {
		handled = false
		req := httptest.NewRequest(http.MethodPost, "/limited", bytes.NewReader(bytes.Repeat([]byte("a"), 2048)))
		req.ContentLength = 2048

		resp := doRequest(t, app, req)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.False(t, handled)
	})
}
