package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	apperrors "github.com/runsapi/runs-api/internal/pkg/errors"
	"github.com/runsapi/runs-api/internal/pkg/id"
)

var requestIDPattern = regexp.MustCompile("^[" + id.RequestIDAlphabet + "]{" + strconv.Itoa(id.RequestIDLength) + "}$")

// newPipelineApp builds an app with the core request pipeline in front of
// the given route setup.
func newPipelineApp(logger *zap.Logger, routes func(app *fiber.App)) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(logger, false),
	})
	app.Use(
		Trace(logger, noopTracer()),
		RequestContext(),
		RecoverWithSentry(logger, false),
	)
	routes(app)
	return app
}

func doRequest(t *testing.T, app *fiber.App, req *http.Request) *http.Response {
	t.Helper()
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func decodeEnvelope(t *testing.T, resp *http.Response) apperrors.Envelope {
	t.Helper()
	var env apperrors.Envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return env
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func noopTracer() trace.Tracer {
	return noop.NewTracerProvider().Tracer("test")
}

func get(path string) *http.Request {
	return httptest.NewRequest(http.MethodGet, path, nil)
}
