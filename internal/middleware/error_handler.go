package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apperrors "github.com/runsapi/runs-api/internal/pkg/errors"
	"github.com/runsapi/runs-api/internal/pkg/logger"
)

// ErrorHandler returns the application error handler. It is the single
// place where failures become responses: every error is classified,
// logged at error level with its full detail and written as an error
// envelope. Server errors are also reported to Sentry when enabled.
func ErrorHandler(log *zap.Logger, sentryEnabled bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		tagged := normalize(err)
		env := apperrors.Classify(tagged)
		requestID := ensureRequestID(c)

		logger.WithRequestID(log, requestID).Error("request failed",
			zap.Error(err),
			zap.String("kind", apperrors.KindOf(tagged).String()),
			zap.Int("status", env.Status),
			zap.Int("code", env.Code),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
		)

		var panicErr *PanicError
		if sentryEnabled && env.Status >= fiber.StatusInternalServerError && !errors.As(err, &panicErr) {
			CaptureError(c, err)
		}

		return c.Status(env.Status).JSON(env)
	}
}

// normalize tags framework and transport errors with their application
// kind. Errors that are already tagged, and errors with no application
// meaning, are returned unchanged.
func normalize(err error) error {
	if apperrors.KindOf(err) != apperrors.KindUnclassified {
		return err
	}

	if errors.Is(err, fasthttp.ErrBodyTooLarge) {
		return apperrors.BodyTooLarge(err)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		switch fiberErr.Code {
		case fiber.StatusNotFound, fiber.StatusMethodNotAllowed:
			return apperrors.NotFound(err)
		case fiber.StatusRequestEntityTooLarge:
			return apperrors.BodyTooLarge(err)
		}
	}

	return err
}
