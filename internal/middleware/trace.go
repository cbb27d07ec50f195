package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const requestSpanKey = "requestSpan"

// RequestSpan is the per-request span. The request_id field is declared
// empty when the span opens and filled in by RequestContext.
type RequestSpan struct {
	Method string
	Path   string

	requestID string
	span      trace.Span
}

// RecordRequestID records the request ID on the span
func (s *RequestSpan) RecordRequestID(requestID string) {
	s.requestID = requestID
	s.span.SetAttributes(attribute.String("request_id", requestID))
}

// RequestID returns the recorded request ID, or "" if none was recorded
func (s *RequestSpan) RequestID() string {
	return s.requestID
}

// GetRequestSpan gets the request span from context
func GetRequestSpan(c *fiber.Ctx) *RequestSpan {
	span, _ := c.Locals(requestSpanKey).(*RequestSpan)
	return span
}

// Trace opens the request span and emits one completion record per
// request.
//
// Errors returned by downstream handlers are passed to the application
// error handler here, so the record carries the final status and the
// error is never handled a second time by fiber.
func Trace(logger *zap.Logger, tracer trace.Tracer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		method := c.Method()
		path := utils.CopyString(c.Path())

		ctx, span := tracer.Start(c.UserContext(), "request",
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", method),
				attribute.String("http.target", path),
				attribute.String("request_id", ""),
			),
		)
		defer span.End()

		c.SetUserContext(ctx)

		rs := &RequestSpan{Method: method, Path: path, span: span}
		c.Locals(requestSpanKey, rs)

		if err := c.Next(); err != nil {
			span.RecordError(err)
			if catch := c.App().ErrorHandler(c, err); catch != nil {
				logger.Error("failed to call error handler", zap.Error(catch))
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		latency := time.Since(start)

		span.SetAttributes(attribute.Int("http.status_code", status))
		if status >= fiber.StatusInternalServerError {
			span.SetStatus(codes.Error, utils.StatusMessage(status))
		}

		fields := []zap.Field{
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", latency),
		}
		if requestID := rs.RequestID(); requestID != "" {
			fields = append(fields, zap.String("request_id", requestID))
		}

		switch {
		case status >= 500:
			logger.Error("request completed", fields...)
		case status >= 400:
			logger.Warn("request completed", fields...)
		default:
			logger.Info("request completed", fields...)
		}

		return nil
	}
}
