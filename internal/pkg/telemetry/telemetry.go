// Package telemetry performs the one-time process instrumentation setup:
// the zap logger, Sentry crash reporting and the OpenTelemetry tracer
// provider. The returned handle is kept by main and closed on shutdown.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/runsapi/runs-api/internal/config"
	"github.com/runsapi/runs-api/internal/pkg/logger"
)

// Tracing exporters
const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

// DefaultFlushTimeout bounds the Sentry flush on Close
const DefaultFlushTimeout = 5 * time.Second

// Telemetry is the handle returned by Setup
type Telemetry struct {
	Logger        *zap.Logger
	SentryEnabled bool

	tracer         trace.Tracer
	tracerProvider *sdktrace.TracerProvider
	flushTimeout   time.Duration
}

// Setup builds the logger, installs the Sentry client when a DSN is
// configured and installs the tracer provider for the configured exporter.
func Setup(ctx context.Context, cfg *config.Config) (*Telemetry, error) {
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	t := &Telemetry{
		Logger:       log,
		flushTimeout: DefaultFlushTimeout,
	}

	if cfg.Sentry.Enabled() {
		if err := InitSentry(cfg.Sentry, cfg.Server.Env); err != nil {
			log.Warn("failed to initialize Sentry, continuing without error reporting", zap.Error(err))
		} else {
			t.SentryEnabled = true
			log.Info("sentry initialized", zap.String("environment", sentryEnvironment(cfg.Sentry, cfg.Server.Env)))
		}
	}

	tp, err := newTracerProvider(ctx, cfg.Tracing, cfg.Server.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to set up tracing: %w", err)
	}

	if tp == nil {
		t.tracer = noop.NewTracerProvider().Tracer(cfg.Tracing.ServiceName)
		return t, nil
	}

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	t.tracerProvider = tp
	t.tracer = tp.Tracer(cfg.Tracing.ServiceName)

	log.Info("tracing initialized",
		zap.String("exporter", cfg.Tracing.Exporter),
		zap.Float64("sample_rate", cfg.Tracing.SampleRate),
	)

	return t, nil
}

// Tracer returns the request tracer
func (t *Telemetry) Tracer() trace.Tracer {
	return t.tracer
}

// Close flushes Sentry, shuts the tracer provider down and syncs the
// logger. Failures are logged and otherwise ignored.
func (t *Telemetry) Close(ctx context.Context) {
	if t.SentryEnabled {
		FlushSentry(t.flushTimeout)
	}

	if t.tracerProvider != nil {
		if err := t.tracerProvider.Shutdown(ctx); err != nil {
			t.Logger.Warn("failed to shut down tracer provider", zap.Error(err))
		}
	}

	logger.Sync(t.Logger)
}

// RecoverPanic reports a panic on the calling goroutine and re-panics.
// Use it deferred at the top of main and of long-lived goroutines.
func (t *Telemetry) RecoverPanic() {
	r := recover()
	if r == nil {
		return
	}

	t.Logger.Error("unrecovered panic", zap.Any("panic", r), zap.Stack("stack"))

	if t.SentryEnabled {
		hub := sentry.CurrentHub().Clone()
		hub.Scope().SetLevel(sentry.LevelFatal)
		hub.Recover(r)
		hub.Flush(t.flushTimeout)
	}

	logger.Sync(t.Logger)
	panic(r)
}

// InitSentry initializes the Sentry SDK
func InitSentry(cfg config.SentryConfig, env string) error {
	if cfg.DSN == "" {
		return nil // Sentry disabled if no DSN
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      sentryEnvironment(cfg, env),
		Release:          cfg.Release,
		Debug:            cfg.Debug,
		SampleRate:       cfg.SampleRate,
		TracesSampleRate: cfg.TracesSampleRate,
		AttachStacktrace: true,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize Sentry: %w", err)
	}

	return nil
}

// FlushSentry flushes any buffered events to Sentry
func FlushSentry(timeout time.Duration) {
	sentry.Flush(timeout)
}

func sentryEnvironment(cfg config.SentryConfig, env string) string {
	if cfg.Environment != "" {
		return cfg.Environment
	}
	return env
}

// newTracerProvider returns nil when tracing is disabled
func newTracerProvider(ctx context.Context, cfg config.TracingConfig, env string) (*sdktrace.TracerProvider, error) {
	var exporter sdktrace.SpanExporter

	switch cfg.Exporter {
	case ExporterNone, "":
		return nil, nil

	case ExporterOTLP:
		opts := []otlptracegrpc.Option{
			otlptracegrpc.WithEndpoint(cfg.Endpoint),
		}
		if cfg.Insecure {
			opts = append(opts,
				otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
				otlptracegrpc.WithInsecure(),
			)
		}
		exp, err := otlptracegrpc.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create otlp exporter: %w", err)
		}
		exporter = exp

	case ExporterStdout:
		exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("failed to create stdout exporter: %w", err)
		}
		exporter = exp

	default:
		return nil, errors.New("unknown trace exporter type")
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironment(env),
	)

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.SampleRate)),
	), nil
}

func sampler(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1.0:
		return sdktrace.AlwaysSample()
	case rate <= 0.0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(rate)
	}
}
