package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/runsapi/runs-api/internal/config"
)

// New builds the process logger from the log configuration.
//
// Format "console" produces colored human-readable output; anything else
// produces JSON lines.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	return build(cfg, zapcore.AddSync(os.Stdout))
}

func build(cfg config.LogConfig, sink zapcore.WriteSyncer) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	var encoder zapcore.Encoder
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder

	if cfg.Format == "console" {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, sink, level)

	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

// WithRequestID returns a logger with request ID
func WithRequestID(log *zap.Logger, requestID string) *zap.Logger {
	return log.With(zap.String("request_id", requestID))
}

// Sync flushes any buffered log entries. Errors from syncing a terminal
// are ignored.
func Sync(log *zap.Logger) {
	if log != nil {
		_ = log.Sync()
	}
}
