package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// Load loads configuration from a .env file, environment variables and config files
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read from environment variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Optionally read from config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/runs-api")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config

	// Server
	cfg.Server.Host = v.GetString("server_host")
	cfg.Server.Port = v.GetInt("server_port")
	cfg.Server.Env = v.GetString("server_env")
	cfg.Server.APIPrefix = v.GetString("server_api_prefix")
	cfg.Server.RequestTimeout = v.GetDuration("server_request_timeout")

	// PostgreSQL
	cfg.Postgres.URL = v.GetString("database_url")
	cfg.Postgres.Host = v.GetString("postgres_host")
	cfg.Postgres.Port = v.GetInt("postgres_port")
	cfg.Postgres.User = v.GetString("postgres_user")
	cfg.Postgres.Password = v.GetString("postgres_password")
	cfg.Postgres.Database = v.GetString("postgres_db")
	cfg.Postgres.SSLMode = v.GetString("postgres_ssl_mode")
	cfg.Postgres.MaxConns = int32(v.GetInt("postgres_max_conns"))
	cfg.Postgres.MinConns = int32(v.GetInt("postgres_min_conns"))
	cfg.Postgres.AutoMigrate = v.GetBool("postgres_auto_migrate")

	// Redis
	cfg.Redis.Enabled = v.GetBool("redis_enabled")
	cfg.Redis.Host = v.GetString("redis_host")
	cfg.Redis.Port = v.GetInt("redis_port")
	cfg.Redis.Password = v.GetString("redis_password")
	cfg.Redis.DB = v.GetInt("redis_db")
	cfg.Redis.CacheTTL = v.GetDuration("redis_cache_ttl")

	// Logging
	cfg.Log.Level = v.GetString("log_level")
	cfg.Log.Format = v.GetString("log_format")

	// CORS
	cfg.CORS.AllowOrigins = splitList(v.GetString("cors_origins"))

	// Sentry
	cfg.Sentry.DSN = v.GetString("sentry_dsn")
	cfg.Sentry.Environment = v.GetString("sentry_environment")
	cfg.Sentry.Release = v.GetString("sentry_release")
	cfg.Sentry.Debug = v.GetBool("sentry_debug")
	cfg.Sentry.SampleRate = v.GetFloat64("sentry_sample_rate")
	cfg.Sentry.TracesSampleRate = v.GetFloat64("sentry_traces_sample_rate")

	// Tracing
	cfg.Tracing.Exporter = v.GetString("tracing_exporter")
	cfg.Tracing.Endpoint = v.GetString("tracing_endpoint")
	cfg.Tracing.Insecure = v.GetBool("tracing_insecure")
	cfg.Tracing.SampleRate = v.GetFloat64("tracing_sample_rate")
	cfg.Tracing.ServiceName = v.GetString("tracing_service_name")
	cfg.Tracing.ServiceVersion = v.GetString("tracing_service_version")

	// Metrics
	cfg.Metrics.Enabled = v.GetBool("metrics_enabled")
	cfg.Metrics.Path = v.GetString("metrics_path")

	// Validate required fields
	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server_host", "127.0.0.1")
	v.SetDefault("server_port", 8888)
	v.SetDefault("server_env", "development")
	v.SetDefault("server_api_prefix", "/api")
	v.SetDefault("server_request_timeout", "30s")

	// PostgreSQL defaults
	v.SetDefault("database_url", "")
	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", 5432)
	v.SetDefault("postgres_user", "runs")
	v.SetDefault("postgres_password", "runs")
	v.SetDefault("postgres_db", "runs")
	v.SetDefault("postgres_ssl_mode", "disable")
	v.SetDefault("postgres_max_conns", 16)
	v.SetDefault("postgres_min_conns", 1)
	v.SetDefault("postgres_auto_migrate", true)

	// Redis defaults
	v.SetDefault("redis_enabled", false)
	v.SetDefault("redis_host", "localhost")
	v.SetDefault("redis_port", 6379)
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("redis_cache_ttl", "30s")

	// Logging defaults
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	// CORS defaults
	v.SetDefault("cors_origins", "http://localhost:3000")

	// Sentry defaults
	v.SetDefault("sentry_dsn", "")
	v.SetDefault("sentry_environment", "")
	v.SetDefault("sentry_release", "")
	v.SetDefault("sentry_debug", false)
	v.SetDefault("sentry_sample_rate", 1.0)
	v.SetDefault("sentry_traces_sample_rate", 0.1)

	// Tracing defaults
	v.SetDefault("tracing_exporter", "none")
	v.SetDefault("tracing_endpoint", "localhost:4317")
	v.SetDefault("tracing_insecure", true)
	v.SetDefault("tracing_sample_rate", 1.0)
	v.SetDefault("tracing_service_name", "runs-api")
	v.SetDefault("tracing_service_version", "0.1.0")

	// Metrics defaults
	v.SetDefault("metrics_enabled", true)
	v.SetDefault("metrics_path", "/metrics")
}

func validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", cfg.Server.Port)
	}
	if !strings.HasPrefix(cfg.Server.APIPrefix, "/") || cfg.Server.APIPrefix == "/" {
		return fmt.Errorf("api prefix must be a non-root path, got %q", cfg.Server.APIPrefix)
	}
	if _, err := zapcore.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Log.Level, err)
	}
	switch cfg.Tracing.Exporter {
	case "none", "stdout", "otlp":
	default:
		return fmt.Errorf("unknown tracing exporter %q", cfg.Tracing.Exporter)
	}
	if cfg.Postgres.MaxConns <= 0 {
		return fmt.Errorf("postgres max conns must be positive")
	}
	return nil
}

// splitList splits a comma-separated setting, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
