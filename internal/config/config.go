package config

import (
	"fmt"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Log      LogConfig
	CORS     CORSConfig
	Sentry   SentryConfig
	Tracing  TracingConfig
	Metrics  MetricsConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	Env            string        `mapstructure:"env"`
	APIPrefix      string        `mapstructure:"api_prefix"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// Addr returns the listen address
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// PostgresConfig holds PostgreSQL configuration
type PostgresConfig struct {
	// URL takes precedence over the individual connection fields when set.
	URL         string `mapstructure:"url"`
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	Database    string `mapstructure:"database"`
	SSLMode     string `mapstructure:"ssl_mode"`
	MaxConns    int32  `mapstructure:"max_conns"`
	MinConns    int32  `mapstructure:"min_conns"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

// DSN returns the PostgreSQL connection string
func (c PostgresConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
		c.SSLMode,
	)
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// Addr returns the Redis address
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds the allowed browser origins
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"origins"`
}

// SentryConfig holds crash reporting configuration
type SentryConfig struct {
	DSN              string  `mapstructure:"dsn"`
	Environment      string  `mapstructure:"environment"`
	Release          string  `mapstructure:"release"`
	Debug            bool    `mapstructure:"debug"`
	SampleRate       float64 `mapstructure:"sample_rate"`
	TracesSampleRate float64 `mapstructure:"traces_sample_rate"`
}

// Enabled reports whether crash reporting should be installed
func (c SentryConfig) Enabled() bool {
	return c.DSN != ""
}

// TracingConfig holds OpenTelemetry configuration
type TracingConfig struct {
	// Exporter is one of "none", "stdout" or "otlp".
	Exporter       string  `mapstructure:"exporter"`
	Endpoint       string  `mapstructure:"endpoint"`
	Insecure       bool    `mapstructure:"insecure"`
	SampleRate     float64 `mapstructure:"sample_rate"`
	ServiceName    string  `mapstructure:"service_name"`
	ServiceVersion string  `mapstructure:"service_version"`
}

// MetricsConfig holds Prometheus configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// IsDevelopment returns true if running in development mode
func (c Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode
func (c Config) IsProduction() bool {
	return c.Server.Env == "production"
}
