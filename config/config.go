// mobilecart/config/config.go

// Package config loads service settings from the environment.
package config

import (
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

// Storage backends accepted by STORAGE_BACKEND.
const (
	BackendLocal  = "local"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// Trace exporters accepted by TRACE_EXPORTER.
const (
	ExporterOTLP   = "otlp"
	ExporterStdout = "stdout"
	ExporterNone   = "none"
)

type Config struct {
	Port     string `env:"PORT" envDefault:"7070"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"local"`
	RedisAddr      string `env:"REDIS_ADDR"`
	SQLitePath     string `env:"SQLITE_PATH" envDefault:"mobilecart.db"`

	CartKey          string `env:"CART_KEY" envDefault:"@cart"`
	CartRemoveAtZero bool   `env:"CART_REMOVE_AT_ZERO" envDefault:"false"`

	TraceExporter string `env:"TRACE_EXPORTER" envDefault:"otlp"`
	OTLPEndpoint  string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4317"`
	ServiceName   string `env:"OTEL_SERVICE_NAME" envDefault:"mobilecart"`
}

// Load parses the process environment.
func Load() (Config, error) {
	return LoadFrom(nil)
}

// LoadFrom parses environ instead of the process environment when it is non-nil.
func LoadFrom(environ map[string]string) (Config, error) {
	var cfg Config
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, errors.Wrap(err, "parse env")
	}
	cfg.StorageBackend = strings.ToLower(strings.TrimSpace(cfg.StorageBackend))
	cfg.TraceExporter = strings.ToLower(strings.TrimSpace(cfg.TraceExporter))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerated settings and backend requirements.
func (c Config) Validate() error {
	switch c.StorageBackend {
	case BackendLocal, BackendSQLite:
	case BackendRedis:
		if c.RedisAddr == "" {
			return errors.Errorf("REDIS_ADDR environment variable is required for the %s backend", BackendRedis)
		}
	default:
		return errors.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}
	switch c.TraceExporter {
	case ExporterOTLP, ExporterStdout, ExporterNone:
	default:
		return errors.Errorf("unknown TRACE_EXPORTER %q", c.TraceExporter)
	}
	if strings.TrimSpace(c.CartKey) == "" {
		return errors.New("CART_KEY must not be empty")
	}
	return nil
}

// RedisAddress appends the default port when REDIS_ADDR omits one.
func (c Config) RedisAddress() string {
	if strings.Contains(c.RedisAddr, "://") || strings.Contains(c.RedisAddr, ":") {
		return c.RedisAddr
	}
	return c.RedisAddr + ":6379"
}
