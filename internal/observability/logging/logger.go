// Package logging provides structured logging with zerolog.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds logging configuration.
type Config struct {
	Level       string // debug, info, warn, error
	Format      string // json, console
	Service     string
	Environment string
}

// DefaultConfig returns sensible default logging configuration.
func DefaultConfig() Config {
	return Config{
		Level:   "info",
		Format:  "json",
		Service: "interview-assist",
	}
}

// Init initializes the global zerolog logger and returns it.
func Init(cfg Config) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var output io.Writer = os.Stdout
	if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.Kitchen,
		}
	}

	log.Logger = zerolog.New(output).
		With().
		Timestamp().
		Str("service", cfg.Service).
		Str("environment", cfg.Environment).
		Logger()

	return log.Logger
}

// Logger returns the global logger.
func Logger() zerolog.Logger {
	return log.Logger
}

// WithComponent returns a logger with a component tag.
func WithComponent(component string) zerolog.Logger {
	return log.With().
		Str("component", component).
		Logger()
}

// WithRequest returns a logger tagged with the request id and operation.
func WithRequest(requestID, operation string) zerolog.Logger {
	return log.With().
		Str("requestId", requestID).
		Str("operation", operation).
		Logger()
}
