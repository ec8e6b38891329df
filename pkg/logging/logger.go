// Package logging provides structured logging configuration using zerolog.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelDebug logs debug messages and above.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs info messages and above.
	LevelInfo LogLevel = "info"

	// LevelWarn logs warning messages and above.
	LevelWarn LogLevel = "warn"

	// LevelError logs error messages only.
	LevelError LogLevel = "error"

	// LevelDisabled turns logging off.
	LevelDisabled LogLevel = "disabled"
)

// Component names used with NewLogger.
const (
	ComponentClient     = "ethos-client"
	ComponentPaging     = "paging"
	ComponentTokenCache = "token-cache"
	ComponentCLI        = "ethos-pager"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty enables human-readable console output (default: false for JSON).
	Pretty bool

	// Output is the writer to output logs to (default: os.Stderr).
	Output io.Writer
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger.
func Setup(cfg Config) zerolog.Logger {
	// Set global log level
	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	// Configure output
	var output io.Writer = cfg.Output
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: cfg.Output}
	}

	// Create logger with timestamp
	logger := zerolog.New(output).With().Timestamp().Logger()

	// Set as global logger
	log.Logger = logger

	return logger
}

// parseLevel converts LogLevel to zerolog.Level.
func parseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(string(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a new logger with the given component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug: Detailed information for debugging
//   - Every page fetch (resource, offset, limit)
//   - Resolved paging plans (strategy, page size, total count)
//   - Token acquisition and token cache hits
//
// Info: Normal operation events
//   - Completed paging runs (strategy, pages fetched, duration)
//   - CLI startup
//
// Warn: Warning conditions that don't prevent operation
//   - Unparsable total count headers (treated as 0)
//   - Non-2xx Ethos responses
//   - Token cache errors (fallback to the auth endpoint)
//
// Error: Error conditions requiring attention
//   - Transport failures that abort a paging run
//   - Rejected token acquisition
//   - Configuration errors
//
// Context Fields:
//   - component: ethos-client, paging, token-cache
//   - resource: Ethos resource name
//   - strategy: paging strategy
//   - offset, limit: page window of a fetch
//   - total_count, page_size: resolved plan values
//   - status: HTTP status code
//   - error_class: Error classification (client, server, rate_limit, network, auth)
//   - request_id: X-Request-Id of the request
//   - duration: Run or request duration
