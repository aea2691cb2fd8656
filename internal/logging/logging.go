// Package logging builds the process-wide zerolog.Logger, configured from
// the --log-level flag per spec.md §6's
// {error|warn|info|debug|trace} level set, the Go analog of the original's
// tracing subscriber setup.
package logging

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ParseLevel maps the spec's level vocabulary onto zerolog's, defaulting to
// info on an empty string and rejecting anything else.
func ParseLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return zerolog.InfoLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "debug":
		return zerolog.DebugLevel, nil
	case "trace":
		return zerolog.TraceLevel, nil
	default:
		return zerolog.InfoLevel, fmt.Errorf("invalid log level %q", level)
	}
}

// New builds a console-writer-backed logger at the given level, timestamped
// and tagged with the service name field every entry carries.
func New(level zerolog.Level) zerolog.Logger {
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Str("service", "json-validation-service").
		Logger()
}
