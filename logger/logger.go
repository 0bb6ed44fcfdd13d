// Package logger initializes the process-wide zerolog logger from the loaded
// configuration.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Init initializes the logger. If logFile is empty, logs go to stdout as JSON,
// or human-readable when pretty is set. The configured level applies unless
// the LOG_LEVEL environment variable overrides it (trace, debug, info, warn,
// error). It should be called once at application startup.
func Init(level, logFile string, pretty bool) (zerolog.Logger, error) {
	if env := os.Getenv("LOG_LEVEL"); env != "" {
		level = env
	}
	lvl := parseLogLevel(level)

	var output io.Writer = os.Stdout
	switch {
	case logFile != "":
		//nolint:gosec // G304: User-specified log file path is intentional
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return zerolog.Logger{}, fmt.Errorf("failed to open log file %s: %w", logFile, err)
		}
		output = file
	case pretty:
		output = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	log := zerolog.New(output).
		Level(lvl).
		With().
		Timestamp().
		Logger()

	if logFile != "" {
		log.Info().Str("path", logFile).Str("level", lvl.String()).Msg("Logger initialized")
	} else {
		log.Info().Str("output", "stdout").Str("level", lvl.String()).Msg("Logger initialized")
	}

	return log, nil
}

func parseLogLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "trace":
		return zerolog.TraceLevel
	default:
		return zerolog.InfoLevel
	}
}
