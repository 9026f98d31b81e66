package log

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New builds the server's console logger writing to w, filtered at the given
// level. An unknown level falls back to info so a typo in the log_level knob
// never silences the server.
func New(w io.Writer, level string) *zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
	}

	logger := zerolog.New(output).Level(Level(level)).With().Timestamp().Logger()
	return &logger
}

// Level maps the config's log_level value to a zerolog level.
func Level(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
