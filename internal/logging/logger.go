package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init initializes the global logger. level is one of debug, info, warn,
// error; anything else falls back to info. With json set, events are written
// as JSON lines instead of the human-readable console format.
func Init(level string, json bool) {
	zerolog.SetGlobalLevel(ParseLevel(level))

	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stderr}
	if json {
		out = os.Stderr
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
