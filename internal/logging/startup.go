package logging

import (
	"os"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// StartupLogger collects build identity, listen address, configuration and
// feature flags, then emits a single structured zerolog event summarising how
// the server was started.
type StartupLogger struct {
	name         string
	version      string
	commitHash   string
	addr         string
	initDuration time.Duration

	features map[string]bool
	config   map[string]string
}

// NewStartupLogger creates a StartupLogger for the named binary.
func NewStartupLogger(name string) *StartupLogger {
	return &StartupLogger{
		name:     name,
		features: make(map[string]bool),
		config:   make(map[string]string),
	}
}

// Version sets the release version baked into the binary at build time.
func (s *StartupLogger) Version(v string) *StartupLogger {
	s.version = v
	return s
}

// CommitHash sets the git commit hash baked into the binary at build time.
func (s *StartupLogger) CommitHash(hash string) *StartupLogger {
	s.commitHash = hash
	return s
}

// Addr records the address the HTTP server listens on.
func (s *StartupLogger) Addr(addr string) *StartupLogger {
	s.addr = addr
	return s
}

// Feature registers a boolean feature flag (e.g. "picker", "gzip").
func (s *StartupLogger) Feature(name string, enabled bool) *StartupLogger {
	s.features[name] = enabled
	return s
}

// Config registers a non-sensitive configuration key-value pair.
func (s *StartupLogger) Config(key, value string) *StartupLogger {
	s.config[key] = value
	return s
}

// InitDuration records how long startup took.
func (s *StartupLogger) InitDuration(d time.Duration) *StartupLogger {
	s.initDuration = d
	return s
}

// Log emits a single structured INFO log event with all collected information.
func (s *StartupLogger) Log() {
	evt := log.Info()

	process := zerolog.Dict().
		Str("name", s.name).
		Int("pid", os.Getpid()).
		Str("goVersion", runtime.Version()).
		Str("os", runtime.GOOS).
		Str("arch", runtime.GOARCH).
		Str("logLevel", zerolog.GlobalLevel().String())

	if s.version != "" {
		process = process.Str("version", s.version)
	}
	if s.commitHash != "" {
		process = process.Str("commitHash", s.commitHash)
	}
	evt = evt.Dict("process", process)

	if s.addr != "" {
		evt = evt.Str("addr", s.addr)
	}

	if len(s.features) > 0 {
		d := zerolog.Dict()
		for k, v := range s.features {
			d = d.Bool(k, v)
		}
		evt = evt.Dict("features", d)
	}

	if len(s.config) > 0 {
		evt = evt.Dict("config", dictFromMap(s.config))
	}

	if s.initDuration > 0 {
		evt = evt.Dur("initDuration", s.initDuration)
	}

	evt.Msg("Server startup complete")
}

// dictFromMap converts a map[string]string into a zerolog.Event (Dict).
func dictFromMap(m map[string]string) *zerolog.Event {
	d := zerolog.Dict()
	for k, v := range m {
		d = d.Str(k, v)
	}
	return d
}
