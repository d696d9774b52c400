// Package opener hands paths to the operating system's default application.
//
// Failures are returned as *OpenError; nothing here terminates the process.
package opener

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// ErrOpen matches every *OpenError via errors.Is.
var ErrOpen = errors.New("opener: open failed")

// OpenError reports a path the OS could not open.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("failed to open %s: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrOpen.
func (e *OpenError) Is(target error) bool {
	return target == ErrOpen
}

// runFunc executes name with args and returns its combined output.
type runFunc func(name string, args ...string) ([]byte, error)

// Opener launches the OS file-association handler.
type Opener struct {
	run runFunc
}

// New returns an Opener that runs the platform's open command.
func New() *Opener {
	return &Opener{run: runCommand}
}

// Open opens path with its default application.
func (o *Opener) Open(path string) error {
	return o.open(path)
}

// OpenContainingFolder opens the directory that contains path.
func (o *Opener) OpenContainingFolder(path string) error {
	if path == "" {
		return &OpenError{Path: path, Err: errors.New("empty path")}
	}
	return o.open(filepath.Dir(filepath.Clean(path)))
}

func (o *Opener) open(path string) error {
	if path == "" {
		return &OpenError{Path: path, Err: errors.New("empty path")}
	}
	if _, err := os.Stat(path); err != nil {
		return &OpenError{Path: path, Err: err}
	}

	name, args := command(path)
	log.Debug().Str("path", path).Str("command", name).Msg("Opening with default application")

	output, err := o.run(name, args...)
	if err != nil {
		if out := strings.TrimSpace(string(output)); out != "" {
			err = fmt.Errorf("%s: %w: %s", name, err, out)
		} else {
			err = fmt.Errorf("%s: %w", name, err)
		}
		return &OpenError{Path: path, Err: err}
	}
	return nil
}

func runCommand(name string, args ...string) ([]byte, error) {
	bin, err := exec.LookPath(name)
	if err != nil {
		return nil, fmt.Errorf("%s not found: %w", name, err)
	}
	return exec.Command(bin, args...).CombinedOutput()
}
