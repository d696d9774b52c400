package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotDirectory is returned by ResolvePath when a directory was required.
var ErrNotDirectory = errors.New("path is not a directory")

// ResolvePath checks that path exists and returns its absolute form. When
// wantDir is set the path must also be a directory.
func ResolvePath(path string, wantDir bool) (string, error) {
	if path == "" {
		return "", errors.New("path is required")
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("path not found: %s: %w", path, err)
		}
		return "", fmt.Errorf("failed to access %s: %w", path, err)
	}
	if wantDir && !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotDirectory, path)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return path, nil
	}
	return absPath, nil
}
