package filehandler

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// ErrNotDirectory is returned by ListDirectory when the path is a file.
var ErrNotDirectory = errors.New("path is not a directory")

// Entry is one child of a listed directory.
type Entry struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	IsDir    bool   `json:"isDir"`
	Size     int64  `json:"size"`
	MIMEType string `json:"mimeType,omitempty"`
}

// Listing is the content of one directory.
type Listing struct {
	Path string `json:"path"`
	// Parent is empty when Path is a filesystem root.
	Parent  string  `json:"parent"`
	Entries []Entry `json:"entries"`
}

// ListDirectory returns the non-hidden children of dirPath, directories first,
// then case-insensitive by name. Entries whose info cannot be read are skipped.
func ListDirectory(dirPath string) (*Listing, error) {
	absPath, err := filepath.Abs(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, absPath)
	}

	dirEntries, err := os.ReadDir(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if strings.HasPrefix(de.Name(), ".") {
			continue
		}

		fi, err := de.Info()
		if err != nil {
			log.Debug().Err(err).Str("name", de.Name()).Msg("Skipping unreadable entry")
			continue
		}

		entry := Entry{
			Name:  de.Name(),
			Path:  filepath.Join(absPath, de.Name()),
			IsDir: de.IsDir(),
			Size:  fi.Size(),
		}
		if !de.IsDir() {
			if mime, err := GetMIMEType(filepath.Ext(de.Name())); err == nil {
				entry.MIMEType = mime
			}
		}

		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].IsDir != entries[j].IsDir {
			return entries[i].IsDir
		}
		return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
	})

	parent := filepath.Dir(absPath)
	if parent == absPath {
		parent = ""
	}

	log.Debug().
		Str("path", absPath).
		Int("entries", len(entries)).
		Msg("Directory listed")

	return &Listing{
		Path:    absPath,
		Parent:  parent,
		Entries: entries,
	}, nil
}
