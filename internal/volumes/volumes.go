// Package volumes enumerates the storage roots a user can browse.
//
// The platform variant is selected at build time:
//   - darwin: every directory under /Volumes
//   - windows: every drive letter reported by the OS
//   - everything else: the filesystem root "/"
//
// A partition-table variant backed by gopsutil is available for hosts where
// the platform view is too coarse (e.g. Linux with several mounted disks).
package volumes

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog/log"
)

// Source names accepted by New.
const (
	SourcePlatform   = "platform"
	SourcePartitions = "partitions"
)

// Lister returns the root paths of mounted storage volumes.
type Lister interface {
	List(ctx context.Context) ([]string, error)
}

// New returns the Lister for source. An empty source selects the platform lister.
func New(source string) (Lister, error) {
	switch source {
	case "", SourcePlatform:
		return PlatformLister{}, nil
	case SourcePartitions:
		return PartitionLister{}, nil
	default:
		return nil, fmt.Errorf("unknown volume source %q", source)
	}
}

// PlatformLister lists volumes the way the host OS family presents them.
type PlatformLister struct{}

// List returns the platform's volume roots, sorted.
func (PlatformLister) List(ctx context.Context) ([]string, error) {
	roots, err := platformRoots()
	if err != nil {
		return nil, err
	}
	sort.Strings(roots)
	log.Debug().Int("count", len(roots)).Msg("Listed platform volumes")
	return roots, nil
}

// mountDirRoots returns every directory directly under mountDir. Symlinks that
// resolve to directories count (macOS links the boot volume into /Volumes).
func mountDirRoots(mountDir string) ([]string, error) {
	entries, err := os.ReadDir(mountDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", mountDir, err)
	}

	roots := make([]string, 0, len(entries))
	for _, e := range entries {
		p := filepath.Join(mountDir, e.Name())
		info, err := os.Stat(p)
		if err != nil {
			log.Debug().Err(err).Str("path", p).Msg("Skipping unreadable volume entry")
			continue
		}
		if info.IsDir() {
			roots = append(roots, p)
		}
	}
	return roots, nil
}

// driveRoots converts a logical-drives bitmask (bit 0 = A:) into drive roots.
func driveRoots(mask uint32) []string {
	var roots []string
	for i := 0; i < 26; i++ {
		if mask&(1<<uint(i)) != 0 {
			roots = append(roots, string(rune('A'+i))+`:\`)
		}
	}
	return roots
}
