package volumes

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/disk"
)

// PartitionLister lists the mount points of physical partitions. Pseudo and
// memory filesystems are left out.
type PartitionLister struct{}

// List returns the unique mount points, sorted.
func (PartitionLister) List(ctx context.Context) ([]string, error) {
	parts, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list partitions: %w", err)
	}

	roots := mountpoints(parts)
	log.Debug().
		Int("partitions", len(parts)).
		Int("count", len(roots)).
		Msg("Listed partition volumes")
	return roots, nil
}

func mountpoints(parts []disk.PartitionStat) []string {
	seen := make(map[string]bool, len(parts))
	roots := make([]string, 0, len(parts))
	for _, p := range parts {
		if p.Mountpoint == "" || seen[p.Mountpoint] {
			continue
		}
		seen[p.Mountpoint] = true
		roots = append(roots, p.Mountpoint)
	}
	sort.Strings(roots)
	return roots
}
