package volumes

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v3/disk"
	"golang.org/x/sync/errgroup"
)

// Usage is the capacity of one volume in bytes.
type Usage struct {
	Path        string  `json:"path"`
	Total       uint64  `json:"total"`
	Free        uint64  `json:"free"`
	Used        uint64  `json:"used"`
	UsedPercent float64 `json:"usedPercent"`
}

// UsageOf reports the capacity of the filesystem holding path.
func UsageOf(ctx context.Context, path string) (*Usage, error) {
	u, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read usage of %s: %w", path, err)
	}
	return &Usage{
		Path:        path,
		Total:       u.Total,
		Free:        u.Free,
		Used:        u.Used,
		UsedPercent: u.UsedPercent,
	}, nil
}

// UsageAll queries every root concurrently. The result is index-aligned with
// roots; the first failure cancels the rest and is returned.
func UsageAll(ctx context.Context, roots []string) ([]*Usage, error) {
	out := make([]*Usage, len(roots))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, root := range roots {
		g.Go(func() error {
			u, err := UsageOf(gctx, root)
			if err != nil {
				return err
			}
			out[i] = u
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
