package filehandler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// DefaultExcludeDirs are directory names never descended into by Walk.
var DefaultExcludeDirs = []string{".git", "node_modules", "__pycache__"}

// DefaultExcludePatterns are file name globs skipped by Walk.
var DefaultExcludePatterns = []string{".DS_Store", "*.tmp", "*.log"}

// TopFiles is how many entries Insights keeps in its largest and oldest lists.
const TopFiles = 10

// hashWorkers bounds concurrent file hashing in Duplicates and Search.
const hashWorkers = 4

// ErrInvalidAgeMode is returned by Aging for a mode other than modified or accessed.
var ErrInvalidAgeMode = errors.New("age mode must be 'modified' or 'accessed'")

// FileRecord is the metadata of one regular file found by Walk.
type FileRecord struct {
	Path         string    `json:"path"`
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	Type         string    `json:"type"`
	MIMEType     string    `json:"mimeType,omitempty"`
	ModifiedTime time.Time `json:"modifiedTime"`
	AccessedTime time.Time `json:"accessedTime"`
	Hash         string    `json:"hash,omitempty"`
}

// Walk visits every regular file below root, skipping DefaultExcludeDirs and
// files matching DefaultExcludePatterns. Unreadable entries are logged and
// skipped. Symlinks are not followed. Walk stops when ctx is done or fn
// returns an error.
func Walk(ctx context.Context, root string, fn func(FileRecord) error) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == root {
				return err
			}
			log.Debug().Err(err).Str("path", path).Msg("Skipping unreadable path")
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != root && excludedDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || excludedFile(d.Name()) {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			log.Debug().Err(err).Str("path", path).Msg("Skipping unreadable file")
			return nil
		}
		return fn(newFileRecord(path, fi))
	})
}

func newFileRecord(path string, fi fs.FileInfo) FileRecord {
	ext := strings.ToLower(filepath.Ext(fi.Name()))
	rec := FileRecord{
		Path:         path,
		Name:         fi.Name(),
		Size:         fi.Size(),
		Type:         ext,
		ModifiedTime: fi.ModTime(),
		AccessedTime: accessTime(fi),
	}
	if rec.Type == "" {
		rec.Type = "none"
	}
	if mime, err := GetMIMEType(ext); err == nil {
		rec.MIMEType = mime
	}
	return rec
}

func excludedDir(name string) bool {
	for _, d := range DefaultExcludeDirs {
		if name == d {
			return true
		}
	}
	return false
}

func excludedFile(name string) bool {
	for _, p := range DefaultExcludePatterns {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}
	return false
}

// Insights summarizes disk usage below a directory.
type Insights struct {
	Root       string         `json:"root"`
	TotalSize  int64          `json:"totalSize"`
	FileCount  int            `json:"fileCount"`
	TypeCounts map[string]int `json:"typeCounts"`
	Largest    []FileRecord   `json:"largest"`
	Oldest     []FileRecord   `json:"oldest"`
}

// GetInsights walks root and reports totals, per-extension counts and the
// TopFiles largest and least recently modified files.
func GetInsights(ctx context.Context, root string) (*Insights, error) {
	ins := &Insights{
		Root:       root,
		TypeCounts: make(map[string]int),
		Largest:    []FileRecord{},
		Oldest:     []FileRecord{},
	}

	err := Walk(ctx, root, func(rec FileRecord) error {
		ins.TotalSize += rec.Size
		ins.FileCount++
		ins.TypeCounts[rec.Type]++

		ins.Largest = append(ins.Largest, rec)
		if len(ins.Largest) > 4*TopFiles {
			ins.Largest = largestFirst(ins.Largest, TopFiles)
		}
		ins.Oldest = append(ins.Oldest, rec)
		if len(ins.Oldest) > 4*TopFiles {
			ins.Oldest = oldestFirst(ins.Oldest, TopFiles)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ins.Largest = largestFirst(ins.Largest, TopFiles)
	ins.Oldest = oldestFirst(ins.Oldest, TopFiles)

	log.Debug().
		Str("root", root).
		Int("files", ins.FileCount).
		Int64("bytes", ins.TotalSize).
		Msg("Insights computed")
	return ins, nil
}

// largestFirst sorts recs by size descending, path ascending on ties, and
// keeps at most n when n > 0.
func largestFirst(recs []FileRecord, n int) []FileRecord {
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Size != recs[j].Size {
			return recs[i].Size > recs[j].Size
		}
		return recs[i].Path < recs[j].Path
	})
	if n > 0 && len(recs) > n {
		recs = recs[:n]
	}
	return recs
}

func oldestFirst(recs []FileRecord, n int) []FileRecord {
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].ModifiedTime.Equal(recs[j].ModifiedTime) {
			return recs[i].ModifiedTime.Before(recs[j].ModifiedTime)
		}
		return recs[i].Path < recs[j].Path
	})
	if n > 0 && len(recs) > n {
		recs = recs[:n]
	}
	return recs
}

// DuplicateGroup is a set of files with identical content.
type DuplicateGroup struct {
	Hash  string       `json:"hash"`
	Size  int64        `json:"size"`
	Files []FileRecord `json:"files"`
}

// Wasted is the space that would be freed by keeping one copy.
func (g DuplicateGroup) Wasted() int64 {
	return g.Size * int64(len(g.Files)-1)
}

// FindDuplicates walks root and groups non-empty files by content. Only files
// sharing a size with another file are hashed. Groups are ordered by wasted
// space, largest first.
func FindDuplicates(ctx context.Context, root string) ([]DuplicateGroup, error) {
	var recs []FileRecord
	err := Walk(ctx, root, func(rec FileRecord) error {
		recs = append(recs, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	groups, err := groupDuplicates(ctx, recs)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("root", root).
		Int("files", len(recs)).
		Int("groups", len(groups)).
		Msg("Duplicates found")
	return groups, nil
}

func groupDuplicates(ctx context.Context, recs []FileRecord) ([]DuplicateGroup, error) {
	bySize := make(map[int64][]int)
	for i, rec := range recs {
		if rec.Size > 0 {
			bySize[rec.Size] = append(bySize[rec.Size], i)
		}
	}

	var candidates []int
	for _, idx := range bySize {
		if len(idx) > 1 {
			candidates = append(candidates, idx...)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(hashWorkers)
	for _, i := range candidates {
		rec := &recs[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sum, err := HashFile(rec.Path)
			if err != nil {
				log.Debug().Err(err).Str("path", rec.Path).Msg("Skipping unhashable file")
				return nil
			}
			rec.Hash = sum
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byHash := make(map[string]*DuplicateGroup)
	for _, i := range candidates {
		rec := recs[i]
		if rec.Hash == "" {
			continue
		}
		key := fmt.Sprintf("%d:%s", rec.Size, rec.Hash)
		grp, ok := byHash[key]
		if !ok {
			grp = &DuplicateGroup{Hash: rec.Hash, Size: rec.Size}
			byHash[key] = grp
		}
		grp.Files = append(grp.Files, rec)
	}

	groups := make([]DuplicateGroup, 0, len(byHash))
	for _, grp := range byHash {
		if len(grp.Files) < 2 {
			continue
		}
		sort.Slice(grp.Files, func(i, j int) bool { return grp.Files[i].Path < grp.Files[j].Path })
		groups = append(groups, *grp)
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Wasted() != groups[j].Wasted() {
			return groups[i].Wasted() > groups[j].Wasted()
		}
		return groups[i].Hash < groups[j].Hash
	})
	return groups, nil
}

var hashBufPool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, 64*1024)
		return &buf
	},
}

// HashFile returns the hex xxhash64 digest of a file's content.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	bufp := hashBufPool.Get().(*[]byte)
	defer hashBufPool.Put(bufp)

	d := xxhash.New()
	if _, err := io.CopyBuffer(d, f, *bufp); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return fmt.Sprintf("%016x", d.Sum64()), nil
}

// AgeMode selects which timestamp Aging compares.
type AgeMode string

const (
	AgeModified AgeMode = "modified"
	AgeAccessed AgeMode = "accessed"
)

// FindAging returns files whose modification or access time is more than
// days days before now, oldest first. Filesystems mounted noatime report
// access times that only move on modification.
func FindAging(ctx context.Context, root string, days int, mode AgeMode) ([]FileRecord, error) {
	if mode == "" {
		mode = AgeModified
	}
	if mode != AgeModified && mode != AgeAccessed {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAgeMode, mode)
	}
	if days < 0 {
		return nil, fmt.Errorf("days must be non-negative, got %d", days)
	}

	cutoff := time.Now().AddDate(0, 0, -days)
	stamp := func(rec FileRecord) time.Time {
		if mode == AgeAccessed {
			return rec.AccessedTime
		}
		return rec.ModifiedTime
	}

	aging := []FileRecord{}
	err := Walk(ctx, root, func(rec FileRecord) error {
		if stamp(rec).Before(cutoff) {
			aging = append(aging, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(aging, func(i, j int) bool {
		ti, tj := stamp(aging[i]), stamp(aging[j])
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return aging[i].Path < aging[j].Path
	})
	return aging, nil
}

// Filter narrows Search results. Zero values disable a criterion.
type Filter struct {
	MinSize int64 `json:"minSize"`
	MaxSize int64 `json:"maxSize"`
	// Types are lowercase extensions including the dot, e.g. ".jpg".
	Types          []string  `json:"types"`
	ModifiedBefore time.Time `json:"modifiedBefore"`
	// TopN keeps the N largest matches.
	TopN int `json:"topN"`
	// DuplicatesOnly keeps matches that have an identical copy among the
	// other matches.
	DuplicatesOnly bool `json:"duplicatesOnly"`
}

// Search walks root and returns the files accepted by f. Results are
// largest first.
func Search(ctx context.Context, root string, f Filter) ([]FileRecord, error) {
	types := make(map[string]bool, len(f.Types))
	for _, t := range f.Types {
		t = strings.ToLower(t)
		if t != "" && !strings.HasPrefix(t, ".") {
			t = "." + t
		}
		types[t] = true
	}

	matches := []FileRecord{}
	err := Walk(ctx, root, func(rec FileRecord) error {
		if f.MinSize > 0 && rec.Size < f.MinSize {
			return nil
		}
		if f.MaxSize > 0 && rec.Size > f.MaxSize {
			return nil
		}
		if len(types) > 0 && !types[rec.Type] {
			return nil
		}
		if !f.ModifiedBefore.IsZero() && !rec.ModifiedTime.Before(f.ModifiedBefore) {
			return nil
		}
		matches = append(matches, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}

	matches = largestFirst(matches, f.TopN)

	if f.DuplicatesOnly {
		groups, err := groupDuplicates(ctx, matches)
		if err != nil {
			return nil, err
		}
		dups := []FileRecord{}
		for _, g := range groups {
			dups = append(dups, g.Files...)
		}
		matches = largestFirst(dups, 0)
	}
	return matches, nil
}
