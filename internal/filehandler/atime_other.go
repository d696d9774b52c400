//go:build !linux && !darwin && !windows

package filehandler

import (
	"io/fs"
	"time"
)

// accessTime falls back to the modification time where the platform's
// stat layout is not handled.
func accessTime(fi fs.FileInfo) time.Time {
	return fi.ModTime()
}
