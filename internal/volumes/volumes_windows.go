//go:build windows

package volumes

import (
	"fmt"

	"golang.org/x/sys/windows"
)

func platformRoots() ([]string, error) {
	mask, err := windows.GetLogicalDrives()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate logical drives: %w", err)
	}
	return driveRoots(mask), nil
}
