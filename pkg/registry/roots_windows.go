//go:build windows

package registry

import (
	"fmt"

	"golang.org/x/sys/windows"
)

var fallbackRoot = RootEntry{Label: "C:", Path: `C:\`}

// systemRoots lists logical drives as returned by GetLogicalDriveStringsW:
// a sequence of NUL-terminated strings such as "C:\", "D:\", ending with an
// empty string.
func systemRoots() ([]RootEntry, error) {
	n, err := windows.GetLogicalDriveStrings(0, nil)
	if err != nil {
		return nil, fmt.Errorf("GetLogicalDriveStrings: %w", err)
	}

	buf := make([]uint16, n+1)
	n, err = windows.GetLogicalDriveStrings(uint32(len(buf)), &buf[0])
	if err != nil {
		return nil, fmt.Errorf("GetLogicalDriveStrings: %w", err)
	}

	return parseDriveStrings(buf[:n]), nil
}

func parseDriveStrings(buf []uint16) []RootEntry {
	var roots []RootEntry
	start := 0
	for i, c := range buf {
		if c != 0 {
			continue
		}
		if i > start {
			drive := windows.UTF16ToString(buf[start:i])
			label := drive
			if len(label) >= 2 {
				label = label[:2]
			}
			roots = append(roots, RootEntry{Label: label, Path: drive})
		}
		start = i + 1
	}
	return roots
}
