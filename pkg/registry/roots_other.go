//go:build !windows

package registry

var fallbackRoot = RootEntry{Label: "/", Path: "/"}

// systemRoots returns the single POSIX root.
func systemRoots() ([]RootEntry, error) {
	return []RootEntry{fallbackRoot}, nil
}
