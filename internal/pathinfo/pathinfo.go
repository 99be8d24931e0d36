// Package pathinfo answers live filesystem questions about candidate paths.
package pathinfo

import "os"

// Inspector reports the current state of a path on disk.
type Inspector interface {
	// IsDir reports whether path currently exists and is a directory.
	// Symlinks are followed.
	IsDir(path string) bool
}

// OS is the Inspector backed by the real filesystem.
type OS struct{}

// IsDir stats path and reports whether it is a directory.
func (OS) IsDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// Func adapts a plain function to the Inspector interface.
type Func func(path string) bool

// IsDir calls f(path).
func (f Func) IsDir(path string) bool {
	return f(path)
}

// Dirs is a fixed Inspector that treats exactly the listed paths as directories.
// Useful for tests that must not touch the disk.
type Dirs map[string]bool

// IsDir reports whether path is listed.
func (d Dirs) IsDir(path string) bool {
	return d[path]
}
