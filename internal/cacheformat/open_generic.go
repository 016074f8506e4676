//go:build !linux

package cacheformat

import "os"

// OpenHeaderFile opens a cache header file for reading. Non-Linux targets
// have no portable O_NOATIME equivalent, so this is a plain open.
func OpenHeaderFile(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_RDONLY, 0)
}
