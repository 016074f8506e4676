//go:build linux

package cacheformat

import (
	"os"

	"golang.org/x/sys/unix"
)

// OpenHeaderFile opens a cache header file for reading without updating its
// atime, so that scanning the cache does not itself keep entries alive.
// O_NOATIME requires the calling process to own the file or hold
// CAP_FOWNER; if the kernel refuses it we fall back to a plain open rather
// than fail the scan.
func OpenHeaderFile(path string) (*os.File, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NOATIME|unix.O_NOCTTY|unix.O_CLOEXEC, 0)
	if err == unix.EPERM {
		return os.OpenFile(path, os.O_RDONLY, 0)
	}
	if err != nil {
		return nil, &os.PathError{Op: "open", Path: path, Err: err}
	}
	return os.NewFile(uintptr(fd), path), nil
}
