//go:build linux

package scanner

import (
	"errors"
	"os"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// statTimes extracts modification and access times from a *nix stat
// structure, reading atime directly rather than relying on FileInfo alone.
func statTimes(info os.FileInfo) (modified, accessed time.Time) {
	modified = info.ModTime()
	accessed = modified

	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return modified, accessed
	}
	accessed = time.Unix(st.Atim.Sec, st.Atim.Nsec)
	return modified, accessed
}

// hasMoreThanTwoLinks reports whether dir's link count exceeds 2, which on
// POSIX filesystems means it still contains at least one subdirectory
// (every directory has an implicit "." and its parent has a ".." pointing
// back). Used to skip a readdir round trip on directories that obviously
// are not empty.
func hasMoreThanTwoLinks(dir string) bool {
	var st unix.Stat_t
	if err := unix.Lstat(dir, &st); err != nil {
		return false
	}
	return st.Nlink > 2
}

// isNotEmpty reports whether err is the "directory not empty" error a
// concurrent writer can produce between our emptiness check and the
// removal call.
func isNotEmpty(err error) bool {
	return errors.Is(err, unix.ENOTEMPTY)
}
