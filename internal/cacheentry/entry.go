// Package cacheentry models a single cached response on disk: its header
// file plus the paired data/vary files it governs, with the ordering
// eviction uses to decide which entries are the best deletion candidates.
package cacheentry

import (
	"os"
	"strings"
	"time"

	"github.com/yourusername/htcacheclean/internal/cacheformat"
)

const (
	headerSuffix  = ".header"
	dataSuffix    = ".data"
	headerVaryExt = ".header.vary" // directory suffix for vary sub-entries
)

// Entry describes a cache entry discovered by the scanner: enough metadata
// to compare it against others and to locate its sibling files.
type Entry struct {
	HeaderPath string
	Format     cacheformat.Format
	Expiry     time.Time // zero if the header carries no expiry
	Modified   time.Time
	Accessed   time.Time
}

// New builds an Entry from a header file's path, the format and expiry
// (microseconds since the epoch, 0 for none) parsed from that header, and
// its modification and access times. It does no I/O itself; callers without
// a usable atime should pass the modification time as accessed.
func New(headerPath string, format cacheformat.Format, expiryMicros int64, modified, accessed time.Time) Entry {
	var expiry time.Time
	if expiryMicros != 0 {
		expiry = time.UnixMicro(expiryMicros)
	}
	return Entry{
		HeaderPath: headerPath,
		Format:     format,
		Expiry:     expiry,
		Modified:   modified,
		Accessed:   accessed,
	}
}

// DataPath returns the path of the paired .data file.
func (e Entry) DataPath() string {
	return strings.TrimSuffix(e.HeaderPath, headerSuffix) + dataSuffix
}

// VaryPath returns the path of the paired .header.vary directory, used by
// Vary-negotiated entries to hold per-variant sub-entries.
func (e Entry) VaryPath() string {
	return strings.TrimSuffix(e.HeaderPath, headerSuffix) + headerVaryExt
}

// Compare orders two entries so that the strongest eviction candidate
// (oldest, least useful) sorts first. The tiebreak cascade is:
//  1. max(expiry, modified) ascending — entries closer to (or past) their
//     expiry are evicted before fresher ones; unexpiring entries fall back
//     to modification time.
//  2. max(accessed, modified) ascending — among equally-expired entries,
//     least recently used goes first.
//  3. modified ascending, as a final tiebreak when access times coincide
//     (e.g. filesystems mounted noatime).
//  4. header path, lexicographic, so the order is always total and stable.
func Compare(a, b Entry) int {
	if c := compareTime(effectiveExpiry(a), effectiveExpiry(b)); c != 0 {
		return c
	}
	if c := compareTime(effectiveAccess(a), effectiveAccess(b)); c != 0 {
		return c
	}
	if c := compareTime(a.Modified, b.Modified); c != 0 {
		return c
	}
	if a.HeaderPath < b.HeaderPath {
		return -1
	}
	if a.HeaderPath > b.HeaderPath {
		return 1
	}
	return 0
}

// Less reports whether a is a stronger eviction candidate than b: the
// direct adapter Compare needs to plug into container/heap-based
// structures such as topqueue.BoundedTop.
func Less(a, b Entry) bool {
	return Compare(a, b) < 0
}

func effectiveExpiry(e Entry) time.Time {
	if e.Expiry.After(e.Modified) {
		return e.Expiry
	}
	return e.Modified
}

func effectiveAccess(e Entry) time.Time {
	if e.Accessed.After(e.Modified) {
		return e.Accessed
	}
	return e.Modified
}

func compareTime(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}

// AccessTimes extracts the modification time from os.FileInfo and returns
// it as both values; it does not read atime from FileInfo.Sys (callers
// should prefer the platform-specific stat helpers in internal/scanner,
// which read atime directly from the raw stat structure on Linux).
func AccessTimes(info os.FileInfo) (modified, accessed time.Time) {
	modified = info.ModTime()
	accessed = modified
	return modified, accessed
}
