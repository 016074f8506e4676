// Package safety validates a configured cache root before an eviction pass
// is allowed to touch it, to prevent a misconfigured path from pointing the
// janitor at a system-critical directory.
package safety

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/yourusername/htcacheclean/internal/logging"
)

// ProtectedPaths lists directories that must never be treated as a cache
// root, because an eviction pass walking them could reclaim files the
// operating system depends on.
var ProtectedPaths = []string{
	"/bin",
	"/sbin",
	"/usr",
	"/lib",
	"/lib64",
	"/etc",
	"/boot",
	"/sys",
	"/proc",
	"/dev",
	"/home",
	"/root",
}

// ValidateCacheRoot checks that path is safe to use as a cache root. It
// resolves the path to absolute form and verifies:
//   - the path exists and is a directory
//   - it is not a protected system directory, nor an ancestor of one
//   - the process can write to it (required to delete entries within it)
//
// Returns the resolved absolute path on success.
func ValidateCacheRoot(path string) (string, error) {
	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("safety: cannot resolve absolute path for %q: %w", path, err)
	}

	logging.Debug("validating cache root", zap.String("path", absPath))

	info, err := os.Stat(absPath)
	if err != nil {
		return "", fmt.Errorf("safety: cache root %q: %w", absPath, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("safety: cache root %q is not a directory", absPath)
	}

	if absPath == "/" {
		return "", fmt.Errorf("safety: refusing to use filesystem root as cache root")
	}

	for _, protected := range ProtectedPaths {
		if pathsEqual(absPath, protected) {
			return "", fmt.Errorf("safety: refusing to use protected system directory %q as cache root", protected)
		}
		if isAncestorOf(absPath, protected) {
			return "", fmt.Errorf("safety: refusing to use %q as cache root: it contains protected directory %q", absPath, protected)
		}
		if isAncestorOf(protected, absPath) {
			return "", fmt.Errorf("safety: refusing to use %q as cache root: it is inside protected directory %q", absPath, protected)
		}
	}

	if !hasWritePermission(absPath) {
		return "", fmt.Errorf("safety: cache root %q is not writable", absPath)
	}

	return absPath, nil
}

func pathsEqual(a, b string) bool {
	return filepath.Clean(a) == filepath.Clean(b)
}

// isAncestorOf reports whether ancestor is a directory that contains
// descendant, i.e. cleaning ancestor would recurse into descendant.
func isAncestorOf(ancestor, descendant string) bool {
	ancestor = filepath.Clean(ancestor)
	descendant = filepath.Clean(descendant)
	if ancestor == descendant {
		return false
	}
	prefix := ancestor
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(descendant, prefix)
}

func hasWritePermission(dir string) bool {
	probe := filepath.Join(dir, fmt.Sprintf(".htcacheclean-write-test-%d", os.Getpid()))
	f, err := os.Create(probe)
	if err != nil {
		return false
	}
	f.Close()
	os.Remove(probe)
	return true
}
