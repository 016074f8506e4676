// Package scanner walks a cache tree and classifies every entry it finds:
// stale apache temp files, orphaned data files, live cache entries (handed
// to an EntrySink for priority-based eviction), and directories that have
// become empty and can be reclaimed outright.
package scanner

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/htcacheclean/internal/cacheentry"
	"github.com/yourusername/htcacheclean/internal/cacheformat"
	"github.com/yourusername/htcacheclean/internal/logging"
	"github.com/yourusername/htcacheclean/internal/stats"
)

const (
	headerSuffix = ".header"
	dataSuffix   = ".data"
	varyDirExt   = ".header.vary"

	tempFilePrefix = "aptmp"
	tempFileSuffix = "XXXXXX" // mktemp-style placeholder; real names have 6 random chars here

	tempFileAge = 600 * time.Second
	orphanAge   = 120 * time.Second
	emptyDirAge = 300 * time.Second
)

// EntrySink receives cache entries discovered during a scan, for the
// caller to rank and selectively evict.
type EntrySink interface {
	Push(cacheentry.Entry)
}

// ScanFolder walks dir (non-recursively at this level; it recurses into
// subdirectories itself) and:
//   - deletes apache temp files older than tempFileAge
//   - deletes orphaned .data files (no sibling .header) older than orphanAge
//   - sends live cache entries (.header files, paired with their .data and,
//     for Vary entries, .header.vary subdirectory) to sink for the caller to
//     rank
//   - recurses into subdirectories, then reclaims them if they end up empty
//     and are older than emptyDirAge
//
// inVary is true while scanning inside a *.header.vary directory, where
// Vary-negotiated sub-entries live. desperate disables the "leave Vary
// parents with live children alone" protection, used when usage is so high
// that nothing is spared.
func ScanFolder(dir string, inVary, desperate bool, now time.Time, sink EntrySink, local *stats.Stats) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	knownHeaders := make(map[string]struct{}, len(entries))
	for _, de := range entries {
		if !de.IsDir() && strings.HasSuffix(de.Name(), headerSuffix) {
			knownHeaders[strings.TrimSuffix(de.Name(), headerSuffix)] = struct{}{}
		}
	}

	for _, de := range entries {
		name := de.Name()
		full := filepath.Join(dir, name)

		switch {
		case de.IsDir():
			childInVary := inVary || strings.HasSuffix(name, varyDirExt)
			if err := ScanFolder(full, childInVary, desperate, now, sink, local); err != nil {
				logging.Warn("scan failed", zap.String("path", full), zap.Error(err))
			}
			reclaimIfEmpty(full, now, local)

		case isTempFile(name):
			deleteFileIfNotRecent(full, now, tempFileAge, local)

		case strings.HasSuffix(name, headerSuffix):
			scanHeaderFile(full, desperate, sink, local)

		case strings.HasSuffix(name, dataSuffix):
			stem := strings.TrimSuffix(name, dataSuffix)
			if _, ok := knownHeaders[stem]; !ok {
				deleteFileIfNotRecent(full, now, orphanAge, local)
			}
		}
	}

	if !inVary {
		runtime.Gosched()
	}
	return nil
}

// ScanRoot sweeps the cache root for stale apache temp files, the one
// artifact that can legitimately sit directly at the top level (mod_cache
// writes a tempfile there before linking it into the hashed directory
// structure). It returns the root's subdirectories so the caller can
// dispatch them to parallel ScanFolder workers.
func ScanRoot(root string, now time.Time, local *stats.Stats) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	var folders []string
	for _, de := range entries {
		name := de.Name()
		full := filepath.Join(root, name)

		if de.IsDir() {
			folders = append(folders, full)
			continue
		}
		if isTempFile(name) {
			deleteFileIfNotRecent(full, now, tempFileAge, local)
		}
	}

	return folders, nil
}

func scanHeaderFile(headerPath string, desperate bool, sink EntrySink, local *stats.Stats) {
	f, err := cacheformat.OpenHeaderFile(headerPath)
	if err != nil {
		logging.FileWarning(headerPath, "cannot open header: "+err.Error())
		local.Count(err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		logging.FileWarning(headerPath, "cannot stat header: "+err.Error())
		local.Count(err)
		return
	}

	hdr, err := cacheformat.ParseHeader(f)
	if err != nil {
		logging.FileWarning(headerPath, "cannot parse header: "+err.Error())
		local.Count(err)
		return
	}

	modified, accessed := statTimes(info)
	entry := cacheentry.New(headerPath, hdr.Format, hdr.Expiry, modified, accessed)

	if hdr.Format == cacheformat.FormatVary {
		// Vary-negotiated entries keep their response body only in the
		// per-variant headers under the .header.vary directory; the top
		// .data file is always orphaned and can be reclaimed immediately.
		deleteSiblingData(entry.DataPath(), local)
		if !desperate && varyDirHasChildren(entry.VaryPath()) {
			return // protected: children still depend on this vary header
		}
	}

	sink.Push(entry)
}

func deleteSiblingData(path string, local *stats.Stats) {
	err := os.Remove(path)
	local.Count(nilIfNotExist(err))
}

func varyDirHasChildren(varyDir string) bool {
	entries, err := os.ReadDir(varyDir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if e.IsDir() {
			return true
		}
	}
	return false
}

func isTempFile(name string) bool {
	return strings.HasPrefix(name, tempFilePrefix) && len(name) == len(tempFilePrefix)+len(tempFileSuffix)
}

func deleteFileIfNotRecent(path string, now time.Time, age time.Duration, local *stats.Stats) {
	info, err := os.Lstat(path)
	if err != nil {
		return
	}
	modified, accessed := statTimes(info)
	if now.Sub(modified) < age || now.Sub(accessed) < age {
		return
	}
	err = os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		logging.FileError(path, err)
	}
	local.Count(nilIfNotExist(err))
}

func reclaimIfEmpty(dir string, now time.Time, local *stats.Stats) {
	if hasMoreThanTwoLinks(dir) {
		return // nlink>2 implies live subdirectories; skip the readdir round trip
	}

	info, err := os.Lstat(dir)
	if err != nil {
		return
	}
	modified, accessed := statTimes(info)
	if now.Sub(modified) < emptyDirAge || now.Sub(accessed) < emptyDirAge {
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) > 0 {
		return
	}

	err = os.Remove(dir)
	if isNotEmpty(err) {
		return // lost a race with a concurrent writer; not a failure
	}
	if err != nil && !os.IsNotExist(err) {
		logging.FileError(dir, err)
	}
	local.CountFolder(nilIfNotExist(err))
}

func nilIfNotExist(err error) error {
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
