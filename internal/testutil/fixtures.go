package testutil

import (
	"bufio"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yourusername/htcacheclean/internal/cacheformat"
)

// EntrySpec describes one cache entry to materialize on disk: a .header/
// .data pair, optionally backed by a .header.vary/ sidecar directory.
type EntrySpec struct {
	Stem         string
	Format       cacheformat.Format
	ExpiryMicros int64
	ModTime      time.Time
	AccessTime   time.Time
	BodySize     int64
}

// WriteHeader writes a binary header file at path matching the layout
// internal/cacheformat.ParseHeader expects: a format tag, then (for
// FormatVary) an 8-byte expiry, or (for FormatDisk) a fixed-size opaque
// block whose final 8 bytes are the expiry. Uses buffered I/O, matching
// the original fixture generator's style.
func WriteHeader(t *testing.T, path string, format cacheformat.Format, expiryMicros int64) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create header %s: %v", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	var tagBuf [4]byte
	binary.NativeEndian.PutUint32(tagBuf[:], uint32(format))
	if _, err := w.Write(tagBuf[:]); err != nil {
		t.Fatalf("write format tag: %v", err)
	}

	switch format {
	case cacheformat.FormatVary:
		var expBuf [8]byte
		binary.NativeEndian.PutUint64(expBuf[:], uint64(expiryMicros))
		if _, err := w.Write(expBuf[:]); err != nil {
			t.Fatalf("write vary expiry: %v", err)
		}
	case cacheformat.FormatDisk:
		const fixedSize = 4 + 2*8 + 16
		rest := make([]byte, fixedSize)
		binary.NativeEndian.PutUint64(rest[fixedSize-8:], uint64(expiryMicros))
		if _, err := w.Write(rest); err != nil {
			t.Fatalf("write disk header: %v", err)
		}
	default:
		t.Fatalf("WriteHeader: unsupported format %v", format)
	}

	if err := w.Flush(); err != nil {
		t.Fatalf("flush header %s: %v", path, err)
	}
}

// WriteEntry materializes one cache entry (header + data, and for
// FormatVary a sibling .header.vary/ directory) under dir, named from
// spec.Stem. Returns the header path.
func WriteEntry(t *testing.T, dir string, spec EntrySpec) string {
	t.Helper()

	headerPath := filepath.Join(dir, spec.Stem+".header")
	dataPath := filepath.Join(dir, spec.Stem+".data")

	WriteHeader(t, headerPath, spec.Format, spec.ExpiryMicros)
	writeRandomBody(t, dataPath, spec.BodySize)

	if spec.Format == cacheformat.FormatVary {
		varyDir := filepath.Join(dir, spec.Stem+".header.vary")
		if err := os.MkdirAll(varyDir, 0o755); err != nil {
			t.Fatalf("mkdir vary dir %s: %v", varyDir, err)
		}
	}

	mtime := spec.ModTime
	if mtime.IsZero() {
		mtime = time.Now()
	}
	atime := spec.AccessTime
	if atime.IsZero() {
		atime = mtime
	}
	if err := os.Chtimes(headerPath, atime, mtime); err != nil {
		t.Fatalf("chtimes %s: %v", headerPath, err)
	}
	if err := os.Chtimes(dataPath, atime, mtime); err != nil {
		t.Fatalf("chtimes %s: %v", dataPath, err)
	}

	return headerPath
}

// WriteTempFile creates a server-in-progress temp file (the "aptmp" +
// 6-character suffix convention mod_cache_disk uses while writing a new
// cache entry) with the given modification time.
func WriteTempFile(t *testing.T, dir string, mtime time.Time) string {
	t.Helper()

	suffix := randomSuffix(t, 6)
	path := filepath.Join(dir, "aptmp"+suffix)
	writeRandomBody(t, path, 16)
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("chtimes %s: %v", path, err)
	}
	return path
}

func writeRandomBody(t *testing.T, path string, size int64) {
	t.Helper()
	if size <= 0 {
		size = 16
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	content := make([]byte, size)
	if _, err := rand.Read(content); err != nil {
		t.Fatalf("generate random body: %v", err)
	}
	if _, err := w.Write(content); err != nil {
		t.Fatalf("write body %s: %v", path, err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("flush body %s: %v", path, err)
	}
}

const suffixAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func randomSuffix(t *testing.T, n int) string {
	t.Helper()
	raw := make([]byte, n)
	if _, err := rand.Read(raw); err != nil {
		t.Fatalf("generate random suffix: %v", err)
	}
	out := make([]byte, n)
	for i, b := range raw {
		out[i] = suffixAlphabet[int(b)%len(suffixAlphabet)]
	}
	return string(out)
}

// BuildShardedCache creates shardCount subdirectories under root, each
// populated with entriesPerShard FormatDisk entries whose modification
// times are spread backwards from now at dayStep intervals: the first entry
// of the first shard is dated now and each later entry is one dayStep
// older. Returns the created shard directory paths.
func BuildShardedCache(t *testing.T, root string, shardCount, entriesPerShard int, now time.Time, dayStep time.Duration) []string {
	t.Helper()

	shards := make([]string, shardCount)
	for s := 0; s < shardCount; s++ {
		shard := filepath.Join(root, fmt.Sprintf("%02x", s))
		if err := os.MkdirAll(shard, 0o755); err != nil {
			t.Fatalf("mkdir shard %s: %v", shard, err)
		}
		shards[s] = shard

		for e := 0; e < entriesPerShard; e++ {
			age := time.Duration(s*entriesPerShard+e) * dayStep
			WriteEntry(t, shard, EntrySpec{
				Stem:     fmt.Sprintf("entry%d", e),
				Format:   cacheformat.FormatDisk,
				ModTime:  now.Add(-age),
				BodySize: 64,
			})
		}
	}
	return shards
}
