package safety

import (
	"os"
	"path/filepath"
	"testing"

	"pgregory.net/rapid"
)

func TestValidateCacheRootAcceptsWritableDir(t *testing.T) {
	tmpDir := t.TempDir()

	got, err := ValidateCacheRoot(tmpDir)
	if err != nil {
		t.Fatalf("ValidateCacheRoot(%s): %v", tmpDir, err)
	}
	want, _ := filepath.Abs(tmpDir)
	if got != want {
		t.Fatalf("ValidateCacheRoot returned %q, want %q", got, want)
	}
}

func TestValidateCacheRootRejectsProtectedPath(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		if len(ProtectedPaths) == 0 {
			rt.Skip("no protected paths defined")
		}
		idx := rapid.IntRange(0, len(ProtectedPaths)-1).Draw(rt, "protectedIdx")

		tmpDir := t.TempDir()
		original := ProtectedPaths
		ProtectedPaths = append([]string{tmpDir}, ProtectedPaths...)
		defer func() { ProtectedPaths = original }()
		_ = idx

		if _, err := ValidateCacheRoot(tmpDir); err == nil {
			rt.Fatalf("expected protected path %s to be rejected", tmpDir)
		}
	})
}

func TestValidateCacheRootRejectsDescendantOfProtectedPath(t *testing.T) {
	tmpDir := t.TempDir()
	subDir := filepath.Join(tmpDir, "subdir")
	if err := os.MkdirAll(subDir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	original := ProtectedPaths
	ProtectedPaths = append([]string{tmpDir}, ProtectedPaths...)
	defer func() { ProtectedPaths = original }()

	if _, err := ValidateCacheRoot(subDir); err == nil {
		t.Fatalf("expected subdirectory %s of protected path %s to be rejected", subDir, tmpDir)
	}
}

func TestValidateCacheRootRejectsAncestorOfProtectedPath(t *testing.T) {
	tmpDir := t.TempDir()
	protectedSubDir := filepath.Join(tmpDir, "protected")
	if err := os.MkdirAll(protectedSubDir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	original := ProtectedPaths
	ProtectedPaths = append([]string{protectedSubDir}, ProtectedPaths...)
	defer func() { ProtectedPaths = original }()

	if _, err := ValidateCacheRoot(tmpDir); err == nil {
		t.Fatalf("expected ancestor %s of protected path %s to be rejected", tmpDir, protectedSubDir)
	}
}

func TestValidateCacheRootRejectsFilesystemRoot(t *testing.T) {
	if _, err := ValidateCacheRoot("/"); err == nil {
		t.Fatal("expected / to be rejected as a cache root")
	}
}

func TestValidateCacheRootRejectsNonExistentPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist")
	if _, err := ValidateCacheRoot(path); err == nil {
		t.Fatalf("expected non-existent path %s to be rejected", path)
	}
}

func TestValidateCacheRootRejectsRegularFile(t *testing.T) {
	tmpDir := t.TempDir()
	file := filepath.Join(tmpDir, "notadir")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := ValidateCacheRoot(file); err == nil {
		t.Fatalf("expected regular file %s to be rejected", file)
	}
}

func TestValidateCacheRootResolvesRelativePath(t *testing.T) {
	tmpDir := t.TempDir()
	subDir := filepath.Join(tmpDir, "cache")
	if err := os.MkdirAll(subDir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	defer os.Chdir(originalWd)

	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}

	got, err := ValidateCacheRoot("cache")
	if err != nil {
		t.Fatalf("ValidateCacheRoot(cache): %v", err)
	}
	want, _ := filepath.Abs(subDir)
	if got != want {
		t.Fatalf("ValidateCacheRoot returned %q, want %q", got, want)
	}
}

func TestValidateCacheRootNormalizesDotSegments(t *testing.T) {
	tmpDir := t.TempDir()
	subDir := filepath.Join(tmpDir, "subdir")
	if err := os.MkdirAll(subDir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	dotted := filepath.Join(tmpDir, ".", "subdir", "..", "subdir")
	got, err := ValidateCacheRoot(dotted)
	if err != nil {
		t.Fatalf("ValidateCacheRoot(%s): %v", dotted, err)
	}
	want, _ := filepath.Abs(subDir)
	if got != want {
		t.Fatalf("ValidateCacheRoot returned %q, want %q", got, want)
	}
}

func TestIsAncestorOf(t *testing.T) {
	cases := []struct {
		ancestor, descendant string
		want                 bool
	}{
		{"/a/b", "/a/b/c", true},
		{"/a/b", "/a/b", false},
		{"/a/b", "/a/bc", false},
		{"/a/bc", "/a/b", false},
	}
	for _, tc := range cases {
		if got := isAncestorOf(tc.ancestor, tc.descendant); got != tc.want {
			t.Errorf("isAncestorOf(%q, %q) = %v, want %v", tc.ancestor, tc.descendant, got, tc.want)
		}
	}
}

func TestPathsEqual(t *testing.T) {
	if !pathsEqual("/a/b/", "/a/b") {
		t.Error("expected /a/b/ and /a/b to be equal after cleaning")
	}
	if pathsEqual("/a/b", "/a/c") {
		t.Error("expected /a/b and /a/c to differ")
	}
}
