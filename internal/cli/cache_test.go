package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCacheDirXDG(t *testing.T) {
	custom := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", custom)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if expected := filepath.Join(custom, appName); dir != expected {
		t.Errorf("cacheDir() = %q, want %q", dir, expected)
	}
}

func TestClearDir(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"ab/cdef", "ab/0123", "ff/9876"} {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("payload"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	count, size, err := clearDir(dir)
	if err != nil {
		t.Fatalf("clearDir: %v", err)
	}
	if count != 3 || size != 21 {
		t.Errorf("clearDir = %d files, %d bytes; want 3, 21", count, size)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("directory not empty after clear: %v", entries)
	}

	count, _, err = clearDir(filepath.Join(dir, "missing"))
	if err != nil || count != 0 {
		t.Errorf("clearDir(missing) = %d, %v", count, err)
	}
}
