// file: pkg/cache/cache_test.go

package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestGetReparsesOnMtimeChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.dsk")
	if err := os.WriteFile(path, []byte("MV - CPCEMU Disk-File\r\n"+string(make([]byte, 300))), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	c := New()
	first := c.Get(path)
	second := c.Get(path)
	if first != second {
		t.Errorf("expected identical cached entry on unchanged mtime")
	}

	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatalf("chtimes failed: %v", err)
	}

	third := c.Get(path)
	if third == first {
		t.Errorf("expected a fresh entry after mtime change")
	}
}

func TestGetCachesParseError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.dsk")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	c := New()
	e := c.Get(path)
	if e.ParseErr == nil {
		t.Fatal("expected a parse error for an empty file")
	}

	e2 := c.Get(path)
	if e2.ParseErr == nil {
		t.Fatal("expected the cached parse error to persist")
	}
	if e2 != e {
		t.Errorf("expected the cached error entry to be returned without reparsing")
	}
}

func TestInvalidateAllClearsEverything(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.dsk")
	os.WriteFile(path, []byte("MV - CPCEMU Disk-File\r\n"+string(make([]byte, 300))), 0644)

	c := New()
	c.Get(path)
	c.InvalidateAll()
	if len(c.entries) != 0 {
		t.Errorf("expected no entries after InvalidateAll, got %d", len(c.entries))
	}
}
