package media_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"beststore/internal/media"
)

func newStore(t *testing.T) (*media.Store, string) {
	t.Helper()
	dir := t.TempDir()
	return media.NewStore(dir), dir
}

func TestStorePutWritesContent(t *testing.T) {
	s, dir := newStore(t)

	content := []byte("0123456789")
	name, err := s.Put(time.Now().UTC(), "photo.png", content)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(name, "_photo.png") {
		t.Fatalf("stored name %q does not end in _photo.png", name)
	}
	if !s.Exists(name) {
		t.Fatalf("stored file %q not found", name)
	}

	got, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Fatalf("content mismatch: got %q", got)
	}
}

func TestStorePutLeavesNoTempFiles(t *testing.T) {
	s, dir := newStore(t)

	if _, err := s.Put(time.Now().UTC(), "photo.png", []byte("x")); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".upload-") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}

func TestStorePutDistinctNamesForSameOriginal(t *testing.T) {
	s, _ := newStore(t)

	// Same timestamp forces the tie-breaker path.
	now := time.Now().UTC()
	a, err := s.Put(now, "photo.png", []byte("first"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := s.Put(now, "photo.png", []byte("second"))
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatalf("colliding stored names: %q", a)
	}
	if !s.Exists(a) || !s.Exists(b) {
		t.Fatalf("both files should exist: %q %q", a, b)
	}
}

func TestStorePutStripsDirectories(t *testing.T) {
	s, _ := newStore(t)

	name, err := s.Put(time.Now().UTC(), "../../etc/passwd.png", []byte("x"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(name, "/") || strings.Contains(name, "..") {
		t.Fatalf("stored name %q should be a bare filename", name)
	}
}

func TestStoreDelete(t *testing.T) {
	s, _ := newStore(t)

	name, err := s.Put(time.Now().UTC(), "photo.png", []byte("x"))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(name); err != nil {
		t.Fatal(err)
	}
	if s.Exists(name) {
		t.Fatalf("file %q should be gone", name)
	}
}

func TestStoreDeleteMissing(t *testing.T) {
	s, _ := newStore(t)

	err := s.Delete("1234_photo.png")
	if !errors.Is(err, media.ErrFileNotFound) {
		t.Fatalf("want ErrFileNotFound, got %v", err)
	}
}

func TestStoreRejectsTraversal(t *testing.T) {
	s, _ := newStore(t)

	if err := s.Delete("../secret"); err == nil || errors.Is(err, media.ErrFileNotFound) {
		t.Fatalf("traversal delete should fail with a validation error, got %v", err)
	}
	if s.Exists("../secret") {
		t.Fatal("traversal exists should report false")
	}
}
