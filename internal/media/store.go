package media

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrFileNotFound is returned by Delete when the named file is absent.
var ErrFileNotFound = errors.New("image file not found")

// Store keeps product image files in a single flat directory.
type Store struct {
	root string
}

// NewStore creates a store rooted at dir. The directory is created lazily on
// the first Put, so a read-only deployment can open a store without write access.
func NewStore(dir string) *Store { return &Store{root: dir} }

// Put writes content under a generated name and returns that name.
// The name combines the supplied timestamp (nanosecond resolution) with the
// upload's base filename; a random suffix breaks the tie if the name is taken.
// The write goes through a temp file and a rename, so a half-written file is
// never visible under the final name.
func (s *Store) Put(now time.Time, originalName string, content []byte) (string, error) {
	base := filepath.Base(strings.TrimSpace(originalName))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "", fmt.Errorf("invalid original filename %q", originalName)
	}

	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return "", fmt.Errorf("create image dir: %w", err)
	}

	name := fmt.Sprintf("%d_%s", now.UnixNano(), base)
	if s.Exists(name) {
		name = fmt.Sprintf("%d_%s_%s", now.UnixNano(), uuid.NewString()[:8], base)
	}

	tmp, err := os.CreateTemp(s.root, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("write image %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, filepath.Join(s.root, name)); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("rename image %s: %w", name, err)
	}
	return name, nil
}

// Delete removes the named file. Returns ErrFileNotFound if it is absent.
func (s *Store) Delete(filename string) error {
	path, err := s.path(filename)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s: %w", filename, ErrFileNotFound)
		}
		return fmt.Errorf("remove image %s: %w", filename, err)
	}
	return nil
}

// Exists reports whether the named file is present. Pure lookup, no side effects.
func (s *Store) Exists(filename string) bool {
	path, err := s.path(filename)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// path resolves a stored filename, rejecting anything that is not a bare name.
func (s *Store) path(filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) || strings.Contains(filename, "..") {
		return "", fmt.Errorf("invalid stored filename %q", filename)
	}
	return filepath.Join(s.root, filename), nil
}
