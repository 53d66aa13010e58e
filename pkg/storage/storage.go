package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Store persists uploaded files under opaque names.
type Store interface {
	// Save writes the contents of r and returns the stored name. The stored
	// name is derived from originalName but sanitized and timestamp-prefixed
	// to avoid collisions and path tricks.
	Save(r io.Reader, originalName string) (string, error)
	// Remove deletes a previously stored file. Removing a name that no
	// longer exists is a no-op.
	Remove(storedName string) error
}

// FilesystemStore implements Store on a local directory.
type FilesystemStore struct {
	dir string
}

// NewFilesystemStore creates the directory if needed and returns a store
// rooted at it.
func NewFilesystemStore(dir string) (*FilesystemStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}
	return &FilesystemStore{dir: dir}, nil
}

func (s *FilesystemStore) Save(r io.Reader, originalName string) (string, error) {
	name := time.Now().Format("20060102_150405") + "_" + sanitizeFilename(originalName)

	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return name, nil
}

func (s *FilesystemStore) Remove(storedName string) error {
	if storedName == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, filepath.Base(storedName)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// sanitizeFilename strips directories from a client-supplied filename and
// replaces anything outside a conservative character set.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 || b.String() == "." || b.String() == ".." {
		return "file"
	}
	return b.String()
}
