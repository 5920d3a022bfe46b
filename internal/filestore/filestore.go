package filestore

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// ErrNotRegular is wrapped by NotFoundError when the path exists but is not a regular file.
var ErrNotRegular = errors.New("not a regular file")

// NotFoundError reports a path that is missing or is not a regular file.
type NotFoundError struct {
	Path string
	Err  error
}

func (e *NotFoundError) Error() string {
	if errors.Is(e.Err, ErrNotRegular) {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("file not found: %s", e.Path)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// Store abstracts whole-file reads and overwrites for testability.
type Store interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte) error
}

// OSStore implements Store on the local filesystem.
type OSStore struct {
	// Atomic writes to a temporary file in the same directory and renames it
	// over the target instead of truncating the target in place.
	Atomic bool
}

func NewOSStore(atomic bool) *OSStore {
	return &OSStore{Atomic: atomic}
}

func (s *OSStore) ReadFile(path string) ([]byte, error) {
	info, err := s.stat(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	buf.Grow(int(info.Size()))
	if _, err := buf.ReadFrom(f); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return buf.Bytes(), nil
}

// WriteFile replaces the content of an existing regular file, keeping its permissions.
func (s *OSStore) WriteFile(path string, data []byte) error {
	info, err := s.stat(path)
	if err != nil {
		return err
	}
	if s.Atomic {
		return writeAtomic(path, data, info.Mode().Perm())
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to open %s for writing: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

func (s *OSStore) stat(path string) (fs.FileInfo, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &NotFoundError{Path: path, Err: err}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, &NotFoundError{Path: path, Err: ErrNotRegular}
	}
	return info, nil
}

func writeAtomic(path string, data []byte, perm fs.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	// Removing after a successful rename fails harmlessly.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("failed to chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// MemStore implements Store for testing (no disk I/O).
type MemStore struct {
	mu     sync.Mutex
	files  map[string][]byte
	writes int
}

func NewMemStore() *MemStore {
	return &MemStore{files: make(map[string][]byte)}
}

// Put seeds a file without counting it as a write.
func (ms *MemStore) Put(path string, data []byte) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.files[path] = append([]byte(nil), data...)
}

// Get returns a copy of the stored content and whether the file exists.
func (ms *MemStore) Get(path string) ([]byte, bool) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	data, ok := ms.files[path]
	return append([]byte(nil), data...), ok
}

// Writes is the number of successful WriteFile calls so far.
func (ms *MemStore) Writes() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.writes
}

func (ms *MemStore) ReadFile(path string) ([]byte, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	data, ok := ms.files[path]
	if !ok {
		return nil, &NotFoundError{Path: path, Err: fs.ErrNotExist}
	}
	// Return a copy to avoid mutation
	return append([]byte(nil), data...), nil
}

func (ms *MemStore) WriteFile(path string, data []byte) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if _, ok := ms.files[path]; !ok {
		return &NotFoundError{Path: path, Err: fs.ErrNotExist}
	}
	ms.files[path] = append([]byte(nil), data...)
	ms.writes++
	return nil
}
