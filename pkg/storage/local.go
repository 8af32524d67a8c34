package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrIsDirectory is returned when a file operation targets a directory.
var ErrIsDirectory = errors.New("storage: is a directory")

// Local implements FileStore on top of the local filesystem.
// All paths are resolved relative to the configured root directory.
type Local struct {
	root string
}

// NewLocal creates a Local store rooted at dir.
// The directory is created (with parents) if it does not already exist.
func NewLocal(dir string) (*Local, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	return &Local{root: abs}, nil
}

// Root returns the absolute directory the store is rooted at.
func (l *Local) Root() string {
	return l.root
}

// resolve turns a storage path into an absolute filesystem path.
func (l *Local) resolve(path string) string {
	return filepath.Join(l.root, filepath.FromSlash(path))
}

// Read opens the named file for reading.
func (l *Local) Read(_ context.Context, path string) (io.ReadCloser, error) {
	full := l.resolve(path)
	f, err := os.Open(full)
	if err != nil {
		return nil, err
	}
	if info, err := f.Stat(); err == nil && info.IsDir() {
		f.Close()
		return nil, fmt.Errorf("storage: read %s: %w", path, ErrIsDirectory)
	}
	return f, nil
}

// Write opens the named file for writing, creating parent directories as
// needed. If the file already exists it is truncated.
func (l *Local) Write(_ context.Context, path string) (io.WriteCloser, error) {
	full := l.resolve(path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return nil, err
	}
	f, err := os.Create(full)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// WriteAtomic stages data in a temporary file next to path, syncs it, and
// renames it into place.
func (l *Local) WriteAtomic(_ context.Context, path string, data []byte) (err error) {
	full := l.resolve(path)
	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(full)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()
	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Chmod(0o644); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), full)
}

// Delete removes the named file. If the file does not exist, Delete
// returns nil (idempotent). Directories are never removed.
func (l *Local) Delete(_ context.Context, path string) error {
	full := l.resolve(path)
	info, err := os.Lstat(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("storage: delete %s: %w", path, ErrIsDirectory)
	}
	err = os.Remove(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Exists reports whether the path is absent, a file, or a directory.
func (l *Local) Exists(_ context.Context, path string) (Existence, error) {
	info, err := os.Stat(l.resolve(path))
	if err == nil {
		if info.IsDir() {
			return Directory, nil
		}
		return File, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return Absent, nil
	}
	return Absent, err
}

// List returns the names of the entries in dir.
func (l *Local) List(_ context.Context, dir string) ([]string, error) {
	entries, err := os.ReadDir(l.resolve(dir))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

// Rename moves a file within the store.
func (l *Local) Rename(_ context.Context, from, to string) error {
	dst := l.resolve(to)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return os.Rename(l.resolve(from), dst)
}

// Compile-time interface checks.
var (
	_ FileStore    = (*Local)(nil)
	_ AtomicWriter = (*Local)(nil)
)
