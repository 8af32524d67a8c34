// Package storage defines the FileStore interface the entity layer uses to
// reach its directory. It abstracts the backend so that a repository can sit
// on local disk, an embedded BadgerDB, an S3 bucket, or an in-memory map
// without changing application code.
//
// Paths are forward-slash separated and relative to the store root. A store
// holds files and directories; directories may be explicit (Local, Memory)
// or implied by the paths of the files under them (Badger, S3).
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"

	"github.com/google/uuid"
)

// Existence classifies what, if anything, lives at a path.
type Existence int

const (
	// Absent means nothing exists at the path.
	Absent Existence = iota
	// File means the path names a regular file.
	File
	// Directory means the path names a directory.
	Directory
)

func (e Existence) String() string {
	switch e {
	case Absent:
		return "absent"
	case File:
		return "file"
	case Directory:
		return "directory"
	default:
		return fmt.Sprintf("Existence(%d)", int(e))
	}
}

// FileStore is a minimal interface for file-oriented storage.
//
// Implementations must be safe for concurrent use.
type FileStore interface {
	// Read opens the named file for reading.
	// The caller must close the returned ReadCloser when done.
	// If the file does not exist, an error wrapping fs.ErrNotExist is returned.
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// Write opens the named file for writing.
	// If the file already exists it is truncated.
	// Parent directories are created automatically.
	// The caller must close the returned WriteCloser to flush data.
	Write(ctx context.Context, path string) (io.WriteCloser, error)

	// Delete removes the named file.
	// If the file does not exist, Delete returns nil (idempotent).
	Delete(ctx context.Context, path string) error

	// Exists reports whether the path is absent, a file, or a directory.
	// An error is returned only when the backend cannot tell.
	Exists(ctx context.Context, path string) (Existence, error)

	// List returns the sorted names of the entries directly inside dir,
	// files and subdirectories alike. An empty dir means the store root.
	List(ctx context.Context, dir string) ([]string, error)

	// Rename moves a file, replacing whatever file is at the destination.
	Rename(ctx context.Context, from, to string) error
}

// AtomicWriter is implemented by stores that can replace a file's content
// in one step, so readers observe either the old or the new content.
type AtomicWriter interface {
	WriteAtomic(ctx context.Context, path string, data []byte) error
}

// ReadFile reads the whole named file.
func ReadFile(ctx context.Context, fs FileStore, name string) ([]byte, error) {
	r, err := fs.Read(ctx, name)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// WriteFile writes data to the named file without any atomicity guarantee.
func WriteFile(ctx context.Context, fs FileStore, name string, data []byte) error {
	w, err := fs.Write(ctx, name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// WriteAtomic replaces the named file with data.
//
// Stores implementing AtomicWriter do this natively. For other stores the
// data goes to a uniquely named temporary file in the same directory, which
// is then renamed over the destination. The temporary file is removed if
// any step fails.
func WriteAtomic(ctx context.Context, fs FileStore, name string, data []byte) error {
	if aw, ok := fs.(AtomicWriter); ok {
		return aw.WriteAtomic(ctx, name, data)
	}
	tmp := TempName(name)
	if err := WriteFile(ctx, fs, tmp, data); err != nil {
		fs.Delete(ctx, tmp)
		return fmt.Errorf("storage: write temp for %s: %w", name, err)
	}
	if err := fs.Rename(ctx, tmp, name); err != nil {
		fs.Delete(ctx, tmp)
		return fmt.Errorf("storage: rename into %s: %w", name, err)
	}
	return nil
}

// TempName returns a hidden sibling path for staging writes to name.
func TempName(name string) string {
	dir, base := path.Split(name)
	return dir + "." + base + "." + uuid.New().String() + ".tmp"
}

// Join joins a directory and a file name into a store path. Unlike
// path.Join it never cleans the name, so distinct names stay distinct.
func Join(dir, name string) string {
	if dir == "" || dir == "." {
		return name
	}
	if dir[len(dir)-1] == '/' {
		return dir + name
	}
	return dir + "/" + name
}
