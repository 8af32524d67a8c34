package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
)

// Memory is an in-memory FileStore backed by maps.
// It is safe for concurrent use and intended primarily for testing.
//
// Directories exist when created with Mkdir or when a file lives under them.
type Memory struct {
	mu    sync.RWMutex
	files map[string][]byte
	dirs  map[string]struct{}
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		files: make(map[string][]byte),
		dirs:  make(map[string]struct{}),
	}
}

// clean normalizes a store path. The root is "".
func clean(p string) string {
	p = strings.TrimPrefix(path.Clean("/"+p), "/")
	return p
}

// Mkdir creates the directory p and its parents.
func (m *Memory) Mkdir(p string) error {
	p = clean(p)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[p]; ok {
		return fmt.Errorf("storage: mkdir %s: %w", p, fs.ErrExist)
	}
	m.addDirsLocked(p)
	return nil
}

// addDirsLocked records p and every ancestor of p as a directory.
func (m *Memory) addDirsLocked(p string) {
	for p != "" && p != "." {
		m.dirs[p] = struct{}{}
		p = path.Dir(p)
	}
}

func (m *Memory) existsLocked(p string) Existence {
	if p == "" {
		return Directory
	}
	if _, ok := m.files[p]; ok {
		return File
	}
	if _, ok := m.dirs[p]; ok {
		return Directory
	}
	prefix := p + "/"
	for name := range m.files {
		if strings.HasPrefix(name, prefix) {
			return Directory
		}
	}
	return Absent
}

// putLocked stores data at p after checking that p is not a directory and
// that none of its parents is a file.
func (m *Memory) putLocked(p string, data []byte) error {
	if m.existsLocked(p) == Directory {
		return fmt.Errorf("storage: write %s: %w", p, ErrIsDirectory)
	}
	for dir := path.Dir(p); dir != "." && dir != ""; dir = path.Dir(dir) {
		if _, ok := m.files[dir]; ok {
			return fmt.Errorf("storage: write %s: parent %s is a file", p, dir)
		}
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	m.files[p] = cp
	if dir := path.Dir(p); dir != "." {
		m.addDirsLocked(dir)
	}
	return nil
}

// Read returns a reader over a copy of the file's content.
func (m *Memory) Read(_ context.Context, p string) (io.ReadCloser, error) {
	p = clean(p)
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[p]
	if !ok {
		if m.existsLocked(p) == Directory {
			return nil, fmt.Errorf("storage: read %s: %w", p, ErrIsDirectory)
		}
		return nil, fmt.Errorf("storage: read %s: %w", p, fs.ErrNotExist)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return io.NopCloser(bytes.NewReader(cp)), nil
}

// Write buffers written bytes and stores them when the writer is closed.
func (m *Memory) Write(_ context.Context, p string) (io.WriteCloser, error) {
	p = clean(p)
	m.mu.RLock()
	isDir := m.existsLocked(p) == Directory
	m.mu.RUnlock()
	if isDir {
		return nil, fmt.Errorf("storage: write %s: %w", p, ErrIsDirectory)
	}
	return &memoryWriter{m: m, path: p}, nil
}

// WriteAtomic stores data at p in one step.
func (m *Memory) WriteAtomic(_ context.Context, p string, data []byte) error {
	p = clean(p)
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.putLocked(p, data)
}

// Delete removes the file at p. Missing files are not an error.
func (m *Memory) Delete(_ context.Context, p string) error {
	p = clean(p)
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.existsLocked(p) {
	case Directory:
		return fmt.Errorf("storage: delete %s: %w", p, ErrIsDirectory)
	case File:
		delete(m.files, p)
	}
	return nil
}

// Exists reports whether p is absent, a file, or a directory.
func (m *Memory) Exists(_ context.Context, p string) (Existence, error) {
	p = clean(p)
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.existsLocked(p), nil
}

// List returns the sorted names directly inside dir. Directories are
// implied by the files under them, so an absent dir lists as empty.
func (m *Memory) List(_ context.Context, dir string) ([]string, error) {
	dir = clean(dir)
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.existsLocked(dir) == File {
		return nil, fmt.Errorf("storage: list %s: not a directory", dir)
	}
	prefix := ""
	if dir != "" {
		prefix = dir + "/"
	}
	seen := make(map[string]struct{})
	collect := func(name string) {
		if !strings.HasPrefix(name, prefix) {
			return
		}
		rest := name[len(prefix):]
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			rest = rest[:i]
		}
		if rest != "" {
			seen[rest] = struct{}{}
		}
	}
	for name := range m.files {
		collect(name)
	}
	for name := range m.dirs {
		collect(name)
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Rename moves the file at from to to.
func (m *Memory) Rename(_ context.Context, from, to string) error {
	from, to = clean(from), clean(to)
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[from]
	if !ok {
		return fmt.Errorf("storage: rename %s: %w", from, fs.ErrNotExist)
	}
	if err := m.putLocked(to, data); err != nil {
		return err
	}
	if from != to {
		delete(m.files, from)
	}
	return nil
}

// memoryWriter collects bytes for a Memory file until Close.
type memoryWriter struct {
	m      *Memory
	path   string
	buf    bytes.Buffer
	closed bool
}

func (w *memoryWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, fs.ErrClosed
	}
	return w.buf.Write(p)
}

func (w *memoryWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	w.m.mu.Lock()
	defer w.m.mu.Unlock()
	return w.m.putLocked(w.path, w.buf.Bytes())
}

// Compile-time interface checks.
var (
	_ FileStore    = (*Memory)(nil)
	_ AtomicWriter = (*Memory)(nil)
)
