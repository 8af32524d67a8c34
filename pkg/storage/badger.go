package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"

	badger "github.com/dgraph-io/badger/v4"
)

// Badger is a FileStore backed by BadgerDB v4.
//
// Each file is one key holding the file's full content. Directories are not
// stored; a directory exists while at least one file lives under it. Every
// write commits in a single transaction, so readers never observe a partly
// written file.
type Badger struct {
	db *badger.DB
}

// BadgerOptions configures the BadgerDB store.
type BadgerOptions struct {
	// Dir is the directory for BadgerDB data files.
	// Required unless InMemory is set.
	Dir string

	// InMemory runs BadgerDB in memory-only mode (no disk persistence).
	// Useful for testing with a real badger engine.
	InMemory bool

	// Logger sets the badger logger. If nil, errors and warnings go to
	// slog.Default().
	Logger badger.Logger
}

// NewBadger opens a BadgerDB-backed FileStore.
func NewBadger(bopts BadgerOptions) (*Badger, error) {
	if !bopts.InMemory && bopts.Dir == "" {
		return nil, errors.New("storage: BadgerOptions.Dir is required for on-disk mode")
	}
	dbOpts := badger.DefaultOptions(bopts.Dir)
	if bopts.InMemory {
		dbOpts = dbOpts.WithDir("").WithValueDir("").WithInMemory(true)
	}
	if bopts.Logger != nil {
		dbOpts = dbOpts.WithLogger(bopts.Logger)
	} else {
		dbOpts = dbOpts.WithLogger(slogLogger{})
	}
	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, err
	}
	return &Badger{db: db}, nil
}

// Close releases the underlying database.
func (b *Badger) Close() error {
	return b.db.Close()
}

// existsTxn classifies p inside a read transaction.
func existsTxn(txn *badger.Txn, p string) (Existence, error) {
	if p == "" {
		return Directory, nil
	}
	_, err := txn.Get([]byte(p))
	if err == nil {
		return File, nil
	}
	if !errors.Is(err, badger.ErrKeyNotFound) {
		return Absent, err
	}
	prefix := []byte(p + "/")
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()
	it.Seek(prefix)
	if it.ValidForPrefix(prefix) {
		return Directory, nil
	}
	return Absent, nil
}

// Read returns the content stored for p.
func (b *Badger) Read(_ context.Context, p string) (io.ReadCloser, error) {
	p = clean(p)
	var val []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(p))
		if errors.Is(err, badger.ErrKeyNotFound) {
			if kind, _ := existsTxn(txn, p); kind == Directory {
				return ErrIsDirectory
			}
			return fs.ErrNotExist
		}
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", p, err)
	}
	return io.NopCloser(bytes.NewReader(val)), nil
}

// Write buffers the written bytes and commits them when the writer is closed.
func (b *Badger) Write(_ context.Context, p string) (io.WriteCloser, error) {
	return &badgerWriter{b: b, path: clean(p)}, nil
}

// WriteAtomic stores data at p in one transaction.
func (b *Badger) WriteAtomic(_ context.Context, p string, data []byte) error {
	p = clean(p)
	err := b.db.Update(func(txn *badger.Txn) error {
		return putTxn(txn, p, data)
	})
	if err != nil {
		return fmt.Errorf("storage: write %s: %w", p, err)
	}
	return nil
}

func putTxn(txn *badger.Txn, p string, data []byte) error {
	kind, err := existsTxn(txn, p)
	if err != nil {
		return err
	}
	if kind == Directory {
		return ErrIsDirectory
	}
	for dir := path.Dir(p); dir != "." && dir != ""; dir = path.Dir(dir) {
		_, err := txn.Get([]byte(dir))
		if err == nil {
			return fmt.Errorf("parent %s is a file", dir)
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
	}
	return txn.Set([]byte(p), data)
}

// Delete removes the key for p. Missing files are not an error.
func (b *Badger) Delete(_ context.Context, p string) error {
	p = clean(p)
	err := b.db.Update(func(txn *badger.Txn) error {
		kind, err := existsTxn(txn, p)
		if err != nil {
			return err
		}
		switch kind {
		case Directory:
			return ErrIsDirectory
		case File:
			return txn.Delete([]byte(p))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("storage: delete %s: %w", p, err)
	}
	return nil
}

// Exists reports whether p is absent, a file, or a directory.
func (b *Badger) Exists(_ context.Context, p string) (Existence, error) {
	p = clean(p)
	var kind Existence
	err := b.db.View(func(txn *badger.Txn) error {
		var err error
		kind, err = existsTxn(txn, p)
		return err
	})
	return kind, err
}

// List returns the sorted names directly inside dir. Directories only exist
// as key prefixes, so an absent dir lists as empty.
func (b *Badger) List(_ context.Context, dir string) ([]string, error) {
	dir = clean(dir)
	var prefix []byte
	if dir != "" {
		prefix = []byte(dir + "/")
	}
	seen := make(map[string]struct{})
	err := b.db.View(func(txn *badger.Txn) error {
		if dir != "" {
			kind, err := existsTxn(txn, dir)
			if err != nil {
				return err
			}
			if kind == File {
				return errors.New("not a directory")
			}
		}
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			rest := string(it.Item().Key()[len(prefix):])
			if i := strings.IndexByte(rest, '/'); i >= 0 {
				rest = rest[:i]
			}
			if rest != "" {
				seen[rest] = struct{}{}
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: list %s: %w", dir, err)
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Rename moves the file at from to to in one transaction.
func (b *Badger) Rename(_ context.Context, from, to string) error {
	from, to = clean(from), clean(to)
	err := b.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(from))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fs.ErrNotExist
		}
		if err != nil {
			return err
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		if from == to {
			return nil
		}
		if err := putTxn(txn, to, val); err != nil {
			return err
		}
		return txn.Delete([]byte(from))
	})
	if err != nil {
		return fmt.Errorf("storage: rename %s to %s: %w", from, to, err)
	}
	return nil
}

// badgerWriter collects bytes for a Badger file until Close.
type badgerWriter struct {
	b      *Badger
	path   string
	buf    bytes.Buffer
	closed bool
}

func (w *badgerWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, fs.ErrClosed
	}
	return w.buf.Write(p)
}

func (w *badgerWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.b.WriteAtomic(context.Background(), w.path, w.buf.Bytes())
}

// slogLogger routes badger errors and warnings to slog, dropping info and
// debug chatter.
type slogLogger struct{}

func (slogLogger) Errorf(f string, v ...interface{}) {
	slog.Error(strings.TrimSpace(fmt.Sprintf(f, v...)), "component", "badger")
}

func (slogLogger) Warningf(f string, v ...interface{}) {
	slog.Warn(strings.TrimSpace(fmt.Sprintf(f, v...)), "component", "badger")
}

func (slogLogger) Infof(string, ...interface{})  {}
func (slogLogger) Debugf(string, ...interface{}) {}

// Compile-time interface checks.
var (
	_ FileStore    = (*Badger)(nil)
	_ AtomicWriter = (*Badger)(nil)
)
