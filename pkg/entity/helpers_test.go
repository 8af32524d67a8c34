package entity

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/haivivi/jsonattach/pkg/storage"
)

// app is the entity used throughout the tests: an application record with
// an optional icon attachment.
type app struct {
	Key  Identifier `json:"id"`
	Name string     `json:"name"`
	Tags []string   `json:"tags,omitempty"`
	Icon Blob       `json:"-"`
}

func (a app) ID() Identifier               { return a.Key }
func (a app) Attachment() (Blob, bool)     { return a.Icon, a.Icon != nil }
func (a app) WithAttachment(icon Blob) app { a.Icon = icon; return a }

var _ Entity[app, Blob] = app{}

func newApp(id, name string) app {
	return app{Key: MustIdentifier(id), Name: name}
}

func newTestRepo(t *testing.T, fs storage.FileStore, dir string, opts ...Option) *Repository[app, Blob] {
	t.Helper()
	return NewRepository[app, Blob](fs, dir, RestoreBlob, opts...)
}

func mustWriteFile(t *testing.T, fs storage.FileStore, name, data string) {
	t.Helper()
	if err := storage.WriteFile(context.Background(), fs, name, []byte(data)); err != nil {
		t.Fatalf("WriteFile(%s): %v", name, err)
	}
}

func mustReadFile(t *testing.T, fs storage.FileStore, name string) string {
	t.Helper()
	data, err := storage.ReadFile(context.Background(), fs, name)
	if err != nil {
		t.Fatalf("ReadFile(%s): %v", name, err)
	}
	return string(data)
}

func existence(t *testing.T, fs storage.FileStore, name string) storage.Existence {
	t.Helper()
	kind, err := fs.Exists(context.Background(), name)
	if err != nil {
		t.Fatalf("Exists(%s): %v", name, err)
	}
	return kind
}

var errInjected = errors.New("injected failure")

// faultStore wraps a FileStore and fails selected operations on selected
// paths.
type faultStore struct {
	storage.FileStore

	listErr   error
	existsErr map[string]error
	readErr   map[string]error
	writeErr  map[string]error
	deleteErr map[string]error

	deleted []string
}

func newFaultStore() *faultStore {
	return &faultStore{
		FileStore: storage.NewMemory(),
		existsErr: map[string]error{},
		readErr:   map[string]error{},
		writeErr:  map[string]error{},
		deleteErr: map[string]error{},
	}
}

func (f *faultStore) List(ctx context.Context, dir string) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.FileStore.List(ctx, dir)
}

func (f *faultStore) Exists(ctx context.Context, p string) (storage.Existence, error) {
	if err := f.existsErr[p]; err != nil {
		return storage.Absent, err
	}
	return f.FileStore.Exists(ctx, p)
}

func (f *faultStore) Read(ctx context.Context, p string) (io.ReadCloser, error) {
	if err := f.readErr[p]; err != nil {
		return nil, err
	}
	return f.FileStore.Read(ctx, p)
}

func (f *faultStore) Write(ctx context.Context, p string) (io.WriteCloser, error) {
	if err := f.writeErr[p]; err != nil {
		return nil, err
	}
	return f.FileStore.Write(ctx, p)
}

func (f *faultStore) WriteAtomic(ctx context.Context, p string, data []byte) error {
	if err := f.writeErr[p]; err != nil {
		return err
	}
	return storage.WriteAtomic(ctx, f.FileStore, p, data)
}

func (f *faultStore) Delete(ctx context.Context, p string) error {
	f.deleted = append(f.deleted, p)
	if err := f.deleteErr[p]; err != nil {
		return err
	}
	return f.FileStore.Delete(ctx, p)
}

var _ storage.AtomicWriter = (*faultStore)(nil)
