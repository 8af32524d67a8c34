package storage

import (
	"context"
	"errors"
	"io/fs"
	"slices"
	"strings"
	"testing"
)

// storeFactories lists every backend the shared contract tests run against.
func storeFactories() map[string]func(t *testing.T) FileStore {
	return map[string]func(t *testing.T) FileStore{
		"local":  func(t *testing.T) FileStore { return newTestLocal(t) },
		"memory": func(t *testing.T) FileStore { return NewMemory() },
		"badger": func(t *testing.T) FileStore { return newTestBadger(t) },
		"s3": func(t *testing.T) FileStore {
			s, _ := newTestS3(t)
			return s
		},
	}
}

func forEachStore(t *testing.T, fn func(t *testing.T, s FileStore)) {
	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			fn(t, factory(t))
		})
	}
}

func mustWrite(t *testing.T, s FileStore, name, data string) {
	t.Helper()
	if err := WriteFile(context.Background(), s, name, []byte(data)); err != nil {
		t.Fatalf("WriteFile(%s): %v", name, err)
	}
}

func TestContractExists(t *testing.T) {
	forEachStore(t, func(t *testing.T, s FileStore) {
		ctx := context.Background()

		kind, err := s.Exists(ctx, "missing.json")
		if err != nil {
			t.Fatal(err)
		}
		if kind != Absent {
			t.Fatalf("missing: got %v, want absent", kind)
		}

		mustWrite(t, s, "a.json", "{}")
		mustWrite(t, s, "sub/inner.json", "{}")

		for path, want := range map[string]Existence{
			"a.json":         File,
			"sub":            Directory,
			"sub/inner.json": File,
			"su":             Absent,
			"":               Directory,
		} {
			got, err := s.Exists(ctx, path)
			if err != nil {
				t.Fatalf("Exists(%q): %v", path, err)
			}
			if got != want {
				t.Errorf("Exists(%q) = %v, want %v", path, got, want)
			}
		}
	})
}

func TestContractReadWrite(t *testing.T) {
	forEachStore(t, func(t *testing.T, s FileStore) {
		ctx := context.Background()

		mustWrite(t, s, "x.attachment", "\x00\x01\x02\x03")
		got, err := ReadFile(ctx, s, "x.attachment")
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != "\x00\x01\x02\x03" {
			t.Fatalf("got %q", got)
		}

		mustWrite(t, s, "x.attachment", "z")
		got, err = ReadFile(ctx, s, "x.attachment")
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != "z" {
			t.Fatalf("after overwrite got %q, want %q", got, "z")
		}

		_, err = s.Read(ctx, "nope")
		if !errors.Is(err, fs.ErrNotExist) {
			t.Fatalf("Read missing: expected fs.ErrNotExist, got %v", err)
		}
	})
}

func TestContractList(t *testing.T) {
	forEachStore(t, func(t *testing.T, s FileStore) {
		ctx := context.Background()

		mustWrite(t, s, "repo/foo.json", "{}")
		mustWrite(t, s, "repo/foo.attachment", "a")
		mustWrite(t, s, "repo/bar.txt", "b")
		mustWrite(t, s, "repo/baz/deep.json", "{}")
		mustWrite(t, s, "other.json", "{}")

		names, err := s.List(ctx, "repo")
		if err != nil {
			t.Fatal(err)
		}
		want := []string{"bar.txt", "baz", "foo.attachment", "foo.json"}
		if !slices.Equal(names, want) {
			t.Fatalf("List(repo) = %v, want %v", names, want)
		}

		root, err := s.List(ctx, "")
		if err != nil {
			t.Fatal(err)
		}
		if !slices.Equal(root, []string{"other.json", "repo"}) {
			t.Fatalf("List(root) = %v", root)
		}

		mustWrite(t, s, "gone/only.json", "{}")
		if err := s.Delete(ctx, "gone/only.json"); err != nil {
			t.Fatal(err)
		}
		names, err = s.List(ctx, "gone")
		if err != nil {
			t.Fatalf("List after last delete: %v", err)
		}
		if len(names) != 0 {
			t.Fatalf("List after last delete = %v, want empty", names)
		}
	})
}

func TestContractListMissingDir(t *testing.T) {
	forEachStore(t, func(t *testing.T, s FileStore) {
		names, err := s.List(context.Background(), "no-such-dir")
		if _, ok := s.(*Local); ok {
			// Only a real filesystem can tell a missing directory apart.
			if !errors.Is(err, fs.ErrNotExist) {
				t.Fatalf("expected fs.ErrNotExist, got %v", err)
			}
			return
		}
		if err != nil {
			t.Fatalf("List missing: %v", err)
		}
		if names == nil || len(names) != 0 {
			t.Fatalf("List missing = %#v, want empty slice", names)
		}
	})
}

func TestContractDeleteIdempotent(t *testing.T) {
	forEachStore(t, func(t *testing.T, s FileStore) {
		ctx := context.Background()

		if err := s.Delete(ctx, "ghost"); err != nil {
			t.Fatal(err)
		}
		mustWrite(t, s, "tmp", "x")
		if err := s.Delete(ctx, "tmp"); err != nil {
			t.Fatal(err)
		}
		kind, err := s.Exists(ctx, "tmp")
		if err != nil {
			t.Fatal(err)
		}
		if kind != Absent {
			t.Fatalf("after delete: %v", kind)
		}
		if err := s.Delete(ctx, "tmp"); err != nil {
			t.Fatal(err)
		}
	})
}

func TestContractRename(t *testing.T) {
	forEachStore(t, func(t *testing.T, s FileStore) {
		ctx := context.Background()

		mustWrite(t, s, "d/from", "payload")
		mustWrite(t, s, "d/to", "old")
		if err := s.Rename(ctx, "d/from", "d/to"); err != nil {
			t.Fatal(err)
		}
		got, err := ReadFile(ctx, s, "d/to")
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != "payload" {
			t.Fatalf("got %q, want payload", got)
		}
		kind, _ := s.Exists(ctx, "d/from")
		if kind != Absent {
			t.Fatalf("source still %v after rename", kind)
		}
	})
}

func TestContractWriteAtomic(t *testing.T) {
	forEachStore(t, func(t *testing.T, s FileStore) {
		ctx := context.Background()

		if err := WriteAtomic(ctx, s, "d/rec.json", []byte(`{"v":1}`)); err != nil {
			t.Fatal(err)
		}
		if err := WriteAtomic(ctx, s, "d/rec.json", []byte(`{"v":2}`)); err != nil {
			t.Fatal(err)
		}
		got, err := ReadFile(ctx, s, "d/rec.json")
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != `{"v":2}` {
			t.Fatalf("got %s", got)
		}
		names, err := s.List(ctx, "d")
		if err != nil {
			t.Fatal(err)
		}
		if !slices.Equal(names, []string{"rec.json"}) {
			t.Fatalf("leftover temp files: %v", names)
		}
	})
}

// plainStore hides any native AtomicWriter so WriteAtomic takes the
// temp-file-and-rename path.
type plainStore struct {
	FileStore
}

func TestWriteAtomicFallback(t *testing.T) {
	forEachStore(t, func(t *testing.T, s FileStore) {
		ctx := context.Background()
		p := plainStore{s}

		mustWrite(t, p, "d/rec.json", "old")
		if err := WriteAtomic(ctx, p, "d/rec.json", []byte("new")); err != nil {
			t.Fatal(err)
		}
		got, err := ReadFile(ctx, p, "d/rec.json")
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != "new" {
			t.Fatalf("got %q, want new", got)
		}
		names, err := p.List(ctx, "d")
		if err != nil {
			t.Fatal(err)
		}
		for _, n := range names {
			if strings.HasSuffix(n, ".tmp") {
				t.Fatalf("temp file left behind: %v", names)
			}
		}
	})
}

func TestTempName(t *testing.T) {
	a := TempName("dir/rec.json")
	b := TempName("dir/rec.json")
	if a == b {
		t.Fatal("temp names should be unique")
	}
	if !strings.HasPrefix(a, "dir/.rec.json.") || !strings.HasSuffix(a, ".tmp") {
		t.Fatalf("unexpected temp name %q", a)
	}
}

func TestJoin(t *testing.T) {
	tests := []struct {
		dir, name, want string
	}{
		{"", "a.json", "a.json"},
		{".", "a.json", "a.json"},
		{"dir", "a.json", "dir/a.json"},
		{"dir/", "a.json", "dir/a.json"},
		{"dir", "..json", "dir/..json"},
	}
	for _, tt := range tests {
		if got := Join(tt.dir, tt.name); got != tt.want {
			t.Errorf("Join(%q, %q) = %q, want %q", tt.dir, tt.name, got, tt.want)
		}
	}
}

func TestExistenceString(t *testing.T) {
	if Absent.String() != "absent" || File.String() != "file" || Directory.String() != "directory" {
		t.Fatal("unexpected Existence strings")
	}
	if Existence(9).String() != "Existence(9)" {
		t.Fatalf("got %q", Existence(9).String())
	}
}
