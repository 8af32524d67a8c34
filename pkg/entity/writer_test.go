package entity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/haivivi/jsonattach/pkg/storage"
)

func TestWriterRecordFailure(t *testing.T) {
	f := newFaultStore()
	f.writeErr["apps/a.json"] = errInjected
	w := NewWriter[app, Blob](f, "apps")

	err := w.Write(context.Background(), newApp("a", "A").WithAttachment(Blob("icon")))
	if !errors.Is(err, ErrWriteRecord) || !errors.Is(err, errInjected) {
		t.Fatalf("expected ErrWriteRecord wrapping cause, got %v", err)
	}
	if existence(t, f, "apps/a.attachment") != storage.Absent {
		t.Fatal("attachment written after record failure")
	}
}

func TestWriterAttachmentFailureKeepsRecord(t *testing.T) {
	f := newFaultStore()
	f.writeErr["apps/a.attachment"] = errInjected
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	w := NewWriter[app, Blob](f, "apps", WithLogger(logger))

	err := w.Write(context.Background(), newApp("a", "A").WithAttachment(Blob("icon")))
	if !errors.Is(err, ErrWriteAttachment) {
		t.Fatalf("expected ErrWriteAttachment, got %v", err)
	}
	var we *WriteError
	if !errors.As(err, &we) || we.Path != "apps/a.attachment" {
		t.Fatalf("expected WriteError on apps/a.attachment, got %#v", err)
	}
	if existence(t, f, "apps/a.json") != storage.File {
		t.Fatal("record rolled back")
	}
	if !strings.Contains(logs.String(), "attachment failed") {
		t.Fatalf("missing warning, logs: %s", logs.String())
	}
}

type unencodable struct {
	app
	Ch chan int `json:"ch"`
}

func (u unencodable) WithAttachment(b Blob) unencodable { u.Icon = b; return u }

func TestWriterEncodeFailure(t *testing.T) {
	m := storage.NewMemory()
	w := NewWriter[unencodable, Blob](m, "")

	err := w.Write(context.Background(), unencodable{app: newApp("a", "A"), Ch: make(chan int)})
	if !errors.Is(err, ErrEncode) {
		t.Fatalf("expected ErrEncode, got %v", err)
	}
	var ute *json.UnsupportedTypeError
	if !errors.As(err, &ute) {
		t.Fatalf("cause lost: %v", err)
	}
	if existence(t, m, "a.json") != storage.Absent {
		t.Fatal("record written despite encode failure")
	}
}

func TestWriterZeroIdentifier(t *testing.T) {
	w := NewWriter[app, Blob](storage.NewMemory(), "")
	err := w.Write(context.Background(), app{Name: "anonymous"})
	if !errors.Is(err, ErrEncode) || !errors.Is(err, ErrInvalidIdentifier) {
		t.Fatalf("expected ErrEncode with ErrInvalidIdentifier, got %v", err)
	}
}

// Records go through the non-native path too: temp file plus rename.
func TestWriterPlainStore(t *testing.T) {
	ctx := context.Background()
	s := plainStore{storage.NewMemory()}
	w := NewWriter[app, Blob](s, "apps")

	if err := w.Write(ctx, newApp("a", "first")); err != nil {
		t.Fatal(err)
	}
	if err := w.Write(ctx, newApp("a", "second")); err != nil {
		t.Fatal(err)
	}
	names, err := s.List(ctx, "apps")
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 || names[0] != "a.json" {
		t.Fatalf("leftover files: %v", names)
	}
	if got := mustReadFile(t, s, "apps/a.json"); !strings.Contains(got, "second") {
		t.Fatalf("record = %s", got)
	}
}

// plainStore hides the native atomic writer of the wrapped store.
type plainStore struct{ storage.FileStore }
