// Package entity persists records as one file per record in a directory.
//
// Every entity is stored as a record file, <id>.json by default, plus an
// optional attachment file, <id>.attachment, both derived from the entity's
// Identifier:
//
//	apps/
//	├── com.example.app.json
//	├── com.example.app.attachment
//	└── org.sample.tool.json
//
// A Repository bound to one directory is the entry point. It delegates to a
// Reader, a Writer and a Remover, each of which reports failures as a typed
// error (ReadError, WriteError, RemoveError) whose Kind is one of the
// package's sentinel errors.
//
// The directory is reached through a storage.FileStore, so a repository can
// live on local disk, in BadgerDB, in an S3 bucket, or in memory.
//
// Example:
//
//	type App struct {
//		Key  entity.Identifier `json:"id"`
//		Name string            `json:"name"`
//		Icon entity.Blob       `json:"-"`
//	}
//
//	func (a App) ID() entity.Identifier              { return a.Key }
//	func (a App) Attachment() (entity.Blob, bool)     { return a.Icon, a.Icon != nil }
//	func (a App) WithAttachment(icon entity.Blob) App { a.Icon = icon; return a }
//
//	repo, err := entity.OpenDir[App, entity.Blob]("apps", entity.RestoreBlob)
//	_, err = repo.Add(ctx, App{Key: entity.MustIdentifier("com.example.app"), Name: "App"})
//	app, err := repo.Entity(ctx, entity.MustIdentifier("com.example.app"))
package entity

import (
	"context"

	"github.com/haivivi/jsonattach/pkg/storage"
)

// Attachment is a companion payload stored next to an entity's record.
type Attachment interface {
	// WriteAttachment writes the attachment to path in fs.
	// It reports failure through the returned error only.
	WriteAttachment(ctx context.Context, fs storage.FileStore, path string) error
}

// RestoreFunc reconstructs an attachment from the file at path.
//
// It returns false when the file is absent or its content cannot be turned
// into an attachment. Restoring never fails loudly: a missing or broken
// attachment means the entity simply has none.
type RestoreFunc[A Attachment] func(ctx context.Context, fs storage.FileStore, path string) (A, bool)

// Entity is the capability a record type needs to be persisted.
//
// E is the implementing type itself. The record is serialized with the
// repository's Codec, so the attachment must be excluded from it (for
// example with a `json:"-"` tag).
type Entity[E any, A Attachment] interface {
	// ID returns the entity's identifier. It must be stable across
	// attachment changes.
	ID() Identifier

	// Attachment returns the entity's attachment, if it carries one.
	Attachment() (A, bool)

	// WithAttachment returns a copy of the entity carrying a.
	WithAttachment(a A) E
}

// Blob is a raw byte attachment.
type Blob []byte

// WriteAttachment writes the bytes to path.
func (b Blob) WriteAttachment(ctx context.Context, fs storage.FileStore, path string) error {
	return storage.WriteFile(ctx, fs, path, b)
}

// RestoreBlob reads the file at path as a Blob.
func RestoreBlob(ctx context.Context, fs storage.FileStore, path string) (Blob, bool) {
	data, err := storage.ReadFile(ctx, fs, path)
	if err != nil {
		return nil, false
	}
	if data == nil {
		data = []byte{}
	}
	return Blob(data), true
}

var _ Attachment = Blob(nil)
