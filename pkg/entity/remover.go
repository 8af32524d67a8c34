package entity

import (
	"context"

	"github.com/haivivi/jsonattach/pkg/storage"
)

// Remover deletes entities from one directory.
type Remover struct {
	fs   storage.FileStore
	dir  string
	opts options
}

// NewRemover creates a Remover for dir in fs.
func NewRemover(fs storage.FileStore, dir string, opts ...Option) *Remover {
	return &Remover{fs: fs, dir: dir, opts: buildOptions(opts)}
}

// Dir returns the directory the remover is bound to.
func (r *Remover) Dir() string {
	return r.dir
}

// Remove deletes the record and attachment files of id.
//
// Missing files are fine, so removing twice succeeds. Directories are never
// deleted: finding one at either path is an ErrIsDirectory RemoveError.
// Both paths are always attempted; if both fail the record's error is
// returned.
func (r *Remover) Remove(ctx context.Context, id Identifier) error {
	recordErr := r.removeFile(ctx, id.Path(r.dir, r.opts.codec.Extension()))
	attachmentErr := r.removeFile(ctx, id.AttachmentPath(r.dir))
	if recordErr != nil {
		return recordErr
	}
	return attachmentErr
}

func (r *Remover) removeFile(ctx context.Context, p string) error {
	kind, err := r.fs.Exists(ctx, p)
	if err != nil {
		return &RemoveError{Kind: ErrRemove, Path: p, Err: err}
	}
	switch kind {
	case storage.Absent:
		return nil
	case storage.Directory:
		return &RemoveError{Kind: ErrIsDirectory, Path: p}
	}
	if err := r.fs.Delete(ctx, p); err != nil {
		return &RemoveError{Kind: ErrRemove, Path: p, Err: err}
	}
	r.opts.logger.Debug("entity: removed", "path", p)
	return nil
}
