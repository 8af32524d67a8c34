package entity

import (
	"context"

	"github.com/haivivi/jsonattach/pkg/storage"
)

// Writer persists entities into one directory.
type Writer[E Entity[E, A], A Attachment] struct {
	fs   storage.FileStore
	dir  string
	opts options
}

// NewWriter creates a Writer for dir in fs.
func NewWriter[E Entity[E, A], A Attachment](fs storage.FileStore, dir string, opts ...Option) *Writer[E, A] {
	return &Writer[E, A]{fs: fs, dir: dir, opts: buildOptions(opts)}
}

// Dir returns the directory the writer is bound to.
func (w *Writer[E, A]) Dir() string {
	return w.dir
}

// Write encodes e and atomically replaces its record file, then writes its
// attachment if it carries one.
//
// An entity without an attachment leaves any existing attachment file
// untouched. If the attachment write fails, the new record stays on disk
// and an ErrWriteAttachment WriteError is returned.
func (w *Writer[E, A]) Write(ctx context.Context, e E) error {
	id := e.ID()
	if id.IsZero() {
		return &WriteError{Kind: ErrEncode, Err: ErrInvalidIdentifier}
	}

	data, err := w.opts.codec.Marshal(e)
	if err != nil {
		return &WriteError{Kind: ErrEncode, Path: id.String(), Err: err}
	}

	recordPath := id.Path(w.dir, w.opts.codec.Extension())
	if err := storage.WriteAtomic(ctx, w.fs, recordPath, data); err != nil {
		return &WriteError{Kind: ErrWriteRecord, Path: recordPath, Err: err}
	}

	a, ok := e.Attachment()
	if !ok {
		w.opts.logger.Debug("entity: wrote record", "path", recordPath, "bytes", len(data))
		return nil
	}
	attachmentPath := id.AttachmentPath(w.dir)
	if err := a.WriteAttachment(ctx, w.fs, attachmentPath); err != nil {
		w.opts.logger.Warn("entity: record written but attachment failed",
			"record", recordPath, "attachment", attachmentPath, "error", err)
		return &WriteError{Kind: ErrWriteAttachment, Path: attachmentPath, Err: err}
	}
	w.opts.logger.Debug("entity: wrote record and attachment", "path", recordPath, "bytes", len(data))
	return nil
}
