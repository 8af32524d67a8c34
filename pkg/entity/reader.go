package entity

import (
	"context"
	"path"
	"strings"

	"github.com/haivivi/jsonattach/pkg/storage"
)

// Reader lists and loads entities from one directory.
//
// A Reader holds no state besides its directory; every call re-reads the
// store.
type Reader[E Entity[E, A], A Attachment] struct {
	fs      storage.FileStore
	dir     string
	restore RestoreFunc[A]
	opts    options
}

// NewReader creates a Reader for dir in fs.
//
// restore reconstructs attachments; pass nil for entities that never carry
// one.
func NewReader[E Entity[E, A], A Attachment](fs storage.FileStore, dir string, restore RestoreFunc[A], opts ...Option) *Reader[E, A] {
	return &Reader[E, A]{
		fs:      fs,
		dir:     dir,
		restore: restore,
		opts:    buildOptions(opts),
	}
}

// Dir returns the directory the reader is bound to.
func (r *Reader[E, A]) Dir() string {
	return r.dir
}

// ListIdentifiers returns the identifiers of all record files in the
// directory, in name order.
//
// Only entries whose extension matches the codec's record extension
// (case-insensitively) count. Everything else, including stray attachments
// and subdirectories, is ignored. A listing failure is an ErrListDirectory
// ReadError; an empty directory yields an empty slice.
func (r *Reader[E, A]) ListIdentifiers(ctx context.Context) ([]Identifier, error) {
	recs, err := r.listRecords(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]Identifier, len(recs))
	for i, rec := range recs {
		ids[i] = rec.id
	}
	return ids, nil
}

// record is a listed record file and the identifier it names.
type record struct {
	id   Identifier
	path string
}

func (r *Reader[E, A]) listRecords(ctx context.Context) ([]record, error) {
	names, err := r.fs.List(ctx, r.dir)
	if err != nil {
		return nil, &ReadError{Kind: ErrListDirectory, Path: r.dir, Err: err}
	}
	ext := r.opts.codec.Extension()
	recs := make([]record, 0, len(names))
	for _, name := range names {
		if !strings.EqualFold(path.Ext(name), ext) {
			continue
		}
		id, err := IdentifierFromPath(name)
		if err != nil {
			r.opts.logger.Debug("entity: skipping record file", "dir", r.dir, "name", name, "error", err)
			continue
		}
		recs = append(recs, record{id: id, path: storage.Join(r.dir, name)})
	}
	return recs, nil
}

// LoadRecord reads and decodes the record file of id without looking at
// its attachment.
func (r *Reader[E, A]) LoadRecord(ctx context.Context, id Identifier) (E, error) {
	return r.loadRecord(ctx, id.Path(r.dir, r.opts.codec.Extension()))
}

func (r *Reader[E, A]) loadRecord(ctx context.Context, p string) (E, error) {
	var zero E
	kind, err := r.fs.Exists(ctx, p)
	if err != nil {
		return zero, &ReadError{Kind: ErrRead, Path: p, Err: err}
	}
	switch kind {
	case storage.Absent:
		return zero, &ReadError{Kind: ErrRecordNotFound, Path: p}
	case storage.Directory:
		return zero, &ReadError{Kind: ErrIsDirectory, Path: p}
	}

	data, err := storage.ReadFile(ctx, r.fs, p)
	if err != nil {
		return zero, &ReadError{Kind: ErrRead, Path: p, Err: err}
	}
	var e E
	if err := r.opts.codec.Unmarshal(data, &e); err != nil {
		return zero, &ReadError{Kind: ErrDecode, Path: p, Err: err}
	}
	return e, nil
}

// Load reads the entity with id and merges in its attachment.
//
// A missing attachment file, or one the RestoreFunc rejects, leaves the
// entity without an attachment. That is never an error.
func (r *Reader[E, A]) Load(ctx context.Context, id Identifier) (E, error) {
	e, err := r.LoadRecord(ctx, id)
	if err != nil {
		return e, err
	}
	return r.withAttachment(ctx, id, e), nil
}

func (r *Reader[E, A]) withAttachment(ctx context.Context, id Identifier, e E) E {
	if r.restore == nil {
		return e
	}
	p := id.AttachmentPath(r.dir)
	a, ok := r.restore(ctx, r.fs, p)
	if !ok {
		r.opts.logger.Debug("entity: no attachment restored", "path", p)
		return e
	}
	return e.WithAttachment(a)
}

// All loads every entity in the directory from the record files it lists,
// so a file named with an uppercase extension loads too. The first failing
// load aborts the call and its error is returned; no partial result is
// produced.
func (r *Reader[E, A]) All(ctx context.Context) ([]E, error) {
	recs, err := r.listRecords(ctx)
	if err != nil {
		return nil, err
	}
	all := make([]E, 0, len(recs))
	for _, rec := range recs {
		e, err := r.loadRecord(ctx, rec.path)
		if err != nil {
			return nil, err
		}
		all = append(all, r.withAttachment(ctx, rec.id, e))
	}
	return all, nil
}

// Count returns the number of record files, without loading any of them.
func (r *Reader[E, A]) Count(ctx context.Context) (int, error) {
	ids, err := r.ListIdentifiers(ctx)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}
