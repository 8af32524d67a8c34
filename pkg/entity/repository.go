package entity

import (
	"context"
	"fmt"

	"github.com/haivivi/jsonattach/pkg/storage"
)

// Repository is the entry point for one entity directory. It combines a
// Reader, a Writer and a Remover bound to the same directory and options.
type Repository[E Entity[E, A], A Attachment] struct {
	dir     string
	reader  *Reader[E, A]
	writer  *Writer[E, A]
	remover *Remover
}

// NewRepository creates a Repository for dir in fs.
func NewRepository[E Entity[E, A], A Attachment](fs storage.FileStore, dir string, restore RestoreFunc[A], opts ...Option) *Repository[E, A] {
	return &Repository[E, A]{
		dir:     dir,
		reader:  NewReader[E, A](fs, dir, restore, opts...),
		writer:  NewWriter[E, A](fs, dir, opts...),
		remover: NewRemover(fs, dir, opts...),
	}
}

// OpenDir creates a Repository on the local directory dir, creating the
// directory if it does not exist.
func OpenDir[E Entity[E, A], A Attachment](dir string, restore RestoreFunc[A], opts ...Option) (*Repository[E, A], error) {
	fs, err := storage.NewLocal(dir)
	if err != nil {
		return nil, fmt.Errorf("entity: open %s: %w", dir, err)
	}
	r := NewRepository[E, A](fs, "", restore, opts...)
	r.dir = fs.Root()
	return r, nil
}

// Dir returns the directory the repository is bound to.
func (r *Repository[E, A]) Dir() string {
	return r.dir
}

// All loads every entity. See Reader.All.
func (r *Repository[E, A]) All(ctx context.Context) ([]E, error) {
	return r.reader.All(ctx)
}

// AllIdentifiers lists the identifiers of every stored entity.
func (r *Repository[E, A]) AllIdentifiers(ctx context.Context) ([]Identifier, error) {
	return r.reader.ListIdentifiers(ctx)
}

// Entity loads the entity with id, including its attachment.
func (r *Repository[E, A]) Entity(ctx context.Context, id Identifier) (E, error) {
	return r.reader.Load(ctx, id)
}

// Add stores e, replacing any entity with the same identifier, and returns
// it.
func (r *Repository[E, A]) Add(ctx context.Context, e E) (E, error) {
	if err := r.writer.Write(ctx, e); err != nil {
		return e, err
	}
	return e, nil
}

// Remove deletes the entity with id and returns id.
func (r *Repository[E, A]) Remove(ctx context.Context, id Identifier) (Identifier, error) {
	if err := r.remover.Remove(ctx, id); err != nil {
		return id, err
	}
	return id, nil
}

// Count returns the number of stored entities.
func (r *Repository[E, A]) Count(ctx context.Context) (int, error) {
	return r.reader.Count(ctx)
}
