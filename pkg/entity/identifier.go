package entity

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/haivivi/jsonattach/pkg/storage"
)

const (
	// RecordExtension is the extension of record files written by the
	// default JSON codec.
	RecordExtension = ".json"

	// AttachmentExtension is the extension of attachment files.
	AttachmentExtension = ".attachment"
)

// Identifier is the string key of an entity. It names both of the entity's
// files inside a repository directory.
//
// Identifiers are comparable values and can be used as map keys. The zero
// Identifier is invalid; obtain one from NewIdentifier or IdentifierFromPath.
type Identifier struct {
	raw string
}

// NewIdentifier validates raw and wraps it as an Identifier.
//
// raw must be non-empty and must not contain '/', '\' or NUL, so that the
// derived file names stay inside the repository directory and distinct
// identifiers never map to the same file.
func NewIdentifier(raw string) (Identifier, error) {
	if raw == "" {
		return Identifier{}, fmt.Errorf("%w: empty", ErrInvalidIdentifier)
	}
	if strings.ContainsAny(raw, "/\\\x00") {
		return Identifier{}, fmt.Errorf("%w: %q contains a path separator or NUL", ErrInvalidIdentifier, raw)
	}
	return Identifier{raw: raw}, nil
}

// MustIdentifier is like NewIdentifier but panics on invalid input.
func MustIdentifier(raw string) Identifier {
	id, err := NewIdentifier(raw)
	if err != nil {
		panic(err)
	}
	return id
}

// IdentifierFromPath derives an Identifier from a file path: the last path
// element without its final extension. "dir/com.example.app.json" yields
// "com.example.app".
func IdentifierFromPath(p string) (Identifier, error) {
	base := path.Base(filepath.ToSlash(p))
	stem := strings.TrimSuffix(base, path.Ext(base))
	if stem == "" {
		return Identifier{}, fmt.Errorf("%w: no file stem in %q", ErrInvalidIdentifier, p)
	}
	return NewIdentifier(stem)
}

// String returns the raw identifier.
func (id Identifier) String() string {
	return id.raw
}

// IsZero reports whether id is the zero Identifier.
func (id Identifier) IsZero() bool {
	return id.raw == ""
}

// Path returns the path of the file named <id><ext> inside dir.
func (id Identifier) Path(dir, ext string) string {
	return storage.Join(dir, id.raw+ext)
}

// RecordPath returns <dir>/<id>.json.
func (id Identifier) RecordPath(dir string) string {
	return id.Path(dir, RecordExtension)
}

// AttachmentPath returns <dir>/<id>.attachment.
func (id Identifier) AttachmentPath(dir string) string {
	return id.Path(dir, AttachmentExtension)
}

// MarshalText implements encoding.TextMarshaler.
func (id Identifier) MarshalText() ([]byte, error) {
	return []byte(id.raw), nil
}

// UnmarshalText implements encoding.TextUnmarshaler and validates the input.
func (id *Identifier) UnmarshalText(text []byte) error {
	parsed, err := NewIdentifier(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
