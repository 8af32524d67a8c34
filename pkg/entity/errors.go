package entity

import "errors"

// ErrInvalidIdentifier is returned when a string cannot be an Identifier.
var ErrInvalidIdentifier = errors.New("entity: invalid identifier")

// Read error kinds.
var (
	// ErrListDirectory means the repository directory could not be listed.
	ErrListDirectory = errors.New("entity: directory listing failed")

	// ErrRecordNotFound means no record file exists for the identifier.
	ErrRecordNotFound = errors.New("entity: record not found")

	// ErrIsDirectory means a file was expected but a directory was found.
	// Both reading and removing report it.
	ErrIsDirectory = errors.New("entity: expected file, found directory")

	// ErrRead means the record file exists but could not be read.
	ErrRead = errors.New("entity: read failed")

	// ErrDecode means the record file content could not be decoded.
	ErrDecode = errors.New("entity: decode failed")
)

// Write error kinds.
var (
	// ErrEncode means the entity could not be serialized.
	ErrEncode = errors.New("entity: encode failed")

	// ErrWriteRecord means the record file could not be written.
	ErrWriteRecord = errors.New("entity: record write failed")

	// ErrWriteAttachment means the record was written but the attachment
	// was not. The record is left in place.
	ErrWriteAttachment = errors.New("entity: attachment write failed")
)

// ErrRemove means a file could not be removed.
var ErrRemove = errors.New("entity: removal failed")

// ReadError is returned by Reader operations.
//
// Kind is one of ErrListDirectory, ErrRecordNotFound, ErrIsDirectory,
// ErrRead or ErrDecode. errors.Is matches both Kind and the underlying Err.
type ReadError struct {
	Kind error
	Path string
	Err  error
}

func (e *ReadError) Error() string   { return formatError(e.Kind, e.Path, e.Err) }
func (e *ReadError) Unwrap() []error { return unwrap(e.Kind, e.Err) }

// WriteError is returned by Writer operations.
//
// Kind is one of ErrEncode, ErrWriteRecord or ErrWriteAttachment.
type WriteError struct {
	Kind error
	Path string
	Err  error
}

func (e *WriteError) Error() string   { return formatError(e.Kind, e.Path, e.Err) }
func (e *WriteError) Unwrap() []error { return unwrap(e.Kind, e.Err) }

// RemoveError is returned by Remover operations.
//
// Kind is ErrIsDirectory or ErrRemove.
type RemoveError struct {
	Kind error
	Path string
	Err  error
}

func (e *RemoveError) Error() string   { return formatError(e.Kind, e.Path, e.Err) }
func (e *RemoveError) Unwrap() []error { return unwrap(e.Kind, e.Err) }

func formatError(kind error, path string, err error) string {
	msg := "entity: error"
	if kind != nil {
		msg = kind.Error()
	}
	if path != "" {
		msg += ": " + path
	}
	if err != nil {
		msg += ": " + err.Error()
	}
	return msg
}

func unwrap(kind, err error) []error {
	errs := make([]error, 0, 2)
	if kind != nil {
		errs = append(errs, kind)
	}
	if err != nil {
		errs = append(errs, err)
	}
	return errs
}
