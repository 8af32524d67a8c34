// Package document defines the schemaless record the CLI stores: a field
// map keyed by identifier, with an optional binary attachment.
package document

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/haivivi/jsonattach/pkg/entity"
)

// Document is a free-form record.
type Document struct {
	Key    entity.Identifier `json:"id" yaml:"id"`
	Fields map[string]any    `json:"fields,omitempty" yaml:"fields,omitempty"`

	Blob entity.Blob `json:"-" yaml:"-" msgpack:"-"`
}

// New creates a document with the given identifier and fields.
func New(id entity.Identifier, fields map[string]any) Document {
	return Document{Key: id, Fields: fields}
}

// ID implements entity.Entity.
func (d Document) ID() entity.Identifier { return d.Key }

// Attachment implements entity.Entity.
func (d Document) Attachment() (entity.Blob, bool) { return d.Blob, d.Blob != nil }

// WithAttachment implements entity.Entity.
func (d Document) WithAttachment(b entity.Blob) Document {
	d.Blob = b
	return d
}

// Set assigns a field from a "key=value" assignment. true, false, null and
// numbers are stored as such; everything else is a string.
// Dotted keys address nested objects.
func (d *Document) Set(assignment string) error {
	key, raw, ok := strings.Cut(assignment, "=")
	if !ok || key == "" {
		return fmt.Errorf("invalid field assignment %q, want key=value", assignment)
	}
	if d.Fields == nil {
		d.Fields = make(map[string]any)
	}
	parts := strings.Split(key, ".")
	m := d.Fields
	for _, p := range parts[:len(parts)-1] {
		next, ok := m[p].(map[string]any)
		if !ok {
			next = make(map[string]any)
			m[p] = next
		}
		m = next
	}
	m[parts[len(parts)-1]] = parseScalar(raw)
	return nil
}

func parseScalar(s string) any {
	switch s {
	case "true":
		return true
	case "false":
		return false
	case "null":
		return nil
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return f
	}
	return s
}

var _ entity.Entity[Document, entity.Blob] = Document{}
