package document

import (
	"encoding/json"
	"fmt"
	"maps"
	"unicode/utf8"
)

// ID limits imposed by Elasticsearch.
const (
	MaxIDBytes = 512

	// MaxSourceSize is the maximum encoded _source size in bytes.
	MaxSourceSize = 1 << 20
)

// Document is a stored document of one entity (immutable value object).
// The source is keyed by external field names.
type Document struct {
	id      string
	source  map[string]any
	version int64
}

// New validates and creates a Document. A zero version means unversioned.
func New(id string, source map[string]any, version int64) (Document, error) {
	if err := ValidateID(id); err != nil {
		return Document{}, err
	}
	if version < 0 {
		return Document{}, fmt.Errorf("version must not be negative")
	}
	if len(source) == 0 {
		return Document{}, fmt.Errorf("source is required")
	}
	raw, err := json.Marshal(source)
	if err != nil {
		return Document{}, fmt.Errorf("source is not JSON-encodable: %w", err)
	}
	if len(raw) > MaxSourceSize {
		return Document{}, fmt.Errorf("source too large (max %d bytes)", MaxSourceSize)
	}

	return Document{id: id, source: maps.Clone(source), version: version}, nil
}

// ValidateID checks an id the way Elasticsearch does: non-empty UTF-8, at most 512 bytes.
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("document ID is required")
	}
	if len(id) > MaxIDBytes {
		return fmt.Errorf("document ID too long (max %d bytes)", MaxIDBytes)
	}
	if !utf8.ValidString(id) {
		return fmt.Errorf("document ID must be valid UTF-8")
	}
	return nil
}

// Reconstruct creates a Document without validation (storage hydration).
func Reconstruct(id string, source map[string]any, version int64) Document {
	return Document{id: id, source: source, version: version}
}

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// Source returns the stored fields keyed by field name.
func (d *Document) Source() map[string]any { return d.source }

// Version returns the external version, 0 when unversioned.
func (d *Document) Version() int64 { return d.version }

// HasVersion reports whether the document carries an external version.
func (d *Document) HasVersion() bool { return d.version > 0 }

// WithVersion returns a copy with the given version set.
func (d *Document) WithVersion(v int64) Document {
	return Document{id: d.id, source: d.source, version: v}
}
