package db

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// IndexFieldType is an Elasticsearch mapping type.
type IndexFieldType string

// Supported mapping types.
const (
	IndexFieldText    IndexFieldType = "text"
	IndexFieldKeyword IndexFieldType = "keyword"
	IndexFieldLong    IndexFieldType = "long"
	IndexFieldInteger IndexFieldType = "integer"
	IndexFieldFloat   IndexFieldType = "float"
	IndexFieldDouble  IndexFieldType = "double"
	IndexFieldBoolean IndexFieldType = "boolean"
	IndexFieldDate    IndexFieldType = "date"
	IndexFieldObject  IndexFieldType = "object"
)

// IsValid reports whether t is a supported mapping type.
func (t IndexFieldType) IsValid() bool {
	switch t {
	case IndexFieldText, IndexFieldKeyword, IndexFieldLong, IndexFieldInteger,
		IndexFieldFloat, IndexFieldDouble, IndexFieldBoolean, IndexFieldDate, IndexFieldObject:
		return true
	}
	return false
}

// IndexField describes a single property of an index mapping.
type IndexField struct {
	Name string
	Type IndexFieldType

	// text options
	Analyzer       string
	SearchAnalyzer string

	// date options
	Format string

	NotIndexed bool
}

// IndexDefinition is a complete index definition used by indices.create.
type IndexDefinition struct {
	Name            string
	Shards          int
	Replicas        *int
	RefreshInterval string
	Fields          []IndexField
}

// Validate checks that the index definition is well-formed.
func (idx *IndexDefinition) Validate() error {
	if idx.Name == "" {
		return errors.New("index name is required")
	}
	if !IsValidIndexName(idx.Name) {
		return errors.New("index name contains invalid characters: " + idx.Name)
	}
	if idx.Shards < 0 {
		return errors.New("shards must not be negative")
	}
	if idx.Replicas != nil && *idx.Replicas < 0 {
		return errors.New("replicas must not be negative")
	}

	seen := make(map[string]bool)
	for i := range idx.Fields {
		f := &idx.Fields[i]
		if f.Name == "" {
			return errors.New("field name is required at index " + strconv.Itoa(i))
		}
		if seen[f.Name] {
			return errors.New("duplicate field name: " + f.Name)
		}
		seen[f.Name] = true

		if !f.Type.IsValid() {
			return errors.New("unsupported type " + strconv.Quote(string(f.Type)) + " for field " + f.Name)
		}
		if (f.Analyzer != "" || f.SearchAnalyzer != "") && f.Type != IndexFieldText {
			return errors.New("analyzer is only allowed on text fields: " + f.Name)
		}
		if f.Format != "" && f.Type != IndexFieldDate {
			return errors.New("format is only allowed on date fields: " + f.Name)
		}
	}

	return nil
}

// Settings returns the index settings object, or nil when all defaults apply.
func (idx *IndexDefinition) Settings() map[string]any {
	s := make(map[string]any)
	if idx.Shards > 0 {
		s["number_of_shards"] = idx.Shards
	}
	if idx.Replicas != nil {
		s["number_of_replicas"] = *idx.Replicas
	}
	if idx.RefreshInterval != "" {
		s["refresh_interval"] = idx.RefreshInterval
	}
	if len(s) == 0 {
		return nil
	}
	return s
}

// Mappings returns the mappings object with one entry per field.
func (idx *IndexDefinition) Mappings() map[string]any {
	props := make(map[string]any, len(idx.Fields))
	for i := range idx.Fields {
		f := &idx.Fields[i]
		p := map[string]any{"type": string(f.Type)}
		if f.Analyzer != "" {
			p["analyzer"] = f.Analyzer
		}
		if f.SearchAnalyzer != "" {
			p["search_analyzer"] = f.SearchAnalyzer
		}
		if f.Format != "" {
			p["format"] = f.Format
		}
		if f.NotIndexed {
			if f.Type == IndexFieldObject {
				p["enabled"] = false
			} else {
				p["index"] = false
			}
		}
		props[f.Name] = p
	}
	return map[string]any{"properties": props}
}

// Body renders the indices.create request body.
func (idx *IndexDefinition) Body() ([]byte, error) {
	body := map[string]any{"mappings": idx.Mappings()}
	if s := idx.Settings(); s != nil {
		body["settings"] = s
	}
	return json.Marshal(body) //nolint:wrapcheck // plain maps always marshal
}

// MappingBody renders the indices.put_mapping request body.
func (idx *IndexDefinition) MappingBody() ([]byte, error) {
	return json.Marshal(idx.Mappings()) //nolint:wrapcheck // plain maps always marshal
}

// IsValidIndexName reports whether s is an acceptable Elasticsearch index name:
// lowercase, not starting with '-', '_' or '+', free of \ / * ? " < > | , # : and spaces.
func IsValidIndexName(s string) bool {
	if s == "" || s == "." || s == ".." || len(s) > 255 {
		return false
	}
	if strings.ContainsAny(s[:1], "-_+") {
		return false
	}
	if strings.ToLower(s) != s {
		return false
	}
	return !strings.ContainsAny(s, `\/*?"<>|,#: `)
}
