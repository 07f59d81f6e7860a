package mapping

import (
	"fmt"
	"reflect"
	"strings"
)

// Kind is the declared type of a schema field.
type Kind string

// Declared kinds.
const (
	KindString  Kind = "string"
	KindBool    Kind = "bool"
	KindInt     Kind = "int"
	KindInt32   Kind = "int32"
	KindInt64   Kind = "int64"
	KindFloat32 Kind = "float32"
	KindFloat64 Kind = "float64"
	KindTime    Kind = "time"
	KindObject  Kind = "object"
)

// IsValid reports whether k is a known kind.
func (k Kind) IsValid() bool {
	switch k {
	case KindString, KindBool, KindInt, KindInt32, KindInt64,
		KindFloat32, KindFloat64, KindTime, KindObject:
		return true
	}
	return false
}

// Role marks the search-specific meaning of a field.
type Role string

// Field roles. RolePlain is the zero value.
const (
	RolePlain   Role = ""
	RoleID      Role = "id"
	RoleVersion Role = "version"
	RoleScore   Role = "score"
)

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	switch r {
	case RolePlain, RoleID, RoleVersion, RoleScore:
		return true
	}
	return false
}

// FieldType is the Elasticsearch mapping type of a field.
type FieldType string

// Elasticsearch field types. FieldTypeAuto lets the property infer one from its kind.
const (
	FieldTypeAuto    FieldType = ""
	FieldTypeText    FieldType = "text"
	FieldTypeKeyword FieldType = "keyword"
	FieldTypeLong    FieldType = "long"
	FieldTypeInteger FieldType = "integer"
	FieldTypeFloat   FieldType = "float"
	FieldTypeDouble  FieldType = "double"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeDate    FieldType = "date"
	FieldTypeObject  FieldType = "object"
)

// IsValid reports whether t is a supported field type. The empty type means inferred.
func (t FieldType) IsValid() bool {
	switch t {
	case FieldTypeAuto, FieldTypeText, FieldTypeKeyword, FieldTypeLong, FieldTypeInteger,
		FieldTypeFloat, FieldTypeDouble, FieldTypeBoolean, FieldTypeDate, FieldTypeObject:
		return true
	}
	return false
}

// FieldSpec describes one declared field of an entity.
type FieldSpec struct {
	Name           string    `yaml:"name"`
	Type           Kind      `yaml:"type"`
	Role           Role      `yaml:"role,omitempty"`
	FieldName      string    `yaml:"field,omitempty"`
	FieldType      FieldType `yaml:"field_type,omitempty"`
	Analyzer       string    `yaml:"analyzer,omitempty"`
	SearchAnalyzer string    `yaml:"search_analyzer,omitempty"`
	Format         string    `yaml:"format,omitempty"`
	NotIndexed     bool      `yaml:"not_indexed,omitempty"`
	// Repeated marks an array field; each element has the declared kind.
	Repeated bool `yaml:"repeated,omitempty"`

	// structIndex locates the Go struct field for tag-derived schemas.
	structIndex []int
}

// Schema is the explicit descriptor of a mapped type.
type Schema struct {
	Type            string      `yaml:"type"`
	Index           string      `yaml:"index,omitempty"`
	Shards          int         `yaml:"shards,omitempty"`
	Replicas        *int        `yaml:"replicas,omitempty"`
	RefreshInterval string      `yaml:"refresh_interval,omitempty"`
	CreateIndex     *bool       `yaml:"create_index,omitempty"`
	Fields          []FieldSpec `yaml:"fields"`

	goType reflect.Type
}

// IndexName returns the configured index or the lower-cased type name.
func (s *Schema) IndexName() string {
	if s.Index != "" {
		return s.Index
	}
	return strings.ToLower(s.Type)
}

// ShouldCreateIndex reports whether ensure operations may create the index. Defaults to true.
func (s *Schema) ShouldCreateIndex() bool {
	return s.CreateIndex == nil || *s.CreateIndex
}

// clone returns a copy sharing no mutable state with s.
func (s *Schema) clone() Schema {
	out := *s
	if s.Replicas != nil {
		n := *s.Replicas
		out.Replicas = &n
	}
	if s.CreateIndex != nil {
		b := *s.CreateIndex
		out.CreateIndex = &b
	}
	if s.Fields != nil {
		out.Fields = make([]FieldSpec, len(s.Fields))
		for i, f := range s.Fields {
			f.structIndex = append([]int(nil), f.structIndex...)
			out.Fields[i] = f
		}
	}
	return out
}

// Field returns the spec of the declared field name.
func (s *Schema) Field(name string) (FieldSpec, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// Validate checks the descriptor shape. Cross-property rules are enforced by the entity.
func (s *Schema) Validate() error {
	if s.Type == "" {
		return fmt.Errorf("schema type is required: %w", ErrMapping)
	}
	if s.Shards < 0 {
		return newMappingError(s.Type, "", "shards must not be negative, got %d", s.Shards)
	}
	if s.Replicas != nil && *s.Replicas < 0 {
		return newMappingError(s.Type, "", "replicas must not be negative, got %d", *s.Replicas)
	}
	seen := make(map[string]bool, len(s.Fields))
	for i, f := range s.Fields {
		if f.Name == "" {
			return newMappingError(s.Type, "", "field name is required at position %d", i)
		}
		if seen[f.Name] {
			return newMappingError(s.Type, f.Name, "duplicate field declaration")
		}
		seen[f.Name] = true
		if !f.Type.IsValid() {
			return newMappingError(s.Type, f.Name, "unknown type %q", f.Type)
		}
		if !f.Role.IsValid() {
			return newMappingError(s.Type, f.Name, "unknown role %q", f.Role)
		}
		if !f.FieldType.IsValid() {
			return newMappingError(s.Type, f.Name, "unknown field type %q", f.FieldType)
		}
	}
	return nil
}
