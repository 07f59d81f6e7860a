package esdata

import (
	"reflect"

	"github.com/kailas-cloud/esdata/internal/mapping"
)

// Schema describes an entity without a Go type. Struct types are described by `es` tags instead.
type Schema = mapping.Schema

// FieldSpec describes one property of a Schema.
type FieldSpec = mapping.FieldSpec

// Kind is the declared type of a property.
type Kind = mapping.Kind

// Role marks the identifier, version and score properties.
type Role = mapping.Role

// FieldType is the Elasticsearch mapping type of a property.
type FieldType = mapping.FieldType

// MappingContext resolves entity types to their persistent metadata.
type MappingContext = mapping.Context

// PersistentEntity is the sealed metadata of one entity.
type PersistentEntity = mapping.PersistentEntity

// PersistentProperty is the metadata of one property.
type PersistentProperty = mapping.PersistentProperty

// Property kinds.
const (
	KindString  = mapping.KindString
	KindInt     = mapping.KindInt
	KindInt32   = mapping.KindInt32
	KindInt64   = mapping.KindInt64
	KindFloat32 = mapping.KindFloat32
	KindFloat64 = mapping.KindFloat64
	KindBool    = mapping.KindBool
	KindTime    = mapping.KindTime
	KindObject  = mapping.KindObject
)

// Property roles.
const (
	RoleID      = mapping.RoleID
	RoleVersion = mapping.RoleVersion
	RoleScore   = mapping.RoleScore
)

// Mapping types.
const (
	FieldTypeText    = mapping.FieldTypeText
	FieldTypeKeyword = mapping.FieldTypeKeyword
	FieldTypeLong    = mapping.FieldTypeLong
	FieldTypeInteger = mapping.FieldTypeInteger
	FieldTypeFloat   = mapping.FieldTypeFloat
	FieldTypeDouble  = mapping.FieldTypeDouble
	FieldTypeBoolean = mapping.FieldTypeBoolean
	FieldTypeDate    = mapping.FieldTypeDate
	FieldTypeObject  = mapping.FieldTypeObject
)

// TypeOf returns the type identifier under which T is registered.
func TypeOf[T any]() string {
	return mapping.TypeName(reflect.TypeFor[T]())
}
