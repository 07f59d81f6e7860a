package mapping

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// TagKey is the struct tag read by SchemaOf.
const TagKey = "es"

var timeType = reflect.TypeFor[time.Time]()

// TypeName returns the type identifier used for tag-derived schemas.
func TypeName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

// SchemaOf derives a schema from T's exported fields and `es` tags.
//
//	type Book struct {
//	    _       struct{} `es:"index=books,shards=1"`
//	    ID      string   `es:"id,id"`
//	    Title   string   `es:"title,type=text,analyzer=english"`
//	    Version int64    `es:",version"`
//	    Score   float32  `es:",score"`
//	    Secret  string   `es:"-"`
//	}
//
// The first tag element overrides the field name; options follow.
func SchemaOf[T any]() (Schema, error) {
	return schemaOfType(reflect.TypeFor[T]())
}

func schemaOfType(t reflect.Type) (Schema, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return Schema{}, fmt.Errorf("type %s is not a struct: %w", t, ErrMapping)
	}

	s := Schema{
		Type:   TypeName(t),
		Index:  strings.ToLower(t.Name()),
		goType: t,
	}
	for i := range t.NumField() {
		f := t.Field(i)
		tag, hasTag := f.Tag.Lookup(TagKey)
		if f.Name == "_" {
			if hasTag {
				if err := applyDocumentTag(&s, tag); err != nil {
					return Schema{}, err
				}
			}
			continue
		}
		if !f.IsExported() || tag == "-" || f.Anonymous {
			continue
		}
		spec, err := fieldSpecOf(s.Type, f, tag)
		if err != nil {
			return Schema{}, err
		}
		s.Fields = append(s.Fields, spec)
	}
	if err := s.Validate(); err != nil {
		return Schema{}, err
	}
	return s, nil
}

func applyDocumentTag(s *Schema, tag string) error {
	for _, opt := range strings.Split(tag, ",") {
		key, val, _ := strings.Cut(strings.TrimSpace(opt), "=")
		switch key {
		case "":
		case "index":
			s.Index = val
		case "shards", "replicas":
			n, err := strconv.Atoi(val)
			if err != nil {
				return newMappingError(s.Type, "", "invalid %s %q", key, val)
			}
			if key == "shards" {
				s.Shards = n
			} else {
				s.Replicas = &n
			}
		case "refresh":
			s.RefreshInterval = val
		case "nocreate":
			no := false
			s.CreateIndex = &no
		default:
			return newMappingError(s.Type, "", "unknown document option %q", key)
		}
	}
	return nil
}

func fieldSpecOf(owner string, f reflect.StructField, tag string) (FieldSpec, error) {
	kind, ok := kindOf(f.Type)
	if !ok {
		return FieldSpec{}, newMappingError(owner, f.Name, "unsupported Go type %s", f.Type)
	}
	spec := FieldSpec{Name: f.Name, Type: kind, Repeated: isRepeated(f.Type), structIndex: f.Index}
	if tag == "" {
		return spec, nil
	}

	parts := strings.Split(tag, ",")
	spec.FieldName = strings.TrimSpace(parts[0])
	for _, opt := range parts[1:] {
		key, val, _ := strings.Cut(strings.TrimSpace(opt), "=")
		switch key {
		case "":
		case "id":
			spec.Role = RoleID
		case "version":
			spec.Role = RoleVersion
		case "score":
			spec.Role = RoleScore
		case "type":
			spec.FieldType = FieldType(val)
		case "analyzer":
			spec.Analyzer = val
		case "search_analyzer":
			spec.SearchAnalyzer = val
		case "format":
			spec.Format = val
		case "noindex":
			spec.NotIndexed = true
		default:
			return FieldSpec{}, newMappingError(owner, f.Name, "unknown tag option %q", key)
		}
	}
	return spec, nil
}

// kindOf maps a Go type to a declared kind. Slices map to their element kind,
// since Elasticsearch arrays share the element mapping.
func kindOf(t reflect.Type) (Kind, bool) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == timeType {
		return KindTime, true
	}
	switch t.Kind() {
	case reflect.String:
		return KindString, true
	case reflect.Bool:
		return KindBool, true
	case reflect.Int, reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return KindInt, true
	case reflect.Int8, reflect.Int16, reflect.Int32:
		return KindInt32, true
	case reflect.Int64:
		return KindInt64, true
	case reflect.Float32:
		return KindFloat32, true
	case reflect.Float64:
		return KindFloat64, true
	case reflect.Struct, reflect.Map:
		return KindObject, true
	case reflect.Slice, reflect.Array:
		return kindOf(t.Elem())
	default:
		return "", false
	}
}

// isRepeated reports whether t holds many values of its kind.
func isRepeated(t reflect.Type) bool {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Slice || t.Kind() == reflect.Array
}

// EntityFor registers T's tag-derived schema on first use and resolves its entity.
func EntityFor[T any](c *Context) (*PersistentEntity, error) {
	t := reflect.TypeFor[T]()
	name := TypeName(t)
	if e, ok := c.GetPersistentEntity(name); ok {
		return e, nil
	}
	if !c.registered(name) {
		s, err := schemaOfType(t)
		if err != nil {
			return nil, fmt.Errorf("entity %q: %w", name, err)
		}
		c.registerIfAbsent(s)
	}
	return c.GetRequiredPersistentEntity(name)
}
