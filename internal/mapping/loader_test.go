package mapping

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const librarySchemas = `
entities:
  - type: book
    index: books
    shards: 1
    replicas: 0
    fields:
      - name: id
        type: string
        role: id
      - name: title
        type: string
        analyzer: english
      - name: renamedField
        type: string
        field: renamed-field
        field_type: keyword
      - name: version
        type: int64
        role: version
  - type: author
    fields:
      - name: name
        type: string
`

func TestLoadSchemas(t *testing.T) {
	schemas, err := LoadSchemas(strings.NewReader(librarySchemas))
	if err != nil {
		t.Fatal(err)
	}
	if len(schemas) != 2 {
		t.Fatalf("schemas = %d, want 2", len(schemas))
	}
	book := schemas[0]
	if book.IndexName() != "books" || book.Replicas == nil || *book.Replicas != 0 {
		t.Errorf("book = %+v", book)
	}
	f, ok := book.Field("renamedField")
	if !ok || f.FieldName != "renamed-field" || f.FieldType != FieldTypeKeyword {
		t.Errorf("renamedField = %+v", f)
	}
	if schemas[1].IndexName() != "author" {
		t.Errorf("author index = %q", schemas[1].IndexName())
	}
}

func TestLoadSchemas_Empty(t *testing.T) {
	schemas, err := LoadSchemas(strings.NewReader(""))
	if err != nil || schemas != nil {
		t.Errorf("got %v, %v", schemas, err)
	}
}

func TestLoadSchemas_Invalid(t *testing.T) {
	tests := map[string]string{
		"unknown key":        "entities:\n  - type: a\n    colour: red\n",
		"unknown kind":       "entities:\n  - type: a\n    fields:\n      - name: x\n        type: uuid\n",
		"unknown role":       "entities:\n  - type: a\n    fields:\n      - name: x\n        type: string\n        role: primary\n",
		"missing type":       "entities:\n  - index: a\n",
		"unknown field type": "entities:\n  - type: a\n    fields:\n      - name: x\n        type: string\n        field_type: keywrod\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadSchemas(strings.NewReader(doc)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadSchemaFiles_DuplicateType(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.yaml")
	b := filepath.Join(dir, "b.yaml")
	if err := os.WriteFile(a, []byte(librarySchemas), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(b, []byte("entities:\n  - type: book\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadSchemaFiles(a); err != nil {
		t.Fatalf("single file: %v", err)
	}
	if _, err := LoadSchemaFiles(a, b); !errors.Is(err, ErrMapping) {
		t.Errorf("expected ErrMapping, got %v", err)
	}
	if _, err := LoadSchemaFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
