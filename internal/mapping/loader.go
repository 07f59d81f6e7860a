package mapping

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// schemaFile is the on-disk layout of a schema descriptor file.
type schemaFile struct {
	Entities []Schema `yaml:"entities"`
}

// LoadSchemas decodes a YAML document holding an `entities` list.
// Unknown keys are rejected so typos in role or field options surface early.
func LoadSchemas(r io.Reader) ([]Schema, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f schemaFile
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode schemas: %w", err)
	}
	for i := range f.Entities {
		if err := f.Entities[i].Validate(); err != nil {
			return nil, fmt.Errorf("entity #%d: %w", i, err)
		}
	}
	return f.Entities, nil
}

// LoadSchemaFile reads schemas from a YAML file.
func LoadSchemaFile(path string) ([]Schema, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read schema file %s: %w", path, err)
	}
	schemas, err := LoadSchemas(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("schema file %s: %w", path, err)
	}
	return schemas, nil
}

// LoadSchemaFiles reads every file in order and rejects a type declared twice.
func LoadSchemaFiles(paths ...string) ([]Schema, error) {
	var all []Schema
	seen := make(map[string]string)
	for _, p := range paths {
		schemas, err := LoadSchemaFile(p)
		if err != nil {
			return nil, err
		}
		for _, s := range schemas {
			if prev, ok := seen[s.Type]; ok {
				return nil, fmt.Errorf("entity %q declared in both %s and %s: %w", s.Type, prev, p, ErrMapping)
			}
			seen[s.Type] = p
			all = append(all, s)
		}
	}
	return all, nil
}
