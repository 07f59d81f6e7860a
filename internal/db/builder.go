package db

// IndexBuilder is a fluent builder for index definitions.
type IndexBuilder struct {
	def IndexDefinition
}

// NewIndex starts building an index definition.
func NewIndex(name string) *IndexBuilder {
	return &IndexBuilder{def: IndexDefinition{Name: name}}
}

// Shards sets number_of_shards.
func (b *IndexBuilder) Shards(n int) *IndexBuilder {
	b.def.Shards = n
	return b
}

// Replicas sets number_of_replicas.
func (b *IndexBuilder) Replicas(n int) *IndexBuilder {
	b.def.Replicas = &n
	return b
}

// RefreshInterval sets refresh_interval, e.g. "1s" or "-1".
func (b *IndexBuilder) RefreshInterval(interval string) *IndexBuilder {
	b.def.RefreshInterval = interval
	return b
}

// Text adds a text field with optional index and search analyzers.
func (b *IndexBuilder) Text(name, analyzer, searchAnalyzer string) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{
		Name:           name,
		Type:           IndexFieldText,
		Analyzer:       analyzer,
		SearchAnalyzer: searchAnalyzer,
	})
	return b
}

// Keyword adds a keyword field.
func (b *IndexBuilder) Keyword(name string) *IndexBuilder {
	return b.Field(IndexField{Name: name, Type: IndexFieldKeyword})
}

// Long adds a long field.
func (b *IndexBuilder) Long(name string) *IndexBuilder {
	return b.Field(IndexField{Name: name, Type: IndexFieldLong})
}

// Date adds a date field with an optional format.
func (b *IndexBuilder) Date(name, format string) *IndexBuilder {
	return b.Field(IndexField{Name: name, Type: IndexFieldDate, Format: format})
}

// Field adds an arbitrary field.
func (b *IndexBuilder) Field(f IndexField) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, f)
	return b
}

// Build validates and returns the index definition.
func (b *IndexBuilder) Build() (*IndexDefinition, error) {
	if err := b.def.Validate(); err != nil {
		return nil, err
	}
	def := b.def
	def.Fields = append([]IndexField(nil), b.def.Fields...)
	return &def, nil
}

// MustBuild calls Build and panics on error.
func (b *IndexBuilder) MustBuild() *IndexDefinition {
	def, err := b.Build()
	if err != nil {
		panic(err)
	}
	return def
}

// String returns the create-index body for debugging.
func (idx *IndexDefinition) String() string {
	body, err := idx.Body()
	if err != nil {
		return idx.Name
	}
	return "PUT /" + idx.Name + " " + string(body)
}
