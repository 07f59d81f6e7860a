package mapping

import (
	"reflect"
)

// PersistentEntity is the mapped-field schema of one type.
// Properties keep declaration order; id/version/score are references into that list.
type PersistentEntity struct {
	schema     Schema
	properties []*PersistentProperty
	byName     map[string]*PersistentProperty
	byField    map[string]*PersistentProperty

	idProperty      *PersistentProperty
	versionProperty *PersistentProperty
	scoreProperty   *PersistentProperty

	sealed bool
}

// NewPersistentEntity creates an empty entity for the schema's type.
// Fields are not scanned; callers add properties explicitly.
func NewPersistentEntity(s Schema) *PersistentEntity {
	return &PersistentEntity{
		schema:  s.clone(),
		byName:  make(map[string]*PersistentProperty, len(s.Fields)),
		byField: make(map[string]*PersistentProperty, len(s.Fields)),
	}
}

// Type returns the type identifier.
func (e *PersistentEntity) Type() string { return e.schema.Type }

// Schema returns a copy of the descriptor the entity was created from.
// Changing it does not affect the entity.
func (e *PersistentEntity) Schema() Schema { return e.schema.clone() }

// ShouldCreateIndex reports whether ensure operations may create the index.
func (e *PersistentEntity) ShouldCreateIndex() bool { return e.schema.ShouldCreateIndex() }

// IndexName returns the Elasticsearch index the entity is stored in.
func (e *PersistentEntity) IndexName() string { return e.schema.IndexName() }

// GoType returns the struct type for tag-derived entities, or nil.
func (e *PersistentEntity) GoType() reflect.Type { return e.schema.goType }

// AddPersistentProperty appends p. All checks run before any mutation,
// so a rejected property leaves the entity unchanged.
func (e *PersistentEntity) AddPersistentProperty(p *PersistentProperty) error {
	if e.sealed {
		return newMappingError(e.Type(), p.Name(), "entity is sealed")
	}
	if p.entity != e {
		return newMappingError(e.Type(), p.Name(), "property belongs to another entity")
	}
	if _, ok := e.byName[p.Name()]; ok {
		return newMappingError(e.Type(), p.Name(), "duplicate property name")
	}
	if other, ok := e.byField[p.FieldName()]; ok {
		return newMappingError(e.Type(), p.Name(),
			"field name %q is already used by property %s", p.FieldName(), other.Name())
	}
	if p.IsID() && e.idProperty != nil {
		return newMappingError(e.Type(), p.Name(),
			"attempt to add id property %s (second) but property %s (first) is already registered as id",
			p.Name(), e.idProperty.Name())
	}
	if p.IsVersion() && e.versionProperty != nil {
		return newMappingError(e.Type(), p.Name(),
			"attempt to add version property %s (second) but property %s (first) is already registered as version",
			p.Name(), e.versionProperty.Name())
	}
	if p.IsScore() && e.scoreProperty != nil {
		return newMappingError(e.Type(), p.Name(),
			"attempt to add score property %s (second) but property %s (first) is already registered as score",
			p.Name(), e.scoreProperty.Name())
	}

	e.properties = append(e.properties, p)
	e.byName[p.Name()] = p
	e.byField[p.FieldName()] = p
	switch {
	case p.IsID():
		e.idProperty = p
	case p.IsVersion():
		e.versionProperty = p
	case p.IsScore():
		e.scoreProperty = p
	}
	return nil
}

// seal marks the scan as complete.
func (e *PersistentEntity) seal() { e.sealed = true }

// Sealed reports whether the entity is fully populated and immutable.
func (e *PersistentEntity) Sealed() bool { return e.sealed }

// Properties returns the properties in declaration order.
func (e *PersistentEntity) Properties() []*PersistentProperty {
	out := make([]*PersistentProperty, len(e.properties))
	copy(out, e.properties)
	return out
}

// GetPersistentProperty resolves a property by its declared name.
func (e *PersistentEntity) GetPersistentProperty(name string) (*PersistentProperty, bool) {
	p, ok := e.byName[name]
	return p, ok
}

// GetPersistentPropertyWithFieldName resolves a property by its external field name.
// Declared names do not match unless they equal the field name.
func (e *PersistentEntity) GetPersistentPropertyWithFieldName(fieldName string) (*PersistentProperty, bool) {
	p, ok := e.byField[fieldName]
	return p, ok
}

// ResolveFieldName maps a field name or a declared name to the external field name.
// Field names win when both namespaces contain ref.
func (e *PersistentEntity) ResolveFieldName(ref string) (*PersistentProperty, error) {
	if p, ok := e.byField[ref]; ok {
		return p, nil
	}
	if p, ok := e.byName[ref]; ok {
		return p, nil
	}
	return nil, &NotFoundError{Entity: e.Type(), Property: ref}
}

// IDProperty returns the identifier property.
func (e *PersistentEntity) IDProperty() (*PersistentProperty, bool) {
	return e.idProperty, e.idProperty != nil
}

// VersionProperty returns the version property.
func (e *PersistentEntity) VersionProperty() (*PersistentProperty, bool) {
	return e.versionProperty, e.versionProperty != nil
}

// ScoreProperty returns the score property.
func (e *PersistentEntity) ScoreProperty() (*PersistentProperty, bool) {
	return e.scoreProperty, e.scoreProperty != nil
}
