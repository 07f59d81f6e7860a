package mapping

// PropertyDescriptor is a declared field of a schema with its type and owner.
type PropertyDescriptor struct {
	name         string
	declaredType Kind
	owner        string
	spec         FieldSpec
}

// NewPropertyDescriptor looks up field on the schema.
// Returns a *NotFoundError if the schema declares no such field.
func NewPropertyDescriptor(s *Schema, field string) (PropertyDescriptor, error) {
	spec, ok := s.Field(field)
	if !ok {
		return PropertyDescriptor{}, &NotFoundError{Entity: s.Type, Property: field}
	}
	return PropertyDescriptor{
		name:         spec.Name,
		declaredType: spec.Type,
		owner:        s.Type,
		spec:         spec,
	}, nil
}

// Name returns the declared property name.
func (d PropertyDescriptor) Name() string { return d.name }

// DeclaredType returns the declared kind.
func (d PropertyDescriptor) DeclaredType() Kind { return d.declaredType }

// Owner returns the type identifier of the owning entity.
func (d PropertyDescriptor) Owner() string { return d.owner }

// PersistentProperty is a property with its search-engine semantics resolved.
type PersistentProperty struct {
	PropertyDescriptor

	entity    *PersistentEntity
	fieldName string
	fieldType FieldType
	isID      bool
	isVersion bool
	isScore   bool
}

// NewPersistentProperty derives role flags and the field name for d.
// A version property must be declared int64 and a score property float32 or
// float64; neither, nor an id, may be repeated. Violations are rejected here,
// whether or not the property is ever added to the entity.
func NewPersistentProperty(d PropertyDescriptor, owner *PersistentEntity) (*PersistentProperty, error) {
	if owner == nil {
		return nil, newMappingError(d.owner, d.name, "property has no owning entity")
	}
	if d.owner != owner.Type() {
		return nil, newMappingError(owner.Type(), d.name, "property belongs to %s", d.owner)
	}

	p := &PersistentProperty{
		PropertyDescriptor: d,
		entity:             owner,
		fieldName:          d.spec.FieldName,
		isID:               d.spec.Role == RoleID,
		isVersion:          d.spec.Role == RoleVersion,
		isScore:            d.spec.Role == RoleScore,
	}
	if p.fieldName == "" {
		p.fieldName = d.name
	}
	if d.spec.Repeated && d.spec.Role != RolePlain {
		return nil, newMappingError(owner.Type(), d.name,
			"%s property must hold a single value, not an array", d.spec.Role)
	}
	if p.isVersion && d.declaredType != KindInt64 {
		return nil, newMappingError(owner.Type(), d.name,
			"version property must be of type int64, got %s", d.declaredType)
	}
	if p.isScore && d.declaredType != KindFloat32 && d.declaredType != KindFloat64 {
		return nil, newMappingError(owner.Type(), d.name,
			"score property must be of type float32 or float64, got %s", d.declaredType)
	}
	p.fieldType = p.inferFieldType()
	return p, nil
}

func (p *PersistentProperty) inferFieldType() FieldType {
	if p.spec.FieldType != FieldTypeAuto {
		return p.spec.FieldType
	}
	switch p.declaredType {
	case KindString:
		if p.isID {
			return FieldTypeKeyword
		}
		return FieldTypeText
	case KindInt, KindInt32:
		return FieldTypeInteger
	case KindInt64:
		return FieldTypeLong
	case KindFloat32:
		return FieldTypeFloat
	case KindFloat64:
		return FieldTypeDouble
	case KindBool:
		return FieldTypeBoolean
	case KindTime:
		return FieldTypeDate
	default:
		return FieldTypeObject
	}
}

// Entity returns the owning entity.
func (p *PersistentProperty) Entity() *PersistentEntity { return p.entity }

// FieldName returns the externally visible field name.
func (p *PersistentProperty) FieldName() string { return p.fieldName }

// FieldType returns the explicit or inferred Elasticsearch type.
func (p *PersistentProperty) FieldType() FieldType { return p.fieldType }

// Analyzer returns the index analyzer, if any.
func (p *PersistentProperty) Analyzer() string { return p.spec.Analyzer }

// SearchAnalyzer returns the search analyzer, if any.
func (p *PersistentProperty) SearchAnalyzer() string { return p.spec.SearchAnalyzer }

// Format returns the date format, if any.
func (p *PersistentProperty) Format() string { return p.spec.Format }

// Indexed reports whether the field is searchable.
func (p *PersistentProperty) Indexed() bool { return !p.spec.NotIndexed }

// IsID reports whether the property is the document identifier.
func (p *PersistentProperty) IsID() bool { return p.isID }

// IsVersion reports whether the property holds the optimistic-concurrency version.
func (p *PersistentProperty) IsVersion() bool { return p.isVersion }

// IsScore reports whether the property receives the relevance score.
func (p *PersistentProperty) IsScore() bool { return p.isScore }

// IsWritable reports whether the property is stored in _source.
// Version and score come from hit metadata.
func (p *PersistentProperty) IsWritable() bool { return !p.isVersion && !p.isScore }
