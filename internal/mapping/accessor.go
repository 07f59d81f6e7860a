package mapping

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
)

// ToSource splits a struct value into document id, external version and _source.
// Only writable properties go into _source, keyed by field name.
// A zero or nil version yields a nil version.
func (e *PersistentEntity) ToSource(value any) (id string, version *int64, source map[string]any, err error) {
	v, err := e.structValue(value)
	if err != nil {
		return "", nil, nil, err
	}

	source = make(map[string]any, len(e.properties))
	for _, p := range e.properties {
		fv := v.FieldByIndex(p.spec.structIndex)
		if p.IsWritable() {
			source[p.FieldName()] = fv.Interface()
		}
	}

	if p, ok := e.IDProperty(); ok {
		id = formatID(v.FieldByIndex(p.spec.structIndex))
	}
	if p, ok := e.VersionProperty(); ok {
		fv := indirect(v.FieldByIndex(p.spec.structIndex))
		if fv.IsValid() && fv.Int() != 0 {
			n := fv.Int()
			version = &n
		}
	}
	return id, version, source, nil
}

// FromHit populates dst (a pointer to the entity's struct) from a stored document.
// Source keys without a matching field name are ignored.
func (e *PersistentEntity) FromHit(dst any, id string, version int64, score float64, source []byte) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("%s: destination must be a non-nil pointer: %w", e.Type(), ErrMapping)
	}
	v, err := e.structValue(rv.Interface())
	if err != nil {
		return err
	}

	if len(source) > 0 {
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(source, &raw); err != nil {
			return fmt.Errorf("%s: decode source: %w", e.Type(), err)
		}
		for _, p := range e.properties {
			msg, ok := raw[p.FieldName()]
			if !ok || !p.IsWritable() {
				continue
			}
			fv := v.FieldByIndex(p.spec.structIndex)
			if err := json.Unmarshal(msg, fv.Addr().Interface()); err != nil {
				return fmt.Errorf("%s.%s: decode field %q: %w", e.Type(), p.Name(), p.FieldName(), err)
			}
		}
	}

	if p, ok := e.IDProperty(); ok && id != "" {
		if err := setID(v.FieldByIndex(p.spec.structIndex), id); err != nil {
			return fmt.Errorf("%s.%s: %w", e.Type(), p.Name(), err)
		}
	}
	if p, ok := e.VersionProperty(); ok {
		allocate(v.FieldByIndex(p.spec.structIndex)).SetInt(version)
	}
	if p, ok := e.ScoreProperty(); ok {
		fv := allocate(v.FieldByIndex(p.spec.structIndex))
		if fv.CanFloat() {
			fv.SetFloat(score)
		}
	}
	return nil
}

// structValue returns the addressable struct behind value.
func (e *PersistentEntity) structValue(value any) (reflect.Value, error) {
	if e.schema.goType == nil {
		return reflect.Value{}, fmt.Errorf("%s: entity has no Go type: %w", e.Type(), ErrMapping)
	}
	v := reflect.ValueOf(value)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Value{}, fmt.Errorf("%s: nil value: %w", e.Type(), ErrMapping)
		}
		v = v.Elem()
	}
	if v.Type() != e.schema.goType {
		return reflect.Value{}, fmt.Errorf("%s: got value of type %s: %w", e.Type(), v.Type(), ErrMapping)
	}
	if !v.CanAddr() {
		cp := reflect.New(v.Type()).Elem()
		cp.Set(v)
		v = cp
	}
	return v, nil
}

func indirect(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

// allocate dereferences v, creating pointees on the way.
func allocate(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		v = v.Elem()
	}
	return v
}

func formatID(v reflect.Value) string {
	v = indirect(v)
	if !v.IsValid() {
		return ""
	}
	switch {
	case v.Kind() == reflect.String:
		return v.String()
	case v.CanInt():
		if v.Int() == 0 {
			return ""
		}
		return strconv.FormatInt(v.Int(), 10)
	case v.CanUint():
		if v.Uint() == 0 {
			return ""
		}
		return strconv.FormatUint(v.Uint(), 10)
	default:
		return fmt.Sprint(v.Interface())
	}
}

func setID(v reflect.Value, id string) error {
	v = allocate(v)
	switch {
	case v.Kind() == reflect.String:
		v.SetString(id)
	case v.CanInt():
		n, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return fmt.Errorf("id %q is not an integer: %w", id, err)
		}
		v.SetInt(n)
	case v.CanUint():
		n, err := strconv.ParseUint(id, 10, 64)
		if err != nil {
			return fmt.Errorf("id %q is not an unsigned integer: %w", id, err)
		}
		v.SetUint(n)
	default:
		return fmt.Errorf("cannot assign id to %s", v.Type())
	}
	return nil
}
