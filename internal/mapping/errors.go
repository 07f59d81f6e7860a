package mapping

import (
	"errors"
	"fmt"
)

var (
	// ErrMapping signals a static schema defect detected while building metadata.
	ErrMapping = errors.New("mapping error")
	// ErrPropertyNotFound signals a field that does not exist on the scanned type.
	ErrPropertyNotFound = errors.New("property not found")
	// ErrUnknownEntity signals a type that was never registered with the context.
	ErrUnknownEntity = errors.New("unknown entity")
)

// MappingError describes a rejected property or schema.
//
//nolint:revive // mapping.MappingError reads better at call sites than mapping.Error.
type MappingError struct {
	Entity   string
	Property string
	Reason   string
}

func (e *MappingError) Error() string {
	if e.Property == "" {
		return fmt.Sprintf("mapping %s: %s", e.Entity, e.Reason)
	}
	return fmt.Sprintf("mapping %s.%s: %s", e.Entity, e.Property, e.Reason)
}

func (e *MappingError) Unwrap() error { return ErrMapping }

func newMappingError(entity, property, format string, args ...any) error {
	return &MappingError{Entity: entity, Property: property, Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a field name missing from a schema.
type NotFoundError struct {
	Entity   string
	Property string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: no field %q on %s", ErrPropertyNotFound, e.Property, e.Entity)
}

func (e *NotFoundError) Unwrap() error { return ErrPropertyNotFound }
