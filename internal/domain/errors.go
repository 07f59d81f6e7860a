package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists signals a duplicate resource.
	ErrAlreadyExists = errors.New("already exists")
	// ErrUnknownEntity signals a type identifier without a registered schema.
	ErrUnknownEntity = errors.New("unknown entity")
	// ErrInvalidMapping signals an entity whose metadata cannot be built.
	ErrInvalidMapping = errors.New("invalid mapping")
	// ErrPropertyNotFound signals a field reference the entity does not declare.
	ErrPropertyNotFound = errors.New("property not found")
	// ErrIndexNotFound signals a missing index.
	ErrIndexNotFound = errors.New("index not found")
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrInvalidDocument signals a document rejected by validation.
	ErrInvalidDocument = errors.New("invalid document")
	// ErrInvalidQuery signals a search request rejected by validation.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrVersionConflict signals an optimistic locking conflict.
	ErrVersionConflict = errors.New("version conflict")
)

// VersionConflictError wraps ErrVersionConflict with the version that was rejected.
type VersionConflictError struct {
	ID               string
	AttemptedVersion int64
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("%s: document %q rejected version %d", ErrVersionConflict.Error(), e.ID, e.AttemptedVersion)
}

func (e *VersionConflictError) Unwrap() error { return ErrVersionConflict }

// NewVersionConflict creates a version conflict error.
func NewVersionConflict(id string, attempted int64) error {
	return &VersionConflictError{ID: id, AttemptedVersion: attempted}
}
