package esdata

import (
	"github.com/kailas-cloud/esdata/internal/domain"
	"github.com/kailas-cloud/esdata/internal/mapping"
)

// Sentinel errors. Match them with errors.Is.
var (
	ErrUnknownEntity    = domain.ErrUnknownEntity
	ErrInvalidMapping   = domain.ErrInvalidMapping
	ErrPropertyNotFound = domain.ErrPropertyNotFound
	ErrIndexNotFound    = domain.ErrIndexNotFound
	ErrDocumentNotFound = domain.ErrDocumentNotFound
	ErrInvalidDocument  = domain.ErrInvalidDocument
	ErrInvalidQuery     = domain.ErrInvalidQuery
	ErrAlreadyExists    = domain.ErrAlreadyExists
	ErrVersionConflict  = domain.ErrVersionConflict

	// ErrMapping is the root of every metadata error raised while scanning a type.
	ErrMapping = mapping.ErrMapping
)

// VersionConflictError carries the id and version rejected by external versioning.
type VersionConflictError = domain.VersionConflictError

// MappingError names the entity and property whose metadata is invalid.
type MappingError = mapping.MappingError
