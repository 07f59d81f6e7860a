package entity

import (
	"context"

	"github.com/kailas-cloud/esdata/internal/db"
	"github.com/kailas-cloud/esdata/internal/mapping"
)

// MappingContext resolves entity metadata by type identifier.
type MappingContext interface {
	Types() []string
	GetRequiredPersistentEntity(entityType string) (*mapping.PersistentEntity, error)
}

// IndexRepository manages the index behind an entity.
type IndexRepository interface {
	Definition(e *mapping.PersistentEntity) (*db.IndexDefinition, error)
	Ensure(ctx context.Context, e *mapping.PersistentEntity) (created bool, err error)
	Exists(ctx context.Context, e *mapping.PersistentEntity) (bool, error)
}
