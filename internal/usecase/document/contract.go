package document

import (
	"context"

	"github.com/kailas-cloud/esdata/internal/domain/batch"
	domdoc "github.com/kailas-cloud/esdata/internal/domain/document"
	"github.com/kailas-cloud/esdata/internal/mapping"
)

// Repository defines the storage contract for documents.
type Repository interface {
	Save(ctx context.Context, e *mapping.PersistentEntity, doc *domdoc.Document) (saved domdoc.Document, created bool, err error)
	SaveAll(ctx context.Context, e *mapping.PersistentEntity, docs []domdoc.Document) ([]batch.Result, error)
	Get(ctx context.Context, e *mapping.PersistentEntity, id string) (domdoc.Document, error)
	Delete(ctx context.Context, e *mapping.PersistentEntity, id string) error
	Count(ctx context.Context, e *mapping.PersistentEntity) (int64, error)
}

// EntityResolver resolves entity metadata and maps lookup failures to domain errors.
type EntityResolver interface {
	Get(entityType string) (*mapping.PersistentEntity, error)
}
