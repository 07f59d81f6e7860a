package search

import (
	"context"

	"github.com/kailas-cloud/esdata/internal/domain/search/request"
	"github.com/kailas-cloud/esdata/internal/domain/search/result"
	"github.com/kailas-cloud/esdata/internal/mapping"
)

// Repository defines the storage contract for search operations.
type Repository interface {
	Search(ctx context.Context, e *mapping.PersistentEntity, req *request.Request) (result.Page, error)
}

// EntityResolver resolves entity metadata and maps lookup failures to domain errors.
type EntityResolver interface {
	Get(entityType string) (*mapping.PersistentEntity, error)
}
