package entity

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/esdata/internal/db"
	"github.com/kailas-cloud/esdata/internal/domain"
	"github.com/kailas-cloud/esdata/internal/mapping"
)

// ensureConcurrency bounds parallel index calls during EnsureAll.
const ensureConcurrency = 4

// EnsureResult is the outcome of ensuring one entity's index.
type EnsureResult struct {
	Type    string
	Index   string
	Created bool
}

// Service exposes the registered entities and their indices.
type Service struct {
	entities MappingContext
	indices  IndexRepository
}

// New creates an entity service.
func New(entities MappingContext, indices IndexRepository) *Service {
	return &Service{entities: entities, indices: indices}
}

// Types returns the registered type identifiers, sorted.
func (s *Service) Types() []string {
	return s.entities.Types()
}

// Get returns the entity for a type identifier, building it on first use.
func (s *Service) Get(entityType string) (*mapping.PersistentEntity, error) {
	e, err := s.entities.GetRequiredPersistentEntity(entityType)
	switch {
	case err == nil:
		return e, nil
	case errors.Is(err, mapping.ErrUnknownEntity):
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownEntity, entityType)
	case errors.Is(err, mapping.ErrMapping):
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidMapping, err)
	default:
		return nil, fmt.Errorf("entity %s: %w", entityType, err)
	}
}

// List returns every registered entity. A single broken schema fails the whole call.
func (s *Service) List() ([]*mapping.PersistentEntity, error) {
	types := s.entities.Types()
	out := make([]*mapping.PersistentEntity, 0, len(types))
	for _, t := range types {
		e, err := s.Get(t)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// Mapping returns the index definition the entity's index is created with.
func (s *Service) Mapping(entityType string) (*db.IndexDefinition, error) {
	e, err := s.Get(entityType)
	if err != nil {
		return nil, err
	}
	def, err := s.indices.Definition(e)
	if err != nil {
		return nil, fmt.Errorf("mapping %s: %w", entityType, err)
	}
	return def, nil
}

// PropertyByFieldName looks up the property stored under fieldName.
func (s *Service) PropertyByFieldName(entityType, fieldName string) (*mapping.PersistentProperty, error) {
	e, err := s.Get(entityType)
	if err != nil {
		return nil, err
	}
	p, ok := e.GetPersistentPropertyWithFieldName(fieldName)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", domain.ErrPropertyNotFound, entityType, fieldName)
	}
	return p, nil
}

// IndexExists reports whether the entity's index exists.
func (s *Service) IndexExists(ctx context.Context, entityType string) (bool, error) {
	e, err := s.Get(entityType)
	if err != nil {
		return false, err
	}
	ok, err := s.indices.Exists(ctx, e)
	if err != nil {
		return false, fmt.Errorf("index exists %s: %w", entityType, err)
	}
	return ok, nil
}

// Ensure creates the entity's index when missing and updates its mapping otherwise.
func (s *Service) Ensure(ctx context.Context, entityType string) (EnsureResult, error) {
	e, err := s.Get(entityType)
	if err != nil {
		return EnsureResult{}, err
	}
	created, err := s.indices.Ensure(ctx, e)
	if err != nil {
		return EnsureResult{}, fmt.Errorf("ensure %s: %w", entityType, err)
	}
	return EnsureResult{Type: e.Type(), Index: e.IndexName(), Created: created}, nil
}

// EnsureAll ensures the index of every registered entity. Results follow Types order.
// The first failure cancels the remaining calls.
func (s *Service) EnsureAll(ctx context.Context) ([]EnsureResult, error) {
	types := s.entities.Types()
	results := make([]EnsureResult, len(types))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ensureConcurrency)
	for i, t := range types {
		g.Go(func() error {
			r, err := s.Ensure(gctx, t)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err //nolint:wrapcheck // already wrapped by Ensure
	}
	return results, nil
}
