package search

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/esdata/internal/domain"
	"github.com/kailas-cloud/esdata/internal/domain/search/request"
	"github.com/kailas-cloud/esdata/internal/domain/search/result"
)

// Service runs full-text and filtered searches over entity indices.
type Service struct {
	repo        Repository
	entities    EntityResolver
	defaultSize int
	maxSize     int
}

// New creates a search service.
func New(repo Repository, entities EntityResolver) *Service {
	return &Service{
		repo:        repo,
		entities:    entities,
		defaultSize: request.DefaultSize,
		maxSize:     request.MaxSize,
	}
}

// WithLimits configures the page size applied when none is requested and the upper bound.
func (s *Service) WithLimits(defaultSize, maxSize int) *Service {
	if defaultSize > 0 {
		s.defaultSize = defaultSize
	}
	if maxSize > 0 {
		s.maxSize = maxSize
	}
	return s
}

// Search validates p and runs it against the entity's index.
func (s *Service) Search(ctx context.Context, entityType string, p request.Params) (result.Page, error) {
	e, err := s.entities.Get(entityType)
	if err != nil {
		return result.Page{}, err //nolint:wrapcheck // resolver errors carry the entity type
	}

	if p.Size <= 0 {
		p.Size = s.defaultSize
	}
	req, err := request.New(p)
	if err != nil {
		return result.Page{}, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}
	req = req.WithSizeLimit(s.maxSize)

	page, err := s.repo.Search(ctx, e, &req)
	if err != nil {
		return result.Page{}, fmt.Errorf("search %s: %w", entityType, err)
	}
	return page, nil
}
