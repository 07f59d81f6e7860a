package document

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/esdata/internal/domain"
	"github.com/kailas-cloud/esdata/internal/domain/batch"
	domdoc "github.com/kailas-cloud/esdata/internal/domain/document"
	"github.com/kailas-cloud/esdata/internal/mapping"
)

// MaxBatchSize is the default maximum number of documents per bulk call.
const MaxBatchSize = 500

// Service handles document writes and reads for registered entities.
type Service struct {
	repo         Repository
	entities     EntityResolver
	maxBatchSize int
}

// New creates a document service.
func New(repo Repository, entities EntityResolver) *Service {
	return &Service{repo: repo, entities: entities, maxBatchSize: MaxBatchSize}
}

// WithMaxBatchSize configures the maximum batch size.
func (s *Service) WithMaxBatchSize(size int) *Service {
	if size > 0 {
		s.maxBatchSize = size
	}
	return s
}

// Save validates the document against the entity and writes it.
// A document carrying a version is written with external versioning.
func (s *Service) Save(ctx context.Context, entityType string, doc *domdoc.Document) (domdoc.Document, bool, error) {
	e, err := s.entities.Get(entityType)
	if err != nil {
		return domdoc.Document{}, false, err //nolint:wrapcheck // resolver errors carry the entity type
	}
	if err := validateSource(e, doc); err != nil {
		return domdoc.Document{}, false, err
	}

	saved, created, err := s.repo.Save(ctx, e, doc)
	if err != nil {
		return domdoc.Document{}, false, fmt.Errorf("save document: %w", err)
	}
	return saved, created, nil
}

// SaveAll validates and writes documents in one bulk call. Invalid documents are
// reported in their result slot and never sent.
func (s *Service) SaveAll(ctx context.Context, entityType string, docs []domdoc.Document) ([]batch.Result, error) {
	if len(docs) > s.maxBatchSize {
		return nil, fmt.Errorf("batch size %d exceeds %d: %w", len(docs), s.maxBatchSize, domain.ErrInvalidDocument)
	}
	e, err := s.entities.Get(entityType)
	if err != nil {
		return nil, err //nolint:wrapcheck // resolver errors carry the entity type
	}

	results := make([]batch.Result, len(docs))
	valid := make([]domdoc.Document, 0, len(docs))
	slots := make([]int, 0, len(docs))
	for i := range docs {
		if err := validateSource(e, &docs[i]); err != nil {
			results[i] = batch.NewError(docs[i].ID(), err)
			continue
		}
		valid = append(valid, docs[i])
		slots = append(slots, i)
	}
	if len(valid) == 0 {
		return results, nil
	}

	written, err := s.repo.SaveAll(ctx, e, valid)
	if err != nil {
		return nil, fmt.Errorf("save documents: %w", err)
	}
	for i, r := range written {
		results[slots[i]] = r
	}
	return results, nil
}

// Get returns a document by ID.
func (s *Service) Get(ctx context.Context, entityType, id string) (domdoc.Document, error) {
	e, err := s.entities.Get(entityType)
	if err != nil {
		return domdoc.Document{}, err //nolint:wrapcheck // resolver errors carry the entity type
	}
	if err := domdoc.ValidateID(id); err != nil {
		return domdoc.Document{}, fmt.Errorf("%w: %w", domain.ErrInvalidDocument, err)
	}
	doc, err := s.repo.Get(ctx, e, id)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// Delete removes a document by ID.
func (s *Service) Delete(ctx context.Context, entityType, id string) error {
	e, err := s.entities.Get(entityType)
	if err != nil {
		return err //nolint:wrapcheck // resolver errors carry the entity type
	}
	if err := domdoc.ValidateID(id); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidDocument, err)
	}
	if err := s.repo.Delete(ctx, e, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// Count returns the number of documents stored for the entity.
func (s *Service) Count(ctx context.Context, entityType string) (int64, error) {
	e, err := s.entities.Get(entityType)
	if err != nil {
		return 0, err //nolint:wrapcheck // resolver errors carry the entity type
	}
	n, err := s.repo.Count(ctx, e)
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}

// validateSource checks that every source key is the field name of a stored property.
// Version and score live in hit metadata and are rejected here.
func validateSource(e *mapping.PersistentEntity, doc *domdoc.Document) error {
	for key := range doc.Source() {
		p, ok := e.GetPersistentPropertyWithFieldName(key)
		if !ok {
			return fmt.Errorf("%w: field %q is not mapped by %s", domain.ErrInvalidDocument, key, e.Type())
		}
		if !p.IsWritable() {
			return fmt.Errorf("%w: field %q is %s metadata", domain.ErrInvalidDocument, key, roleOf(p))
		}
	}
	return nil
}

func roleOf(p *mapping.PersistentProperty) string {
	if p.IsVersion() {
		return "version"
	}
	return "score"
}
