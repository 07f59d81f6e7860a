package document

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/kailas-cloud/esdata/internal/db"
	"github.com/kailas-cloud/esdata/internal/domain"
	"github.com/kailas-cloud/esdata/internal/domain/batch"
	domdoc "github.com/kailas-cloud/esdata/internal/domain/document"
	"github.com/kailas-cloud/esdata/internal/mapping"
)

// store is the consumer interface for documents (ISP).
type store interface {
	IndexDocument(ctx context.Context, req *db.IndexRequest) (*db.IndexResult, error)
	BulkIndex(ctx context.Context, reqs []db.IndexRequest, refresh bool) ([]db.BulkItemResult, error)
	GetDocument(ctx context.Context, index, id string) (*db.StoredDocument, error)
	DeleteDocument(ctx context.Context, index, id string, refresh bool) error
	CountDocuments(ctx context.Context, index string, query []byte) (int64, error)
}

// Repo implements usecase/document.Repository.
type Repo struct {
	store store
}

// New creates a document repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Save creates or replaces a document. Returns the stored document carrying the
// version assigned by Elasticsearch, and true if it was created.
func (r *Repo) Save(ctx context.Context, e *mapping.PersistentEntity, doc *domdoc.Document) (domdoc.Document, bool, error) {
	req, err := toRequest(e, doc)
	if err != nil {
		return domdoc.Document{}, false, err
	}

	res, err := r.store.IndexDocument(ctx, &req)
	if err != nil {
		return domdoc.Document{}, false, mapWriteError(doc, fmt.Errorf("index %s/%s: %w", req.Index, req.ID, err))
	}
	return doc.WithVersion(res.Version), res.Created, nil
}

// SaveAll writes documents in one bulk request. Results are in input order; per-document
// failures are reported in the result, only transport failures return an error.
func (r *Repo) SaveAll(ctx context.Context, e *mapping.PersistentEntity, docs []domdoc.Document) ([]batch.Result, error) {
	if len(docs) == 0 {
		return []batch.Result{}, nil
	}

	reqs := make([]db.IndexRequest, len(docs))
	for i := range docs {
		req, err := toRequest(e, &docs[i])
		if err != nil {
			return nil, err
		}
		reqs[i] = req
	}

	items, err := r.store.BulkIndex(ctx, reqs, false)
	if err != nil {
		return nil, fmt.Errorf("bulk index %s: %w", e.IndexName(), err)
	}
	if len(items) != len(docs) {
		return nil, fmt.Errorf("bulk index %s: got %d results for %d documents", e.IndexName(), len(items), len(docs))
	}

	results := make([]batch.Result, len(docs))
	for i, item := range items {
		doc := &docs[i]
		switch {
		case item.Err == nil && item.Status < http.StatusMultipleChoices:
			results[i] = batch.NewOK(doc.ID(), item.Version)
		case item.Err == nil:
			results[i] = batch.NewError(doc.ID(), fmt.Errorf("unexpected status %d", item.Status))
		default:
			err := mapWriteError(doc, item.Err)
			if errors.Is(err, domain.ErrVersionConflict) {
				results[i] = batch.NewConflict(doc.ID(), err)
			} else {
				results[i] = batch.NewError(doc.ID(), err)
			}
		}
	}
	return results, nil
}

// Get returns a document by ID with its current version.
func (r *Repo) Get(ctx context.Context, e *mapping.PersistentEntity, id string) (domdoc.Document, error) {
	stored, err := r.store.GetDocument(ctx, e.IndexName(), id)
	if err != nil {
		return domdoc.Document{}, mapReadError(fmt.Errorf("get %s/%s: %w", e.IndexName(), id, err))
	}
	src, err := decodeSource(stored.Source)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("get %s/%s: %w", e.IndexName(), id, err)
	}
	return domdoc.Reconstruct(stored.ID, src, stored.Version), nil
}

// Delete removes a document by ID.
func (r *Repo) Delete(ctx context.Context, e *mapping.PersistentEntity, id string) error {
	if err := r.store.DeleteDocument(ctx, e.IndexName(), id, false); err != nil {
		return mapReadError(fmt.Errorf("delete %s/%s: %w", e.IndexName(), id, err))
	}
	return nil
}

// Count returns the number of documents in the entity's index.
func (r *Repo) Count(ctx context.Context, e *mapping.PersistentEntity) (int64, error) {
	n, err := r.store.CountDocuments(ctx, e.IndexName(), nil)
	if err != nil {
		return 0, mapReadError(fmt.Errorf("count %s: %w", e.IndexName(), err))
	}
	return n, nil
}

func mapWriteError(doc *domdoc.Document, err error) error {
	if errors.Is(err, db.ErrVersionConflict) {
		return fmt.Errorf("%w: %w", domain.NewVersionConflict(doc.ID(), doc.Version()), err)
	}
	return mapReadError(err)
}

func mapReadError(err error) error {
	switch {
	case errors.Is(err, db.ErrDocumentNotFound):
		return fmt.Errorf("%w: %w", domain.ErrDocumentNotFound, err)
	case errors.Is(err, db.ErrIndexNotFound):
		return fmt.Errorf("%w: %w", domain.ErrIndexNotFound, err)
	default:
		return err
	}
}
