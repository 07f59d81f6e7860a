package esdata

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/kailas-cloud/esdata/internal/domain"
	"github.com/kailas-cloud/esdata/internal/domain/batch"
	domdoc "github.com/kailas-cloud/esdata/internal/domain/document"
	"github.com/kailas-cloud/esdata/internal/mapping"
)

// BatchStatus is the outcome of one SaveAll item.
type BatchStatus = batch.ItemStatus

// Batch item statuses.
const (
	BatchOK       = batch.StatusOK
	BatchConflict = batch.StatusConflict
	BatchError    = batch.StatusError
)

// BatchResult reports one item of SaveAll.
type BatchResult struct {
	ID      string
	Status  BatchStatus
	Version int64
	Err     error
}

// Repository stores values of the struct type T in the index of T's entity.
// T may be a struct or a pointer to one; its metadata comes from `es` tags.
type Repository[T any] struct {
	client *Client
	entity *mapping.PersistentEntity
}

// NewRepository resolves T's entity, registering it on first use.
func NewRepository[T any](c *Client) (*Repository[T], error) {
	e, err := mapping.EntityFor[T](c.mapping)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidMapping, err)
	}
	return &Repository[T]{client: c, entity: e}, nil
}

// Entity returns the metadata of T.
func (r *Repository[T]) Entity() *PersistentEntity {
	return r.entity
}

// EnsureIndex creates the entity's index if missing. Reports whether it was created.
func (r *Repository[T]) EnsureIndex(ctx context.Context) (bool, error) {
	res, err := r.client.entitySvc.Ensure(ctx, r.entity.Type())
	if err != nil {
		return false, fmt.Errorf("ensure index: %w", err)
	}
	return res.Created, nil
}

// Save writes item and returns it with the version assigned by Elasticsearch.
// A non-zero version property selects external versioning. When T is a pointer
// the pointed-to value is updated in place.
func (r *Repository[T]) Save(ctx context.Context, item T) (T, error) {
	doc, err := r.toDocument(item)
	if err != nil {
		return item, err
	}
	saved, _, err := r.client.docSvc.Save(ctx, r.entity.Type(), &doc)
	if err != nil {
		return item, fmt.Errorf("save: %w", err)
	}
	out := item
	if err := r.entity.FromHit(&out, saved.ID(), saved.Version(), 0, nil); err != nil {
		return item, fmt.Errorf("save: %w", err)
	}
	return out, nil
}

// SaveAll writes items in one bulk request. Failures are reported per item;
// the returned error covers only request-level problems.
func (r *Repository[T]) SaveAll(ctx context.Context, items []T) ([]BatchResult, error) {
	docs := make([]domdoc.Document, 0, len(items))
	for i, item := range items {
		doc, err := r.toDocument(item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		docs = append(docs, doc)
	}

	results, err := r.client.docSvc.SaveAll(ctx, r.entity.Type(), docs)
	if err != nil {
		return nil, fmt.Errorf("save all: %w", err)
	}
	out := make([]BatchResult, len(results))
	for i, res := range results {
		out[i] = BatchResult{
			ID:      res.ID(),
			Status:  res.Status(),
			Version: res.Version(),
			Err:     res.Err(),
		}
	}
	return out, nil
}

// FindByID loads the document with id.
func (r *Repository[T]) FindByID(ctx context.Context, id string) (T, error) {
	var zero T
	doc, err := r.client.docSvc.Get(ctx, r.entity.Type(), id)
	if err != nil {
		return zero, fmt.Errorf("find by id: %w", err)
	}
	src, err := json.Marshal(doc.Source())
	if err != nil {
		return zero, fmt.Errorf("find by id: encode source: %w", err)
	}
	out := newItem[T]()
	if err := r.entity.FromHit(&out, doc.ID(), doc.Version(), 0, src); err != nil {
		return zero, fmt.Errorf("find by id: %w", err)
	}
	return out, nil
}

// Delete removes the document with id.
func (r *Repository[T]) Delete(ctx context.Context, id string) error {
	if err := r.client.docSvc.Delete(ctx, r.entity.Type(), id); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return nil
}

// Count returns the number of documents in the entity's index.
func (r *Repository[T]) Count(ctx context.Context) (int64, error) {
	n, err := r.client.docSvc.Count(ctx, r.entity.Type())
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// Search starts a query against the entity's index.
func (r *Repository[T]) Search() *SearchBuilder[T] {
	return &SearchBuilder[T]{repo: r}
}

func (r *Repository[T]) toDocument(item T) (domdoc.Document, error) {
	id, version, src, err := r.entity.ToSource(item)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("%w: %w", domain.ErrInvalidDocument, err)
	}
	var v int64
	if version != nil {
		v = *version
	}
	doc, err := domdoc.New(id, src, v)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("%w: %w", domain.ErrInvalidDocument, err)
	}
	return doc, nil
}

// newItem returns a zero T, allocating the struct when T is a pointer type.
func newItem[T any]() T {
	var zero T
	if t := reflect.TypeFor[T](); t.Kind() == reflect.Pointer {
		v, ok := reflect.New(t.Elem()).Interface().(T)
		if ok {
			return v
		}
	}
	return zero
}
