package document

import (
	"context"
	"testing"

	"github.com/kailas-cloud/esdata/internal/db"
	domdoc "github.com/kailas-cloud/esdata/internal/domain/document"
	"github.com/kailas-cloud/esdata/internal/mapping"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	indexDocumentFn  func(ctx context.Context, req *db.IndexRequest) (*db.IndexResult, error)
	bulkIndexFn      func(ctx context.Context, reqs []db.IndexRequest, refresh bool) ([]db.BulkItemResult, error)
	getDocumentFn    func(ctx context.Context, index, id string) (*db.StoredDocument, error)
	deleteDocumentFn func(ctx context.Context, index, id string, refresh bool) error
	countDocumentsFn func(ctx context.Context, index string, query []byte) (int64, error)
}

func (m *mockStore) IndexDocument(ctx context.Context, req *db.IndexRequest) (*db.IndexResult, error) {
	if m.indexDocumentFn != nil {
		return m.indexDocumentFn(ctx, req)
	}
	return &db.IndexResult{ID: req.ID, Version: 1, Created: true}, nil
}

func (m *mockStore) BulkIndex(ctx context.Context, reqs []db.IndexRequest, refresh bool) ([]db.BulkItemResult, error) {
	if m.bulkIndexFn != nil {
		return m.bulkIndexFn(ctx, reqs, refresh)
	}
	out := make([]db.BulkItemResult, len(reqs))
	for i, r := range reqs {
		out[i] = db.BulkItemResult{ID: r.ID, Version: 1, Status: 201}
	}
	return out, nil
}

func (m *mockStore) GetDocument(ctx context.Context, index, id string) (*db.StoredDocument, error) {
	if m.getDocumentFn != nil {
		return m.getDocumentFn(ctx, index, id)
	}
	return nil, db.ErrDocumentNotFound
}

func (m *mockStore) DeleteDocument(ctx context.Context, index, id string, refresh bool) error {
	if m.deleteDocumentFn != nil {
		return m.deleteDocumentFn(ctx, index, id, refresh)
	}
	return nil
}

func (m *mockStore) CountDocuments(ctx context.Context, index string, query []byte) (int64, error) {
	if m.countDocumentsFn != nil {
		return m.countDocumentsFn(ctx, index, query)
	}
	return 0, nil
}

func bookEntity(t *testing.T) *mapping.PersistentEntity {
	t.Helper()
	c := mapping.NewContext()
	err := c.Register(mapping.Schema{
		Type:  "book",
		Index: "books",
		Fields: []mapping.FieldSpec{
			{Name: "id", Type: mapping.KindString, Role: mapping.RoleID},
			{Name: "title", Type: mapping.KindString},
			{Name: "version", Type: mapping.KindInt64, Role: mapping.RoleVersion},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	e, err := c.GetRequiredPersistentEntity("book")
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func mustDoc(t *testing.T, id string, version int64) domdoc.Document {
	t.Helper()
	d, err := domdoc.New(id, map[string]any{"id": id, "title": "Dune"}, version)
	if err != nil {
		t.Fatal(err)
	}
	return d
}
