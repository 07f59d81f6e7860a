package chi

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/esdata/internal/db"
	"github.com/kailas-cloud/esdata/internal/domain"
	"github.com/kailas-cloud/esdata/internal/domain/batch"
	domdoc "github.com/kailas-cloud/esdata/internal/domain/document"
	"github.com/kailas-cloud/esdata/internal/domain/search/request"
	"github.com/kailas-cloud/esdata/internal/domain/search/result"
	"github.com/kailas-cloud/esdata/internal/mapping"
	indexrepo "github.com/kailas-cloud/esdata/internal/repository/index"
	"github.com/kailas-cloud/esdata/internal/transport/api"
	documentuc "github.com/kailas-cloud/esdata/internal/usecase/document"
	entityuc "github.com/kailas-cloud/esdata/internal/usecase/entity"
	healthuc "github.com/kailas-cloud/esdata/internal/usecase/health"
	searchuc "github.com/kailas-cloud/esdata/internal/usecase/search"
)

// --- Fakes ---

type fakeIndices struct {
	mu       sync.Mutex
	existing map[string]bool
	ensureFn func(e *mapping.PersistentEntity) (bool, error)
}

func (f *fakeIndices) Definition(e *mapping.PersistentEntity) (*db.IndexDefinition, error) {
	return indexrepo.Definition(e)
}

func (f *fakeIndices) Ensure(_ context.Context, e *mapping.PersistentEntity) (bool, error) {
	if f.ensureFn != nil {
		return f.ensureFn(e)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.existing == nil {
		f.existing = make(map[string]bool)
	}
	created := !f.existing[e.IndexName()]
	f.existing[e.IndexName()] = true
	return created, nil
}

func (f *fakeIndices) Exists(_ context.Context, e *mapping.PersistentEntity) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.existing[e.IndexName()], nil
}

type storedDoc struct {
	source  map[string]any
	version int64
}

// memDocuments stores documents per index with Elasticsearch external versioning semantics.
type memDocuments struct {
	mu   sync.Mutex
	docs map[string]map[string]storedDoc
	err  error
}

func (m *memDocuments) index(e *mapping.PersistentEntity) map[string]storedDoc {
	if m.docs == nil {
		m.docs = make(map[string]map[string]storedDoc)
	}
	if m.docs[e.IndexName()] == nil {
		m.docs[e.IndexName()] = make(map[string]storedDoc)
	}
	return m.docs[e.IndexName()]
}

func (m *memDocuments) Save(
	_ context.Context, e *mapping.PersistentEntity, doc *domdoc.Document,
) (domdoc.Document, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return domdoc.Document{}, false, m.err
	}
	idx := m.index(e)
	prev, exists := idx[doc.ID()]
	version := prev.version + 1
	if doc.HasVersion() {
		if exists && doc.Version() <= prev.version {
			return domdoc.Document{}, false, domain.NewVersionConflict(doc.ID(), doc.Version())
		}
		version = doc.Version()
	}
	idx[doc.ID()] = storedDoc{source: doc.Source(), version: version}
	return doc.WithVersion(version), !exists, nil
}

func (m *memDocuments) SaveAll(
	ctx context.Context, e *mapping.PersistentEntity, docs []domdoc.Document,
) ([]batch.Result, error) {
	out := make([]batch.Result, len(docs))
	for i := range docs {
		saved, _, err := m.Save(ctx, e, &docs[i])
		switch {
		case err == nil:
			out[i] = batch.NewOK(saved.ID(), saved.Version())
		case m.err != nil:
			return nil, err
		default:
			out[i] = batch.NewConflict(docs[i].ID(), err)
		}
	}
	return out, nil
}

func (m *memDocuments) Get(_ context.Context, e *mapping.PersistentEntity, id string) (domdoc.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.index(e)[id]
	if !ok {
		return domdoc.Document{}, domain.ErrDocumentNotFound
	}
	return domdoc.Reconstruct(id, d.source, d.version), nil
}

func (m *memDocuments) Delete(_ context.Context, e *mapping.PersistentEntity, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := m.index(e)
	if _, ok := idx[id]; !ok {
		return domain.ErrDocumentNotFound
	}
	delete(idx, id)
	return nil
}

func (m *memDocuments) Count(_ context.Context, e *mapping.PersistentEntity) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	return int64(len(m.index(e))), nil
}

type fakeSearch struct {
	last *request.Request
	page result.Page
	err  error
}

func (f *fakeSearch) Search(_ context.Context, _ *mapping.PersistentEntity, req *request.Request) (result.Page, error) {
	f.last = req
	return f.page, f.err
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

// --- Fixture ---

type fixture struct {
	indices   *fakeIndices
	documents *memDocuments
	search    *fakeSearch
	server    *Server
	handler   http.Handler
}

func librarySchemas() []mapping.Schema {
	zero := 0
	return []mapping.Schema{
		{
			Type:     "book",
			Index:    "books",
			Replicas: &zero,
			Fields: []mapping.FieldSpec{
				{Name: "id", Type: mapping.KindString, Role: mapping.RoleID},
				{Name: "title", Type: mapping.KindString, Analyzer: "english"},
				{Name: "author", Type: mapping.KindString, FieldName: "author_name", FieldType: mapping.FieldTypeKeyword},
				{Name: "pages", Type: mapping.KindInt32},
				{Name: "version", Type: mapping.KindInt64, Role: mapping.RoleVersion},
				{Name: "score", Type: mapping.KindFloat32, Role: mapping.RoleScore},
			},
		},
		{
			Type: "author",
			Fields: []mapping.FieldSpec{
				{Name: "name", Type: mapping.KindString},
			},
		},
	}
}

func newFixture(t *testing.T, schemas ...mapping.Schema) *fixture {
	t.Helper()
	if len(schemas) == 0 {
		schemas = librarySchemas()
	}
	mc := mapping.NewContext()
	if err := mc.RegisterAll(schemas); err != nil {
		t.Fatal(err)
	}

	f := &fixture{
		indices:   &fakeIndices{},
		documents: &memDocuments{},
		search:    &fakeSearch{},
	}
	entities := entityuc.New(mc, f.indices)
	f.server = NewServer(
		entities,
		documentuc.New(f.documents, entities).WithMaxBatchSize(3),
		searchuc.New(f.search, entities).WithLimits(5, 20),
		healthuc.New(fakePinger{}, nil),
		zap.NewNop(),
	)
	f.handler = api.Handler(f.server)
	return f
}

func serverOf(f *fixture) *Server { return f.server }
