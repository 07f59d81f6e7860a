package esdata

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/kailas-cloud/esdata/internal/db"
)

type testBook struct {
	_       struct{} `es:"index=books"`
	ID      string   `es:"id,id"`
	Title   string   `es:"title,type=text"`
	Author  string   `es:"author_name,type=keyword"`
	Pages   int      `es:"pages"`
	Version int64    `es:",version"`
	Score   float64  `es:",score"`
}

type storedDoc struct {
	version int64
	source  []byte
}

// memStore is an in-memory db.Store with Elasticsearch versioning semantics.
// Search returns every document of the index in id order and records the body.
type memStore struct {
	mu       sync.Mutex
	indices  map[string]*db.IndexDefinition
	docs     map[string]map[string]storedDoc
	bodies   [][]byte
	pingErr  error
	searchFn func(index string, body []byte) (*db.SearchResult, error)
}

var _ db.Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{
		indices: make(map[string]*db.IndexDefinition),
		docs:    make(map[string]map[string]storedDoc),
	}
}

func (m *memStore) Ping(context.Context) error { return m.pingErr }
func (m *memStore) Close()                     {}

func (m *memStore) WaitForReady(context.Context, time.Duration) error { return m.pingErr }

func (m *memStore) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.indices[def.Name]; ok {
		return db.ErrIndexExists
	}
	m.indices[def.Name] = def
	m.docs[def.Name] = make(map[string]storedDoc)
	return nil
}

func (m *memStore) DropIndex(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.indices[name]; !ok {
		return db.ErrIndexNotFound
	}
	delete(m.indices, name)
	delete(m.docs, name)
	return nil
}

func (m *memStore) IndexExists(_ context.Context, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.indices[name]
	return ok, nil
}

func (m *memStore) PutMapping(_ context.Context, def *db.IndexDefinition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.indices[def.Name] = def
	return nil
}

func (m *memStore) RefreshIndex(context.Context, string) error { return nil }

func (m *memStore) IndexDocument(_ context.Context, req *db.IndexRequest) (*db.IndexResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.write(req)
}

func (m *memStore) write(req *db.IndexRequest) (*db.IndexResult, error) {
	docs, ok := m.docs[req.Index]
	if !ok {
		docs = make(map[string]storedDoc)
		m.docs[req.Index] = docs
	}
	cur, exists := docs[req.ID]
	next := cur.version + 1
	if req.Version != nil {
		if exists && *req.Version <= cur.version {
			return nil, db.ErrVersionConflict
		}
		next = *req.Version
	}
	docs[req.ID] = storedDoc{version: next, source: req.Source}
	return &db.IndexResult{ID: req.ID, Version: next, Created: !exists}, nil
}

func (m *memStore) BulkIndex(_ context.Context, reqs []db.IndexRequest, _ bool) ([]db.BulkItemResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]db.BulkItemResult, len(reqs))
	for i := range reqs {
		res, err := m.write(&reqs[i])
		if err != nil {
			out[i] = db.BulkItemResult{ID: reqs[i].ID, Status: http.StatusConflict, Err: err}
			continue
		}
		out[i] = db.BulkItemResult{ID: res.ID, Version: res.Version, Status: http.StatusCreated}
	}
	return out, nil
}

func (m *memStore) GetDocument(_ context.Context, index, id string) (*db.StoredDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	docs, ok := m.docs[index]
	if !ok {
		return nil, db.ErrIndexNotFound
	}
	d, ok := docs[id]
	if !ok {
		return nil, db.ErrDocumentNotFound
	}
	return &db.StoredDocument{Index: index, ID: id, Version: d.version, Source: d.source}, nil
}

func (m *memStore) DeleteDocument(_ context.Context, index, id string, _ bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[index][id]; !ok {
		return db.ErrDocumentNotFound
	}
	delete(m.docs[index], id)
	return nil
}

func (m *memStore) CountDocuments(_ context.Context, index string, _ []byte) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	docs, ok := m.docs[index]
	if !ok {
		return 0, db.ErrIndexNotFound
	}
	return int64(len(docs)), nil
}

func (m *memStore) Search(_ context.Context, index string, body []byte) (*db.SearchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bodies = append(m.bodies, body)
	if m.searchFn != nil {
		return m.searchFn(index, body)
	}

	docs := m.docs[index]
	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	res := &db.SearchResult{Total: int64(len(ids)), MaxScore: 1}
	for _, id := range ids {
		d := docs[id]
		res.Hits = append(res.Hits, db.SearchHit{
			Index:   index,
			ID:      id,
			Version: d.version,
			Score:   1,
			Source:  json.RawMessage(d.source),
		})
	}
	return res, nil
}

func (m *memStore) lastBody() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.bodies) == 0 {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(m.bodies[len(m.bodies)-1], &out); err != nil {
		return nil
	}
	return out
}

// memCache is an in-memory db.Cache.
type memCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	pingErr error
}

var _ db.Cache = (*memCache)(nil)

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte)}
}

func (c *memCache) Ping(context.Context) error { return c.pingErr }
func (c *memCache) Close()                     {}

func (c *memCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (c *memCache) SetWithTTL(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func newTestClient(opts ...Option) (*Client, *memStore) {
	store := newMemStore()
	return newTestClientWith(store, nil, opts...), store
}

func newTestClientWith(store *memStore, cache db.Cache, opts ...Option) *Client {
	cfg := &clientConfig{}
	for _, o := range opts {
		o(cfg)
	}
	cfg.applyDefaults()
	mc, err := newMappingContext(cfg)
	if err != nil {
		panic(err)
	}
	return wireClient(store, cache, mc, cfg)
}
