package db

import (
	"context"
	"time"
)

// Store is the main database facade combining all sub-interfaces.
//
//nolint:interfacebloat // facade by design -- consumers use narrow sub-interfaces (ISP)
type Store interface {
	Pinger
	IndexManager
	DocumentStore
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// IndexManager provides index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
	PutMapping(ctx context.Context, def *IndexDefinition) error
	RefreshIndex(ctx context.Context, name string) error
}

// IndexRequest writes one document. A non-nil Version selects external versioning.
type IndexRequest struct {
	Index   string
	ID      string
	Version *int64
	Source  []byte
	Refresh bool
}

// IndexResult is the outcome of a single write.
type IndexResult struct {
	ID      string
	Version int64
	Created bool
}

// StoredDocument is a document fetched by id.
type StoredDocument struct {
	Index   string
	ID      string
	Version int64
	Source  []byte
}

// DocumentStore provides per-document operations.
type DocumentStore interface {
	IndexDocument(ctx context.Context, req *IndexRequest) (*IndexResult, error)
	BulkIndex(ctx context.Context, reqs []IndexRequest, refresh bool) ([]BulkItemResult, error)
	GetDocument(ctx context.Context, index, id string) (*StoredDocument, error)
	DeleteDocument(ctx context.Context, index, id string, refresh bool) error
	CountDocuments(ctx context.Context, index string, query []byte) (int64, error)
}

// Searcher runs search requests.
type Searcher interface {
	Search(ctx context.Context, index string, body []byte) (*SearchResult, error)
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Cache is the facade of the search result cache backend.
type Cache interface {
	Pinger
	KVStore
	Close()
}
