package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrKeyNotFound      = errors.New("db: key not found")
	ErrDocumentNotFound = errors.New("db: document not found")
	ErrIndexNotFound    = errors.New("db: index not found")
	ErrIndexExists      = errors.New("db: index already exists")
	ErrVersionConflict  = errors.New("db: version conflict")
)

// Op constants name the Elasticsearch APIs and cache commands for error context.
const (
	OpInfo        = "info"
	OpCreateIndex = "indices.create"
	OpDeleteIndex = "indices.delete"
	OpIndexExists = "indices.exists"
	OpPutMapping  = "indices.put_mapping"
	OpRefresh     = "indices.refresh"
	OpIndex       = "index"
	OpBulk        = "bulk"
	OpGet         = "get"
	OpDelete      = "delete"
	OpCount       = "count"
	OpSearch      = "search"
	OpCacheGet    = "GET"
	OpCacheSet    = "SET"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
