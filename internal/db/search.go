package db

import "encoding/json"

// SearchResult is the decoded output of a search request.
type SearchResult struct {
	Took         int64
	Total        int64
	MaxScore     float64
	Hits         []SearchHit
	Aggregations map[string]json.RawMessage
}

// SearchHit is a single document hit from a search.
type SearchHit struct {
	Index   string
	ID      string
	Version int64
	Score   float64
	Source  json.RawMessage
	// Sort holds the hit's sort values when the query sorted explicitly.
	Sort json.RawMessage
}

// BulkItemResult is the per-document outcome of a bulk write.
type BulkItemResult struct {
	ID      string
	Version int64
	Status  int
	Err     error
}
