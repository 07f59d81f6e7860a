// Package api holds the HTTP contract of the esdata server: wire types,
// the ServerInterface and its chi binding.
package api

import "encoding/json"

// ErrorResponseCode is a machine-readable error code.
type ErrorResponseCode string

// Error codes returned by the API.
const (
	ErrorResponseCodeBadRequest       ErrorResponseCode = "bad_request"
	ErrorResponseCodeUnauthorized     ErrorResponseCode = "unauthorized"
	ErrorResponseCodeValidationFailed ErrorResponseCode = "validation_failed"
	ErrorResponseCodeUnknownEntity    ErrorResponseCode = "unknown_entity"
	ErrorResponseCodeInvalidMapping   ErrorResponseCode = "invalid_mapping"
	ErrorResponseCodePropertyNotFound ErrorResponseCode = "property_not_found"
	ErrorResponseCodeIndexNotFound    ErrorResponseCode = "index_not_found"
	ErrorResponseCodeDocumentNotFound ErrorResponseCode = "document_not_found"
	ErrorResponseCodeAlreadyExists    ErrorResponseCode = "already_exists"
	ErrorResponseCodeVersionConflict  ErrorResponseCode = "version_conflict"
	ErrorResponseCodeInvalidQuery     ErrorResponseCode = "invalid_query"
	ErrorResponseCodeInternalError    ErrorResponseCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// EntityType is the {entity} path parameter.
type EntityType = string

// DocumentID is the {id} path parameter.
type DocumentID = string

// Property describes one persistent property of an entity.
type Property struct {
	Name           string  `json:"name"`
	FieldName      string  `json:"field_name"`
	FieldType      string  `json:"field_type"`
	Role           *string `json:"role,omitempty"`
	Indexed        bool    `json:"indexed"`
	Writable       bool    `json:"writable"`
	Analyzer       *string `json:"analyzer,omitempty"`
	SearchAnalyzer *string `json:"search_analyzer,omitempty"`
	Format         *string `json:"format,omitempty"`
}

// Entity describes a registered entity and its index.
type Entity struct {
	Type       string     `json:"type"`
	Index      string     `json:"index"`
	Properties []Property `json:"properties"`
}

// EntityListResponse is returned by GET /entities.
type EntityListResponse struct {
	Items []Entity `json:"items"`
}

// MappingResponse carries the index creation body derived from an entity.
type MappingResponse struct {
	Index    string         `json:"index"`
	Settings map[string]any `json:"settings"`
	Mappings map[string]any `json:"mappings"`
}

// EnsureIndexResponse reports the outcome of ensuring one index.
type EnsureIndexResponse struct {
	Type    string `json:"type"`
	Index   string `json:"index"`
	Created bool   `json:"created"`
}

// EnsureAllResponse is returned by PUT /indices.
type EnsureAllResponse struct {
	Items []EnsureIndexResponse `json:"items"`
}

// DocumentSource is a document body keyed by field name.
type DocumentSource = map[string]any

// DocumentResponse is a stored document.
type DocumentResponse struct {
	ID      string         `json:"id"`
	Version int64          `json:"version"`
	Content DocumentSource `json:"content"`
}

// CountResponse is returned by GET /entities/{entity}/count.
type CountResponse struct {
	Count int64 `json:"count"`
}

// BulkItem is one document of a bulk save.
type BulkItem struct {
	ID      string         `json:"id"`
	Version *int64         `json:"version,omitempty"`
	Content DocumentSource `json:"content"`
}

// BulkRequest is the body of POST /entities/{entity}/documents/_bulk.
type BulkRequest struct {
	Items []BulkItem `json:"items"`
}

// BulkResultItem is the per-item outcome of a bulk save.
type BulkResultItem struct {
	ID      string         `json:"id"`
	Status  string         `json:"status"`
	Version *int64         `json:"version,omitempty"`
	Error   *ErrorResponse `json:"error,omitempty"`
}

// BulkResponse is returned by POST /entities/{entity}/documents/_bulk.
type BulkResponse struct {
	Items     []BulkResultItem `json:"items"`
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
}

// RangeFilter bounds a field. At least one bound is required.
type RangeFilter struct {
	Gt  any `json:"gt,omitempty"`
	Gte any `json:"gte,omitempty"`
	Lt  any `json:"lt,omitempty"`
	Lte any `json:"lte,omitempty"`
}

// FilterCondition is a term or a range condition on one field.
type FilterCondition struct {
	Field string       `json:"field"`
	Match any          `json:"match,omitempty"`
	Range *RangeFilter `json:"range,omitempty"`
}

// FilterExpression groups conditions by boolean clause.
type FilterExpression struct {
	Must    []FilterCondition `json:"must,omitempty"`
	Should  []FilterCondition `json:"should,omitempty"`
	MustNot []FilterCondition `json:"must_not,omitempty"`
}

// SortField orders results by a field or by _score.
type SortField struct {
	Field string  `json:"field"`
	Order *string `json:"order,omitempty"` // asc | desc
}

// AggregationRequest asks for one named aggregation.
type AggregationRequest struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Field string `json:"field"`
	Size  *int   `json:"size,omitempty"`
}

// SearchRequest is the body of POST /entities/{entity}/search.
type SearchRequest struct {
	Query        *string               `json:"query,omitempty"`
	Mode         *string               `json:"mode,omitempty"`
	Fields       *[]string             `json:"fields,omitempty"`
	Filters      *FilterExpression     `json:"filters,omitempty"`
	Sort         *[]SortField          `json:"sort,omitempty"`
	Aggregations *[]AggregationRequest `json:"aggregations,omitempty"`
	From         *int                  `json:"from,omitempty"`
	Size         *int                  `json:"size,omitempty"`
	MinScore     *float64              `json:"min_score,omitempty"`
	Continue     *bool                 `json:"continue,omitempty"`
	After        *string               `json:"after,omitempty"`
}

// SearchHit is one matching document.
type SearchHit struct {
	ID      string          `json:"id"`
	Score   float64         `json:"score"`
	Version int64           `json:"version"`
	Content json.RawMessage `json:"content"`
}

// SearchResponse is returned by POST /entities/{entity}/search.
type SearchResponse struct {
	Total        int64                      `json:"total"`
	MaxScore     float64                    `json:"max_score"`
	Items        []SearchHit                `json:"items"`
	Aggregations map[string]json.RawMessage `json:"aggregations,omitempty"`
	Next         *string                    `json:"next,omitempty"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// GetPropertyParams are the query parameters of GET /entities/{entity}/properties.
type GetPropertyParams struct {
	FieldName string `form:"field_name" json:"field_name"`
}

// SaveDocumentParams are the query parameters of PUT /entities/{entity}/documents/{id}.
type SaveDocumentParams struct {
	// Version is an external version; the write is rejected unless it exceeds the stored one.
	Version *int64 `form:"version,omitempty" json:"version,omitempty"`
}
