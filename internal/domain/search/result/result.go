package result

import (
	"encoding/json"
	"fmt"
)

// Hit is a single search hit.
type Hit struct {
	id      string
	score   float64
	version int64
	source  json.RawMessage
}

// New creates a search hit.
func New(id string, score float64, version int64, source json.RawMessage) Hit {
	return Hit{id: id, score: score, version: version, source: source}
}

// ID returns the document identifier.
func (h *Hit) ID() string { return h.id }

// Score returns the relevance score.
func (h *Hit) Score() float64 { return h.score }

// Version returns the document version, 0 when not requested.
func (h *Hit) Version() int64 { return h.version }

// Source returns the raw _source.
func (h *Hit) Source() json.RawMessage { return h.source }

// Page is one page of hits plus the aggregations computed over all matches.
type Page struct {
	total        int64
	maxScore     float64
	hits         []Hit
	aggregations map[string]json.RawMessage
	next         string
}

// NewPage creates a result page.
func NewPage(total int64, maxScore float64, hits []Hit, aggregations map[string]json.RawMessage) Page {
	return Page{total: total, maxScore: maxScore, hits: hits, aggregations: aggregations}
}

// WithNext returns a copy carrying the cursor of the following page.
func (p Page) WithNext(cursor string) Page {
	p.next = cursor
	return p
}

// Next returns the cursor of the following page, empty on the last page.
func (p *Page) Next() string { return p.next }

// HasNext reports whether another page may follow.
func (p *Page) HasNext() bool { return p.next != "" }

// Total returns the number of matching documents.
func (p *Page) Total() int64 { return p.total }

// MaxScore returns the highest score among all matches.
func (p *Page) MaxScore() float64 { return p.maxScore }

// Hits returns the hits of this page.
func (p *Page) Hits() []Hit { return p.hits }

// HasAggregations reports whether any aggregation was returned.
func (p *Page) HasAggregations() bool { return len(p.aggregations) > 0 }

// Aggregations returns the raw aggregation results keyed by name.
func (p *Page) Aggregations() map[string]json.RawMessage { return p.aggregations }

// Aggregation returns the raw result of one aggregation.
func (p *Page) Aggregation(name string) (json.RawMessage, bool) {
	a, ok := p.aggregations[name]
	return a, ok
}

// Bucket is one terms aggregation bucket.
type Bucket struct {
	Key      any   `json:"key"`
	DocCount int64 `json:"doc_count"`
}

// TermsBuckets decodes the buckets of a terms aggregation.
func (p *Page) TermsBuckets(name string) ([]Bucket, error) {
	raw, ok := p.aggregations[name]
	if !ok {
		return nil, fmt.Errorf("aggregation %q not found", name)
	}
	var out struct {
		Buckets []Bucket `json:"buckets"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("aggregation %q: %w", name, err)
	}
	return out.Buckets, nil
}

// MetricValue decodes the value of a single-value metric aggregation.
// A null value (no documents) decodes as nil.
func (p *Page) MetricValue(name string) (*float64, error) {
	raw, ok := p.aggregations[name]
	if !ok {
		return nil, fmt.Errorf("aggregation %q not found", name)
	}
	var out struct {
		Value *float64 `json:"value"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("aggregation %q: %w", name, err)
	}
	return out.Value, nil
}
