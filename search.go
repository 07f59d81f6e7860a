package esdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kailas-cloud/esdata/internal/domain"
	"github.com/kailas-cloud/esdata/internal/domain/search/filter"
	"github.com/kailas-cloud/esdata/internal/domain/search/mode"
	"github.com/kailas-cloud/esdata/internal/domain/search/request"
	"github.com/kailas-cloud/esdata/internal/domain/search/result"
)

// MatchMode is the full-text matching strategy.
type MatchMode = mode.Mode

// Match modes.
const (
	MatchAny    = mode.Any
	MatchAll    = mode.All
	MatchPhrase = mode.Phrase
	MatchPrefix = mode.Prefix
)

// AggregationKind selects the aggregation computed over all matches.
type AggregationKind = request.AggregationKind

// Aggregation kinds.
const (
	AggTerms       = request.AggTerms
	AggMin         = request.AggMin
	AggMax         = request.AggMax
	AggAvg         = request.AggAvg
	AggSum         = request.AggSum
	AggCardinality = request.AggCardinality
)

// ScoreField sorts by relevance.
const ScoreField = request.ScoreField

// Bucket is one terms aggregation bucket.
type Bucket = result.Bucket

// Bounds is a range condition. Nil bounds are absent.
type Bounds struct {
	Gt  any
	Gte any
	Lt  any
	Lte any
}

// SearchBuilder accumulates a query against one entity. Fields are referenced
// by property name or field name. Errors surface from Do.
type SearchBuilder[T any] struct {
	repo    *Repository[T]
	params  request.Params
	must    []filter.Condition
	should  []filter.Condition
	mustNot []filter.Condition
	errs    []error
}

// Match sets the full-text query. No fields means every text field.
func (b *SearchBuilder[T]) Match(query string, fields ...string) *SearchBuilder[T] {
	b.params.Query = query
	b.params.Fields = fields
	return b
}

// Mode sets how query terms combine. Defaults to MatchAny.
func (b *SearchBuilder[T]) Mode(m MatchMode) *SearchBuilder[T] {
	b.params.Mode = m
	return b
}

// Where requires field to equal value.
func (b *SearchBuilder[T]) Where(field string, value any) *SearchBuilder[T] {
	if c, ok := b.term(field, value); ok {
		b.must = append(b.must, c)
	}
	return b
}

// WhereAny adds an optional condition. At least one optional condition must match.
func (b *SearchBuilder[T]) WhereAny(field string, value any) *SearchBuilder[T] {
	if c, ok := b.term(field, value); ok {
		b.should = append(b.should, c)
	}
	return b
}

// WhereNot excludes documents whose field equals value.
func (b *SearchBuilder[T]) WhereNot(field string, value any) *SearchBuilder[T] {
	if c, ok := b.term(field, value); ok {
		b.mustNot = append(b.mustNot, c)
	}
	return b
}

// Range requires field to fall within bounds.
func (b *SearchBuilder[T]) Range(field string, bounds Bounds) *SearchBuilder[T] {
	r, err := filter.NewRangeFilter(bounds.Gt, bounds.Gte, bounds.Lt, bounds.Lte)
	if err != nil {
		b.errs = append(b.errs, fmt.Errorf("range on %q: %w", field, err))
		return b
	}
	c, err := filter.NewRange(field, r)
	if err != nil {
		b.errs = append(b.errs, err)
		return b
	}
	b.must = append(b.must, c)
	return b
}

// SortBy appends a sort key. Use ScoreField to sort by relevance.
func (b *SearchBuilder[T]) SortBy(field string, desc bool) *SearchBuilder[T] {
	s, err := request.NewSort(field, desc)
	if err != nil {
		b.errs = append(b.errs, err)
		return b
	}
	b.params.Sort = append(b.params.Sort, s)
	return b
}

// Page selects the window of hits.
func (b *SearchBuilder[T]) Page(from, size int) *SearchBuilder[T] {
	b.params.From = from
	b.params.Size = size
	return b
}

// Continue pages with search_after cursors instead of offsets, so a result set
// of any size can be walked. Read the next page with After(hits.Next()).
func (b *SearchBuilder[T]) Continue() *SearchBuilder[T] {
	b.params.Continue = true
	return b
}

// After resumes a continued search after the page that returned cursor.
func (b *SearchBuilder[T]) After(cursor string) *SearchBuilder[T] {
	b.params.Continue = true
	b.params.After = cursor
	return b
}

// MinScore drops hits scoring below score.
func (b *SearchBuilder[T]) MinScore(score float64) *SearchBuilder[T] {
	b.params.MinScore = score
	return b
}

// Aggregate adds an aggregation named name over field.
func (b *SearchBuilder[T]) Aggregate(name string, kind AggregationKind, field string) *SearchBuilder[T] {
	return b.AggregateTop(name, kind, field, 0)
}

// AggregateTop is Aggregate with an explicit terms bucket count.
func (b *SearchBuilder[T]) AggregateTop(name string, kind AggregationKind, field string, size int) *SearchBuilder[T] {
	a, err := request.NewAggregation(name, kind, field, size)
	if err != nil {
		b.errs = append(b.errs, err)
		return b
	}
	b.params.Aggregations = append(b.params.Aggregations, a)
	return b
}

func (b *SearchBuilder[T]) term(field string, value any) (filter.Condition, bool) {
	c, err := filter.NewTerm(field, value)
	if err != nil {
		b.errs = append(b.errs, err)
		return filter.Condition{}, false
	}
	return c, true
}

// Do runs the query and decodes every hit into T.
func (b *SearchBuilder[T]) Do(ctx context.Context) (*SearchHits[T], error) {
	if len(b.errs) > 0 {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, errors.Join(b.errs...))
	}
	expr, err := filter.NewExpression(b.must, b.should, b.mustNot)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}
	p := b.params
	p.Filters = expr

	r := b.repo
	page, err := r.client.searchSvc.Search(ctx, r.entity.Type(), p)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	raw := page.Hits()
	hits := make([]SearchHit[T], len(raw))
	for i := range raw {
		h := &raw[i]
		content := newItem[T]()
		if err := r.entity.FromHit(&content, h.ID(), h.Version(), h.Score(), h.Source()); err != nil {
			return nil, fmt.Errorf("search: hit %q: %w", h.ID(), err)
		}
		hits[i] = SearchHit[T]{ID: h.ID(), Score: h.Score(), Version: h.Version(), Content: content}
	}
	return &SearchHits[T]{
		Total:    page.Total(),
		MaxScore: page.MaxScore(),
		Hits:     hits,
		page:     page,
	}, nil
}

// SearchHit is one decoded hit.
type SearchHit[T any] struct {
	ID      string
	Score   float64
	Version int64
	Content T
}

// SearchHits is one page of decoded hits plus aggregations over all matches.
type SearchHits[T any] struct {
	Total    int64
	MaxScore float64
	Hits     []SearchHit[T]

	page result.Page
}

// Contents returns the decoded values in hit order.
func (s *SearchHits[T]) Contents() []T {
	out := make([]T, len(s.Hits))
	for i, h := range s.Hits {
		out[i] = h.Content
	}
	return out
}

// Next returns the cursor of the following page of a continued search,
// empty when this page is the last.
func (s *SearchHits[T]) Next() string {
	return s.page.Next()
}

// HasNext reports whether a continued search may have more hits.
func (s *SearchHits[T]) HasNext() bool {
	return s.page.HasNext()
}

// HasAggregations reports whether any aggregation was returned.
func (s *SearchHits[T]) HasAggregations() bool {
	return s.page.HasAggregations()
}

// Aggregation returns the raw result of one aggregation.
func (s *SearchHits[T]) Aggregation(name string) (json.RawMessage, bool) {
	return s.page.Aggregation(name)
}

// TermsBuckets decodes the buckets of a terms aggregation.
func (s *SearchHits[T]) TermsBuckets(name string) ([]Bucket, error) {
	b, err := s.page.TermsBuckets(name)
	if err != nil {
		return nil, fmt.Errorf("terms buckets: %w", err)
	}
	return b, nil
}

// MetricValue decodes a single-value metric aggregation. Nil when no document matched.
func (s *SearchHits[T]) MetricValue(name string) (*float64, error) {
	v, err := s.page.MetricValue(name)
	if err != nil {
		return nil, fmt.Errorf("metric value: %w", err)
	}
	return v, nil
}
