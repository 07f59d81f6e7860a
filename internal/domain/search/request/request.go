package request

import (
	"fmt"

	"github.com/kailas-cloud/esdata/internal/domain/search/filter"
	"github.com/kailas-cloud/esdata/internal/domain/search/mode"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength = 4096
	DefaultSize    = 10
	MaxSize        = 100
	// MaxWindow mirrors Elasticsearch's default index.max_result_window.
	MaxWindow       = 10000
	MaxSortFields   = 8
	MaxAggregations = 16
)

// Params are the raw search parameters before validation.
type Params struct {
	Query        string
	Mode         mode.Mode
	Fields       []string
	Filters      filter.Expression
	Sort         []Sort
	Aggregations []Aggregation
	From         int
	Size         int
	MinScore     float64
	// Continue pages with search_after instead of from, so results past MaxWindow stay reachable.
	Continue bool
	// After is the cursor of the previous page. It implies Continue.
	After string
}

// Request is a validated search query. Field references are not yet resolved.
type Request struct {
	query        string
	matchMode    mode.Mode
	fields       []string
	filters      filter.Expression
	sort         []Sort
	aggregations []Aggregation
	from         int
	size         int
	minScore     float64
	continued    bool
	after        Cursor
}

// New validates and normalizes search parameters.
// Defaults: mode=any, size=10. Size is clamped to MaxSize.
// An empty query matches all documents; filters still apply.
func New(p Params) (Request, error) {
	if len(p.Query) > MaxQueryLength {
		return Request{}, fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}
	if p.Mode == "" {
		p.Mode = mode.Any
	}
	if !p.Mode.IsValid() {
		return Request{}, fmt.Errorf("invalid match mode: %q", p.Mode)
	}
	if len(p.Fields) > 0 && p.Query == "" {
		return Request{}, fmt.Errorf("fields require a query")
	}
	for _, f := range p.Fields {
		if f == "" {
			return Request{}, fmt.Errorf("empty field in fields")
		}
	}
	if p.Size <= 0 {
		p.Size = DefaultSize
	}
	if p.Size > MaxSize {
		p.Size = MaxSize
	}
	if p.From < 0 {
		return Request{}, fmt.Errorf("from must not be negative")
	}
	if p.From > MaxWindow-p.Size {
		return Request{}, fmt.Errorf("from + size must not exceed %d", MaxWindow)
	}
	var after Cursor
	if p.After != "" {
		c, err := DecodeCursor(p.After)
		if err != nil {
			return Request{}, err
		}
		after = c
		p.Continue = true
	}
	if p.Continue && p.From != 0 {
		return Request{}, fmt.Errorf("from cannot be combined with a continuation")
	}
	if p.MinScore < 0 {
		return Request{}, fmt.Errorf("min_score must not be negative")
	}
	if len(p.Sort) > MaxSortFields {
		return Request{}, fmt.Errorf("too many sort fields (max %d)", MaxSortFields)
	}
	if len(p.Aggregations) > MaxAggregations {
		return Request{}, fmt.Errorf("too many aggregations (max %d)", MaxAggregations)
	}
	seen := make(map[string]bool, len(p.Aggregations))
	for _, a := range p.Aggregations {
		if seen[a.Name()] {
			return Request{}, fmt.Errorf("duplicate aggregation name %q", a.Name())
		}
		seen[a.Name()] = true
	}

	return Request{
		query:        p.Query,
		matchMode:    p.Mode,
		fields:       p.Fields,
		filters:      p.Filters,
		sort:         p.Sort,
		aggregations: p.Aggregations,
		from:         p.From,
		size:         p.Size,
		minScore:     p.MinScore,
		continued:    p.Continue,
		after:        after,
	}, nil
}

// Query returns the full-text query, empty for match-all.
func (r *Request) Query() string { return r.query }

// Mode returns the matching strategy.
func (r *Request) Mode() mode.Mode { return r.matchMode }

// Fields returns the fields the query runs against; empty means every text field.
func (r *Request) Fields() []string { return r.fields }

// Filters returns the non-scoring filter expression.
func (r *Request) Filters() filter.Expression { return r.filters }

// Sort returns the sort order; empty means by score.
func (r *Request) Sort() []Sort { return r.sort }

// Aggregations returns the requested aggregations.
func (r *Request) Aggregations() []Aggregation { return r.aggregations }

// From returns the offset of the first hit.
func (r *Request) From() int { return r.from }

// Size returns the page size.
func (r *Request) Size() int { return r.size }

// MinScore returns the minimum relevance score, 0 for none.
func (r *Request) MinScore() float64 { return r.minScore }

// Continued reports whether pages chain through search_after cursors.
func (r *Request) Continued() bool { return r.continued }

// After returns the sort values to resume after, nil for the first page.
func (r *Request) After() Cursor { return r.after }

// WithSizeLimit returns a copy whose size is clamped to limit.
func (r *Request) WithSizeLimit(limit int) Request {
	out := *r
	if limit > 0 && out.size > limit {
		out.size = limit
	}
	return out
}
