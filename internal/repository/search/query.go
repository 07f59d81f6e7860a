package search

import (
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/esdata/internal/domain"
	"github.com/kailas-cloud/esdata/internal/domain/search/filter"
	"github.com/kailas-cloud/esdata/internal/domain/search/request"
	"github.com/kailas-cloud/esdata/internal/mapping"
)

// fieldUse is the part of a query a field reference appears in.
type fieldUse string

const (
	useMatch  fieldUse = "match"
	useFilter fieldUse = "filter"
	useSort   fieldUse = "sort"
	useTerms  fieldUse = "terms aggregation"
	useMetric fieldUse = "metric aggregation"
)

// Compile renders req as an Elasticsearch search body for entity e.
// Every field reference goes through the entity, so callers may use either the
// declared property name or the mapped field name.
func Compile(e *mapping.PersistentEntity, req *request.Request) ([]byte, error) {
	c := compiler{entity: e}

	query, err := c.query(req)
	if err != nil {
		return nil, err
	}
	body := map[string]any{
		"query":            query,
		"from":             req.From(),
		"size":             req.Size(),
		"version":          true,
		"track_total_hits": true,
	}

	if req.Continued() {
		sort, err := c.continuationSort(req.Sort())
		if err != nil {
			return nil, err
		}
		body["sort"] = sort
		if after := req.After(); after != nil {
			if len(after) != len(sort) {
				return nil, fmt.Errorf("%w: cursor has %d sort values, query sorts on %d",
					domain.ErrInvalidQuery, len(after), len(sort))
			}
			body["search_after"] = after
		}
		if req.Query() != "" {
			body["track_scores"] = true
		}
	} else if len(req.Sort()) > 0 {
		sort, err := c.sort(req.Sort())
		if err != nil {
			return nil, err
		}
		body["sort"] = sort
		if req.Query() != "" {
			body["track_scores"] = true
		}
	}
	if len(req.Aggregations()) > 0 {
		aggs, err := c.aggregations(req.Aggregations())
		if err != nil {
			return nil, err
		}
		body["aggs"] = aggs
	}
	if req.MinScore() > 0 {
		body["min_score"] = req.MinScore()
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}
	return data, nil
}

type compiler struct {
	entity *mapping.PersistentEntity
}

func (c compiler) query(req *request.Request) (any, error) {
	var match any
	if req.Query() != "" {
		mm, err := c.multiMatch(req)
		if err != nil {
			return nil, err
		}
		match = map[string]any{"multi_match": mm}
	}

	f := req.Filters()
	if f.IsEmpty() {
		if match == nil {
			return map[string]any{"match_all": map[string]any{}}, nil
		}
		return match, nil
	}

	must, err := c.conditions(f.Must())
	if err != nil {
		return nil, err
	}
	should, err := c.conditions(f.Should())
	if err != nil {
		return nil, err
	}
	mustNot, err := c.conditions(f.MustNot())
	if err != nil {
		return nil, err
	}

	b := map[string]any{}
	if match != nil {
		b["must"] = []any{match}
	}
	filters := must
	if len(should) > 0 {
		filters = append(filters, map[string]any{
			"bool": map[string]any{"should": should, "minimum_should_match": 1},
		})
	}
	if len(filters) > 0 {
		b["filter"] = filters
	}
	if len(mustNot) > 0 {
		b["must_not"] = mustNot
	}
	return map[string]any{"bool": b}, nil
}

func (c compiler) multiMatch(req *request.Request) (map[string]any, error) {
	m := req.Mode()
	mm := map[string]any{
		"query": req.Query(),
		"type":  m.MultiMatchType(),
	}
	if m.MultiMatchType() == "best_fields" {
		mm["operator"] = m.Operator()
	}

	var fields []string
	if len(req.Fields()) > 0 {
		for _, ref := range req.Fields() {
			p, err := c.resolve(ref, useMatch)
			if err != nil {
				return nil, err
			}
			fields = append(fields, p.FieldName())
		}
	} else {
		for _, p := range c.entity.Properties() {
			if p.IsWritable() && p.Indexed() && p.FieldType() == mapping.FieldTypeText {
				fields = append(fields, p.FieldName())
			}
		}
	}
	// no text fields: let the index default_field decide
	if len(fields) > 0 {
		mm["fields"] = fields
	}
	return mm, nil
}

func (c compiler) conditions(conds []filter.Condition) ([]any, error) {
	out := make([]any, 0, len(conds))
	for _, cond := range conds {
		p, err := c.resolve(cond.Field(), useFilter)
		if err != nil {
			return nil, err
		}
		switch {
		case cond.IsRange():
			out = append(out, map[string]any{
				"range": map[string]any{p.FieldName(): cond.Range().Bounds()},
			})
		default:
			out = append(out, map[string]any{
				"term": map[string]any{p.FieldName(): cond.Term()},
			})
		}
	}
	return out, nil
}

func (c compiler) sort(sorts []request.Sort) ([]any, error) {
	out := make([]any, 0, len(sorts))
	for _, s := range sorts {
		field := request.ScoreField
		if !s.IsScore() {
			p, err := c.resolve(s.Field(), useSort)
			if err != nil {
				return nil, err
			}
			field = p.FieldName()
		}
		out = append(out, map[string]any{field: map[string]any{"order": s.Order()}})
	}
	return out, nil
}

// continuationSort is the requested order (score by default) with the id field
// appended as a tiebreaker, so every hit has a distinct search_after position.
func (c compiler) continuationSort(sorts []request.Sort) ([]any, error) {
	id, ok := c.entity.IDProperty()
	if !ok {
		return nil, fmt.Errorf("%w: %s has no id property to continue a search on", domain.ErrInvalidQuery, c.entity.Type())
	}
	if _, err := c.resolve(id.FieldName(), useSort); err != nil {
		return nil, err
	}
	if len(sorts) == 0 {
		score, err := request.NewSort(request.ScoreField, true)
		if err != nil {
			return nil, err
		}
		sorts = []request.Sort{score}
	}
	hasID := false
	for _, s := range sorts {
		if !s.IsScore() {
			if p, err := c.entity.ResolveFieldName(s.Field()); err == nil && p == id {
				hasID = true
			}
		}
	}
	if !hasID {
		tiebreak, err := request.NewSort(id.FieldName(), false)
		if err != nil {
			return nil, err
		}
		sorts = append(sorts[:len(sorts):len(sorts)], tiebreak)
	}
	return c.sort(sorts)
}

func (c compiler) aggregations(aggs []request.Aggregation) (map[string]any, error) {
	out := make(map[string]any, len(aggs))
	for _, a := range aggs {
		use := useMetric
		if a.Kind() == request.AggTerms || a.Kind() == request.AggCardinality {
			use = useTerms
		}
		p, err := c.resolve(a.Field(), use)
		if err != nil {
			return nil, err
		}
		params := map[string]any{"field": p.FieldName()}
		if a.Kind() == request.AggTerms {
			params["size"] = a.Size()
		}
		out[a.Name()] = map[string]any{string(a.Kind()): params}
	}
	return out, nil
}

// resolve maps a field reference to a property and checks it can serve use.
func (c compiler) resolve(ref string, use fieldUse) (*mapping.PersistentProperty, error) {
	p, err := c.entity.ResolveFieldName(ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %s", domain.ErrInvalidQuery, domain.ErrPropertyNotFound, ref)
	}
	if !p.IsWritable() {
		return nil, fmt.Errorf("%w: %s is hit metadata and cannot be used in %s", domain.ErrInvalidQuery, ref, use)
	}
	if !p.Indexed() {
		return nil, fmt.Errorf("%w: %s is not indexed", domain.ErrInvalidQuery, ref)
	}

	t := p.FieldType()
	ok := true
	switch use {
	case useMatch:
		ok = t == mapping.FieldTypeText || t == mapping.FieldTypeKeyword
	case useFilter:
		ok = t != mapping.FieldTypeObject
	case useSort, useTerms:
		ok = t != mapping.FieldTypeText && t != mapping.FieldTypeObject
	case useMetric:
		ok = isNumeric(t) || t == mapping.FieldTypeDate
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s field %s cannot be used in %s", domain.ErrInvalidQuery, t, ref, use)
	}
	return p, nil
}

func isNumeric(t mapping.FieldType) bool {
	switch t {
	case mapping.FieldTypeLong, mapping.FieldTypeInteger, mapping.FieldTypeFloat, mapping.FieldTypeDouble:
		return true
	}
	return false
}
