package chi

import (
	"fmt"

	dombatch "github.com/kailas-cloud/esdata/internal/domain/batch"
	domdoc "github.com/kailas-cloud/esdata/internal/domain/document"
	"github.com/kailas-cloud/esdata/internal/domain/search/filter"
	"github.com/kailas-cloud/esdata/internal/domain/search/mode"
	"github.com/kailas-cloud/esdata/internal/domain/search/request"
	"github.com/kailas-cloud/esdata/internal/domain/search/result"
	"github.com/kailas-cloud/esdata/internal/mapping"
	"github.com/kailas-cloud/esdata/internal/transport/api"
	entityuc "github.com/kailas-cloud/esdata/internal/usecase/entity"
)

func entityToAPI(e *mapping.PersistentEntity) api.Entity {
	props := e.Properties()
	out := api.Entity{
		Type:       e.Type(),
		Index:      e.IndexName(),
		Properties: make([]api.Property, len(props)),
	}
	for i, p := range props {
		out.Properties[i] = propertyToAPI(p)
	}
	return out
}

func propertyToAPI(p *mapping.PersistentProperty) api.Property {
	return api.Property{
		Name:           p.Name(),
		FieldName:      p.FieldName(),
		FieldType:      string(p.FieldType()),
		Role:           roleOf(p),
		Indexed:        p.Indexed(),
		Writable:       p.IsWritable(),
		Analyzer:       optString(p.Analyzer()),
		SearchAnalyzer: optString(p.SearchAnalyzer()),
		Format:         optString(p.Format()),
	}
}

func roleOf(p *mapping.PersistentProperty) *string {
	switch {
	case p.IsID():
		return optString(string(mapping.RoleID))
	case p.IsVersion():
		return optString(string(mapping.RoleVersion))
	case p.IsScore():
		return optString(string(mapping.RoleScore))
	default:
		return nil
	}
}

func ensureResultToAPI(r entityuc.EnsureResult) api.EnsureIndexResponse {
	return api.EnsureIndexResponse{Type: r.Type, Index: r.Index, Created: r.Created}
}

func documentToAPI(doc *domdoc.Document) api.DocumentResponse {
	return api.DocumentResponse{
		ID:      doc.ID(),
		Version: doc.Version(),
		Content: doc.Source(),
	}
}

func batchResultToAPI(r dombatch.Result) api.BulkResultItem {
	item := api.BulkResultItem{
		ID:     r.ID(),
		Status: string(r.Status()),
	}
	if r.Status() == dombatch.StatusOK {
		v := r.Version()
		item.Version = &v
	}
	if r.Err() != nil {
		item.Error = &api.ErrorResponse{
			Code:    batchErrorCode(r.Err()),
			Message: safeDomainMessage(r.Err()),
		}
	}
	return item
}

func searchParamsFromAPI(req api.SearchRequest) (request.Params, error) {
	p := request.Params{
		Query:    derefString(req.Query),
		Mode:     mode.Mode(derefString(req.Mode)),
		From:     derefInt(req.From),
		Size:     derefInt(req.Size),
		MinScore: derefFloat(req.MinScore),
		Continue: req.Continue != nil && *req.Continue,
		After:    derefString(req.After),
	}
	if req.Fields != nil {
		p.Fields = *req.Fields
	}

	if req.Filters != nil {
		expr, err := filtersFromAPI(req.Filters)
		if err != nil {
			return request.Params{}, err
		}
		p.Filters = expr
	}

	if req.Sort != nil {
		for _, sf := range *req.Sort {
			desc, err := sortDesc(sf.Order)
			if err != nil {
				return request.Params{}, err
			}
			s, err := request.NewSort(sf.Field, desc)
			if err != nil {
				return request.Params{}, fmt.Errorf("sort: %w", err)
			}
			p.Sort = append(p.Sort, s)
		}
	}

	if req.Aggregations != nil {
		for _, a := range *req.Aggregations {
			agg, err := request.NewAggregation(a.Name, request.AggregationKind(a.Kind), a.Field, derefInt(a.Size))
			if err != nil {
				return request.Params{}, fmt.Errorf("aggregation: %w", err)
			}
			p.Aggregations = append(p.Aggregations, agg)
		}
	}

	return p, nil
}

func sortDesc(order *string) (bool, error) {
	switch derefString(order) {
	case "", "asc":
		return false, nil
	case "desc":
		return true, nil
	default:
		return false, fmt.Errorf("sort order must be asc or desc, got %q", *order)
	}
}

func filtersFromAPI(f *api.FilterExpression) (filter.Expression, error) {
	must, err := conditionsFromAPI(f.Must)
	if err != nil {
		return filter.Expression{}, err
	}
	should, err := conditionsFromAPI(f.Should)
	if err != nil {
		return filter.Expression{}, err
	}
	mustNot, err := conditionsFromAPI(f.MustNot)
	if err != nil {
		return filter.Expression{}, err
	}
	expr, err := filter.NewExpression(must, should, mustNot)
	if err != nil {
		return filter.Expression{}, fmt.Errorf("filters: %w", err)
	}
	return expr, nil
}

func conditionsFromAPI(conds []api.FilterCondition) ([]filter.Condition, error) {
	if len(conds) == 0 {
		return nil, nil
	}
	out := make([]filter.Condition, 0, len(conds))
	for _, c := range conds {
		cond, err := filterConditionFromAPI(c)
		if err != nil {
			return nil, err
		}
		out = append(out, cond)
	}
	return out, nil
}

func filterConditionFromAPI(c api.FilterCondition) (filter.Condition, error) {
	if c.Range != nil && c.Match != nil {
		return filter.Condition{}, fmt.Errorf("filter on %q: match and range are mutually exclusive", c.Field)
	}
	if c.Range != nil {
		r, err := filter.NewRangeFilter(c.Range.Gt, c.Range.Gte, c.Range.Lt, c.Range.Lte)
		if err != nil {
			return filter.Condition{}, fmt.Errorf("filter on %q: %w", c.Field, err)
		}
		cond, err := filter.NewRange(c.Field, r)
		if err != nil {
			return filter.Condition{}, fmt.Errorf("filter: %w", err)
		}
		return cond, nil
	}
	cond, err := filter.NewTerm(c.Field, c.Match)
	if err != nil {
		return filter.Condition{}, fmt.Errorf("filter: %w", err)
	}
	return cond, nil
}

func pageToAPI(p *result.Page) api.SearchResponse {
	hits := p.Hits()
	items := make([]api.SearchHit, len(hits))
	for i := range hits {
		h := &hits[i]
		items[i] = api.SearchHit{
			ID:      h.ID(),
			Score:   h.Score(),
			Version: h.Version(),
			Content: h.Source(),
		}
	}
	resp := api.SearchResponse{
		Total:    p.Total(),
		MaxScore: p.MaxScore(),
		Items:    items,
	}
	if p.HasAggregations() {
		resp.Aggregations = p.Aggregations()
	}
	resp.Next = optString(p.Next())
	return resp
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func derefInt64(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}

func derefFloat(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
