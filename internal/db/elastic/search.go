package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kailas-cloud/esdata/internal/db"
)

type searchResponse struct {
	Took int64 `json:"took"`
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		MaxScore *float64 `json:"max_score"`
		Hits     []struct {
			Index   string          `json:"_index"`
			ID      string          `json:"_id"`
			Version int64           `json:"_version"`
			Score   *float64        `json:"_score"`
			Source  json.RawMessage `json:"_source"`
			Sort    json.RawMessage `json:"sort"`
		} `json:"hits"`
	} `json:"hits"`
	Aggregations map[string]json.RawMessage `json:"aggregations"`
}

// Search runs a query DSL body against index.
func (s *Store) Search(ctx context.Context, index string, body []byte) (*db.SearchResult, error) {
	start := time.Now()
	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(index),
		s.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err = failed(db.OpSearch, res, err); err != nil {
		s.observe(db.OpSearch, start, err)
		return nil, err
	}
	defer res.Body.Close()

	var out searchResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		err = &db.Error{Op: db.OpSearch, Err: fmt.Errorf("decode response: %w", err)}
		s.observe(db.OpSearch, start, err)
		return nil, err
	}
	s.observe(db.OpSearch, start, nil)
	return toSearchResult(&out), nil
}

func toSearchResult(r *searchResponse) *db.SearchResult {
	out := &db.SearchResult{
		Took:         r.Took,
		Total:        r.Hits.Total.Value,
		Hits:         make([]db.SearchHit, 0, len(r.Hits.Hits)),
		Aggregations: r.Aggregations,
	}
	if r.Hits.MaxScore != nil {
		out.MaxScore = *r.Hits.MaxScore
	}
	for _, h := range r.Hits.Hits {
		hit := db.SearchHit{Index: h.Index, ID: h.ID, Version: h.Version, Source: h.Source, Sort: h.Sort}
		if h.Score != nil {
			hit.Score = *h.Score
		}
		out.Hits = append(out.Hits, hit)
	}
	return out
}
