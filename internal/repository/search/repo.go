package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/esdata/internal/db"
	"github.com/kailas-cloud/esdata/internal/domain"
	"github.com/kailas-cloud/esdata/internal/domain/search/request"
	"github.com/kailas-cloud/esdata/internal/domain/search/result"
	"github.com/kailas-cloud/esdata/internal/mapping"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	Search(ctx context.Context, index string, body []byte) (*db.SearchResult, error)
}

// Repo implements usecase/search.Repository.
type Repo struct {
	store store
}

// New creates a search repository. s may be the Elasticsearch store or a cache in front of it.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Search runs req against the entity's index.
func (r *Repo) Search(ctx context.Context, e *mapping.PersistentEntity, req *request.Request) (result.Page, error) {
	body, err := Compile(e, req)
	if err != nil {
		return result.Page{}, err
	}

	sr, err := r.store.Search(ctx, e.IndexName(), body)
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return result.Page{}, fmt.Errorf("search %s: %w: %w", e.IndexName(), domain.ErrIndexNotFound, err)
		}
		return result.Page{}, fmt.Errorf("search %s: %w", e.IndexName(), err)
	}

	page := toPage(sr)
	if !req.Continued() || len(sr.Hits) < req.Size() {
		return page, nil
	}
	last := sr.Hits[len(sr.Hits)-1]
	if len(last.Sort) == 0 {
		return page, nil
	}
	next, err := request.EncodeCursor(last.Sort)
	if err != nil {
		return result.Page{}, fmt.Errorf("search %s: %w", e.IndexName(), err)
	}
	return page.WithNext(next), nil
}

func toPage(sr *db.SearchResult) result.Page {
	hits := make([]result.Hit, 0, len(sr.Hits))
	for i := range sr.Hits {
		h := &sr.Hits[i]
		hits = append(hits, result.New(h.ID, h.Score, h.Version, h.Source))
	}
	return result.NewPage(sr.Total, sr.MaxScore, hits, sr.Aggregations)
}
