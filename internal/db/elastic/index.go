package elastic

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/kailas-cloud/esdata/internal/db"
)

// CreateIndex creates an index with settings and mappings.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if err := def.Validate(); err != nil {
		return fmt.Errorf("invalid index definition: %w", err)
	}
	body, err := def.Body()
	if err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}

	start := time.Now()
	res, err := s.client.Indices.Create(def.Name,
		s.client.Indices.Create.WithBody(bytes.NewReader(body)),
		s.client.Indices.Create.WithContext(ctx),
	)
	return s.check(db.OpCreateIndex, start, res, err)
}

// DropIndex deletes an index and its documents.
func (s *Store) DropIndex(ctx context.Context, name string) error {
	start := time.Now()
	res, err := s.client.Indices.Delete([]string{name},
		s.client.Indices.Delete.WithContext(ctx),
	)
	err = s.check(db.OpDeleteIndex, start, res, err)
	if isStatus(err, http.StatusNotFound) && !errors.Is(err, db.ErrIndexNotFound) {
		return &db.Error{Op: db.OpDeleteIndex, Err: db.ErrIndexNotFound}
	}
	return err
}

// IndexExists checks whether an index exists.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	start := time.Now()
	res, err := s.client.Indices.Exists([]string{name},
		s.client.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		err = &db.Error{Op: db.OpIndexExists, Err: err}
		s.observe(db.OpIndexExists, start, err)
		return false, err
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		s.observe(db.OpIndexExists, start, nil)
		return true, nil
	case http.StatusNotFound:
		s.observe(db.OpIndexExists, start, nil)
		return false, nil
	default:
		err := responseError(db.OpIndexExists, res, nil)
		s.observe(db.OpIndexExists, start, err)
		return false, err
	}
}

// PutMapping adds the definition's fields to an existing index.
// Elasticsearch rejects type changes of existing fields.
func (s *Store) PutMapping(ctx context.Context, def *db.IndexDefinition) error {
	body, err := def.MappingBody()
	if err != nil {
		return &db.Error{Op: db.OpPutMapping, Err: err}
	}

	start := time.Now()
	res, err := s.client.Indices.PutMapping([]string{def.Name}, bytes.NewReader(body),
		s.client.Indices.PutMapping.WithContext(ctx),
	)
	return s.check(db.OpPutMapping, start, res, err)
}

// RefreshIndex makes recent writes visible to search.
func (s *Store) RefreshIndex(ctx context.Context, name string) error {
	start := time.Now()
	res, err := s.client.Indices.Refresh(
		s.client.Indices.Refresh.WithIndex(name),
		s.client.Indices.Refresh.WithContext(ctx),
	)
	return s.check(db.OpRefresh, start, res, err)
}
