package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v9/esapi"

	"github.com/kailas-cloud/esdata/internal/db"
)

type writeResponse struct {
	ID      string `json:"_id"`
	Version int64  `json:"_version"`
	Result  string `json:"result"`
}

type getResponse struct {
	Index   string          `json:"_index"`
	ID      string          `json:"_id"`
	Version int64           `json:"_version"`
	Found   bool            `json:"found"`
	Source  json.RawMessage `json:"_source"`
}

// IndexDocument creates or replaces a document. With a version set, the write uses
// external versioning and fails with db.ErrVersionConflict unless the version is higher.
func (s *Store) IndexDocument(ctx context.Context, req *db.IndexRequest) (*db.IndexResult, error) {
	opts := []func(*esapi.IndexRequest){
		s.client.Index.WithContext(ctx),
		s.client.Index.WithRefresh(s.refreshFor(req.Refresh)),
	}
	if req.ID != "" {
		opts = append(opts, s.client.Index.WithDocumentID(req.ID))
	}
	if req.Version != nil {
		opts = append(opts,
			s.client.Index.WithVersion(int(*req.Version)),
			s.client.Index.WithVersionType("external"),
		)
	}

	start := time.Now()
	res, err := s.client.Index(req.Index, bytes.NewReader(req.Source), opts...)
	if err = failed(db.OpIndex, res, err); err != nil {
		s.observe(db.OpIndex, start, err)
		return nil, err
	}
	defer res.Body.Close()

	var out writeResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		err = &db.Error{Op: db.OpIndex, Err: fmt.Errorf("decode response: %w", err)}
		s.observe(db.OpIndex, start, err)
		return nil, err
	}
	s.observe(db.OpIndex, start, nil)
	return &db.IndexResult{ID: out.ID, Version: out.Version, Created: out.Result == "created"}, nil
}

// GetDocument fetches a document by id.
func (s *Store) GetDocument(ctx context.Context, index, id string) (*db.StoredDocument, error) {
	start := time.Now()
	res, err := s.client.Get(index, id, s.client.Get.WithContext(ctx))
	if err != nil {
		err = &db.Error{Op: db.OpGet, Err: err}
		s.observe(db.OpGet, start, err)
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		// A missing index also answers 404, but with an error envelope.
		err := responseError(db.OpGet, res, nil)
		if !errors.Is(err, db.ErrIndexNotFound) {
			err = &db.Error{Op: db.OpGet, Err: db.ErrDocumentNotFound}
		}
		s.observe(db.OpGet, start, nil)
		return nil, err
	}
	if err := responseError(db.OpGet, res, nil); err != nil {
		s.observe(db.OpGet, start, err)
		return nil, err
	}

	var out getResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		err = &db.Error{Op: db.OpGet, Err: fmt.Errorf("decode response: %w", err)}
		s.observe(db.OpGet, start, err)
		return nil, err
	}
	s.observe(db.OpGet, start, nil)
	if !out.Found {
		return nil, &db.Error{Op: db.OpGet, Err: db.ErrDocumentNotFound}
	}
	return &db.StoredDocument{Index: out.Index, ID: out.ID, Version: out.Version, Source: out.Source}, nil
}

// DeleteDocument removes a document by id.
func (s *Store) DeleteDocument(ctx context.Context, index, id string, refresh bool) error {
	start := time.Now()
	res, err := s.client.Delete(index, id,
		s.client.Delete.WithContext(ctx),
		s.client.Delete.WithRefresh(s.refreshFor(refresh)),
	)
	err = s.check(db.OpDelete, start, res, err)
	if isStatus(err, http.StatusNotFound) && !errors.Is(err, db.ErrIndexNotFound) {
		return &db.Error{Op: db.OpDelete, Err: db.ErrDocumentNotFound}
	}
	return err
}

// CountDocuments counts documents matching query (all documents when nil).
func (s *Store) CountDocuments(ctx context.Context, index string, query []byte) (int64, error) {
	opts := []func(*esapi.CountRequest){
		s.client.Count.WithContext(ctx),
		s.client.Count.WithIndex(index),
	}
	if len(query) > 0 {
		opts = append(opts, s.client.Count.WithBody(bytes.NewReader(query)))
	}

	start := time.Now()
	res, err := s.client.Count(opts...)
	if err = failed(db.OpCount, res, err); err != nil {
		s.observe(db.OpCount, start, err)
		return 0, err
	}
	defer res.Body.Close()

	var out struct {
		Count int64 `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		err = &db.Error{Op: db.OpCount, Err: fmt.Errorf("decode response: %w", err)}
		s.observe(db.OpCount, start, err)
		return 0, err
	}
	s.observe(db.OpCount, start, nil)
	return out.Count, nil
}

func (s *Store) refreshFor(force bool) string {
	if force {
		return "true"
	}
	return s.refreshParam()
}
