package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kailas-cloud/esdata/internal/db"
)

type bulkAction struct {
	Index bulkMeta `json:"index"`
}

type bulkMeta struct {
	Index       string `json:"_index"`
	ID          string `json:"_id,omitempty"`
	Version     *int64 `json:"version,omitempty"`
	VersionType string `json:"version_type,omitempty"`
}

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		ID      string     `json:"_id"`
		Version int64      `json:"_version"`
		Status  int        `json:"status"`
		Error   *errorInfo `json:"error"`
	} `json:"items"`
}

type errorInfo struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// BulkIndex writes all documents in one request. The returned slice has one entry per
// request, in order; per-item failures are reported in Err, not as the call error.
func (s *Store) BulkIndex(ctx context.Context, reqs []db.IndexRequest, refresh bool) ([]db.BulkItemResult, error) {
	if len(reqs) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i := range reqs {
		r := &reqs[i]
		meta := bulkMeta{Index: r.Index, ID: r.ID, Version: r.Version}
		if r.Version != nil {
			meta.VersionType = "external"
		}
		if err := enc.Encode(bulkAction{Index: meta}); err != nil {
			return nil, &db.Error{Op: db.OpBulk, Err: err}
		}
		buf.Write(bytes.TrimSpace(r.Source))
		buf.WriteByte('\n')
	}

	start := time.Now()
	res, err := s.client.Bulk(bytes.NewReader(buf.Bytes()),
		s.client.Bulk.WithContext(ctx),
		s.client.Bulk.WithRefresh(s.refreshFor(refresh)),
	)
	if err = failed(db.OpBulk, res, err); err != nil {
		s.observe(db.OpBulk, start, err)
		return nil, err
	}
	defer res.Body.Close()

	var out bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		err = &db.Error{Op: db.OpBulk, Err: fmt.Errorf("decode response: %w", err)}
		s.observe(db.OpBulk, start, err)
		return nil, err
	}
	s.observe(db.OpBulk, start, nil)

	results := make([]db.BulkItemResult, len(out.Items))
	for i, item := range out.Items {
		for _, r := range item {
			results[i] = db.BulkItemResult{ID: r.ID, Version: r.Version, Status: r.Status}
			if r.Error != nil {
				results[i].Err = &db.Error{Op: db.OpBulk, Err: &ResponseError{
					Status: r.Status, Type: r.Error.Type, Reason: r.Error.Reason,
				}}
			}
		}
	}
	return results, nil
}
