package document

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/esdata/internal/db"
	domdoc "github.com/kailas-cloud/esdata/internal/domain/document"
	"github.com/kailas-cloud/esdata/internal/mapping"
)

// toRequest converts a domain document into an index request for the entity's index.
// A document without a version is written with internal versioning.
func toRequest(e *mapping.PersistentEntity, doc *domdoc.Document) (db.IndexRequest, error) {
	src, err := json.Marshal(doc.Source())
	if err != nil {
		return db.IndexRequest{}, fmt.Errorf("marshal document %s: %w", doc.ID(), err)
	}
	req := db.IndexRequest{Index: e.IndexName(), ID: doc.ID(), Source: src}
	if doc.HasVersion() {
		v := doc.Version()
		req.Version = &v
	}
	return req, nil
}

// decodeSource parses a stored _source keeping numbers as json.Number.
func decodeSource(raw []byte) (map[string]any, error) {
	src := make(map[string]any)
	if len(raw) == 0 {
		return src, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&src); err != nil {
		return nil, fmt.Errorf("decode source: %w", err)
	}
	return src, nil
}
