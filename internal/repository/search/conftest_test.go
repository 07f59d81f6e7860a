package search

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/kailas-cloud/esdata/internal/db"
	"github.com/kailas-cloud/esdata/internal/domain/search/request"
	"github.com/kailas-cloud/esdata/internal/mapping"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	searchFn func(ctx context.Context, index string, body []byte) (*db.SearchResult, error)
}

func (m *mockStore) Search(ctx context.Context, index string, body []byte) (*db.SearchResult, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, index, body)
	}
	return &db.SearchResult{}, nil
}

func bookEntity(t *testing.T) *mapping.PersistentEntity {
	t.Helper()
	c := mapping.NewContext()
	err := c.Register(mapping.Schema{
		Type:  "book",
		Index: "books",
		Fields: []mapping.FieldSpec{
			{Name: "id", Type: mapping.KindString, Role: mapping.RoleID},
			{Name: "title", Type: mapping.KindString, Analyzer: "english"},
			{Name: "summary", Type: mapping.KindString},
			{Name: "author", Type: mapping.KindString, FieldName: "author-name", FieldType: mapping.FieldTypeKeyword},
			{Name: "pages", Type: mapping.KindInt32},
			{Name: "published", Type: mapping.KindTime},
			{Name: "notes", Type: mapping.KindString, NotIndexed: true},
			{Name: "meta", Type: mapping.KindObject},
			{Name: "version", Type: mapping.KindInt64, Role: mapping.RoleVersion},
			{Name: "score", Type: mapping.KindFloat32, Role: mapping.RoleScore},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	e, err := c.GetRequiredPersistentEntity("book")
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func mustRequest(t *testing.T, p request.Params) *request.Request {
	t.Helper()
	r, err := request.New(p)
	if err != nil {
		t.Fatal(err)
	}
	return &r
}

// compile renders the request and decodes the body into generic JSON for assertions.
func compile(t *testing.T, e *mapping.PersistentEntity, r *request.Request) map[string]any {
	t.Helper()
	body, err := Compile(e, r)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatal(err)
	}
	return out
}

// dig walks nested maps and slices by key or index.
func dig(t *testing.T, v any, path ...any) any {
	t.Helper()
	for _, p := range path {
		switch k := p.(type) {
		case string:
			m, ok := v.(map[string]any)
			if !ok {
				t.Fatalf("at %q: %T is not an object", k, v)
			}
			v = m[k]
		case int:
			s, ok := v.([]any)
			if !ok || k >= len(s) {
				t.Fatalf("at [%d]: %v is not a long enough array", k, v)
			}
			v = s[k]
		}
	}
	return v
}
