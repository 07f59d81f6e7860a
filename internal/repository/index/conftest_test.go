package index

import (
	"context"
	"testing"

	"github.com/kailas-cloud/esdata/internal/db"
	"github.com/kailas-cloud/esdata/internal/mapping"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	createIndexFn  func(ctx context.Context, def *db.IndexDefinition) error
	dropIndexFn    func(ctx context.Context, name string) error
	indexExistsFn  func(ctx context.Context, name string) (bool, error)
	putMappingFn   func(ctx context.Context, def *db.IndexDefinition) error
	refreshIndexFn func(ctx context.Context, name string) error
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) DropIndex(ctx context.Context, name string) error {
	if m.dropIndexFn != nil {
		return m.dropIndexFn(ctx, name)
	}
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return false, nil
}

func (m *mockStore) PutMapping(ctx context.Context, def *db.IndexDefinition) error {
	if m.putMappingFn != nil {
		return m.putMappingFn(ctx, def)
	}
	return nil
}

func (m *mockStore) RefreshIndex(ctx context.Context, name string) error {
	if m.refreshIndexFn != nil {
		return m.refreshIndexFn(ctx, name)
	}
	return nil
}

func bookEntity(t *testing.T, mutate func(*mapping.Schema)) *mapping.PersistentEntity {
	t.Helper()
	replicas := 0
	s := mapping.Schema{
		Type:     "book",
		Index:    "books",
		Shards:   1,
		Replicas: &replicas,
		Fields: []mapping.FieldSpec{
			{Name: "id", Type: mapping.KindString, Role: mapping.RoleID},
			{Name: "title", Type: mapping.KindString, Analyzer: "english"},
			{Name: "author", Type: mapping.KindString, FieldName: "author-name", FieldType: mapping.FieldTypeKeyword},
			{Name: "published", Type: mapping.KindTime, Format: "strict_date"},
			{Name: "notes", Type: mapping.KindString, NotIndexed: true},
			{Name: "version", Type: mapping.KindInt64, Role: mapping.RoleVersion},
			{Name: "score", Type: mapping.KindFloat32, Role: mapping.RoleScore},
		},
	}
	if mutate != nil {
		mutate(&s)
	}
	c := mapping.NewContext()
	if err := c.Register(s); err != nil {
		t.Fatal(err)
	}
	e, err := c.GetRequiredPersistentEntity(s.Type)
	if err != nil {
		t.Fatal(err)
	}
	return e
}
