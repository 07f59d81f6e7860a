package esdata

import (
	"context"
	"errors"
	"testing"
)

func newBookRepo(t *testing.T) (*Repository[testBook], *memStore) {
	t.Helper()
	c, store := newTestClient()
	repo, err := NewRepository[testBook](c)
	if err != nil {
		t.Fatal(err)
	}
	return repo, store
}

func TestNewRepository_InvalidType(t *testing.T) {
	c, _ := newTestClient()
	if _, err := NewRepository[map[string]any](c); !errors.Is(err, ErrInvalidMapping) {
		t.Errorf("expected ErrInvalidMapping, got %v", err)
	}

	type badTag struct {
		ID string `es:"id,primary"`
	}
	if _, err := NewRepository[badTag](c); !errors.Is(err, ErrMapping) {
		t.Errorf("expected ErrMapping, got %v", err)
	}
}

func TestRepository_Entity(t *testing.T) {
	repo, _ := newBookRepo(t)
	e := repo.Entity()
	if e.IndexName() != "books" {
		t.Errorf("index = %q, want books", e.IndexName())
	}
	if e.Type() != TypeOf[testBook]() {
		t.Errorf("type = %q", e.Type())
	}
	p, ok := e.GetPersistentProperty("Author")
	if !ok || p.FieldName() != "author_name" || p.FieldType() != FieldTypeKeyword {
		t.Errorf("Author property = %+v", p)
	}
}

func TestRepository_EnsureIndex(t *testing.T) {
	repo, store := newBookRepo(t)
	ctx := context.Background()

	created, err := repo.EnsureIndex(ctx)
	if err != nil || !created {
		t.Fatalf("created = %v, err = %v", created, err)
	}
	def := store.indices["books"]
	if def == nil {
		t.Fatal("books index missing")
	}
	created, err = repo.EnsureIndex(ctx)
	if err != nil || created {
		t.Errorf("second ensure: created = %v, err = %v", created, err)
	}
}

func TestRepository_SaveAndFind(t *testing.T) {
	repo, store := newBookRepo(t)
	ctx := context.Background()

	saved, err := repo.Save(ctx, testBook{ID: "b1", Title: "Dune", Author: "Herbert", Pages: 412})
	if err != nil {
		t.Fatal(err)
	}
	if saved.Version != 1 {
		t.Errorf("version = %d, want 1", saved.Version)
	}
	if saved.Title != "Dune" {
		t.Errorf("title = %q", saved.Title)
	}
	if _, ok := store.docs["books"]["b1"]; !ok {
		t.Fatal("document not stored in books")
	}

	// a carried version is external, so the next write must raise it
	saved.Pages = 500
	saved.Version++
	saved, err = repo.Save(ctx, saved)
	if err != nil {
		t.Fatal(err)
	}
	if saved.Version != 2 {
		t.Errorf("version = %d, want 2", saved.Version)
	}

	got, err := repo.FindByID(ctx, "b1")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != "b1" || got.Author != "Herbert" || got.Pages != 500 || got.Version != 2 {
		t.Errorf("found = %+v", got)
	}

	n, err := repo.Count(ctx)
	if err != nil || n != 1 {
		t.Errorf("count = %d, err = %v", n, err)
	}
}

func TestRepository_PointerType(t *testing.T) {
	c, _ := newTestClient()
	repo, err := NewRepository[*testBook](c)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	b := &testBook{ID: "p1", Title: "Emma"}
	if _, err := repo.Save(ctx, b); err != nil {
		t.Fatal(err)
	}
	if b.Version != 1 {
		t.Errorf("version not set in place: %d", b.Version)
	}

	got, err := repo.FindByID(ctx, "p1")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Title != "Emma" {
		t.Errorf("found = %+v", got)
	}
}

func TestRepository_ExternalVersionConflict(t *testing.T) {
	repo, _ := newBookRepo(t)
	ctx := context.Background()

	if _, err := repo.Save(ctx, testBook{ID: "v1", Title: "Ulysses", Version: 5}); err != nil {
		t.Fatal(err)
	}
	_, err := repo.Save(ctx, testBook{ID: "v1", Title: "Ulysses", Version: 3})
	if !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}
	var vc *VersionConflictError
	if !errors.As(err, &vc) {
		t.Fatalf("expected VersionConflictError, got %T", err)
	}
}

func TestRepository_SaveRejects(t *testing.T) {
	repo, _ := newBookRepo(t)
	if _, err := repo.Save(context.Background(), testBook{Title: "no id"}); !errors.Is(err, ErrInvalidDocument) {
		t.Errorf("expected ErrInvalidDocument, got %v", err)
	}
}

func TestRepository_NotFound(t *testing.T) {
	repo, _ := newBookRepo(t)
	ctx := context.Background()
	if _, err := repo.EnsureIndex(ctx); err != nil {
		t.Fatal(err)
	}

	if _, err := repo.FindByID(ctx, "missing"); !errors.Is(err, ErrDocumentNotFound) {
		t.Errorf("find: expected ErrDocumentNotFound, got %v", err)
	}
	if err := repo.Delete(ctx, "missing"); !errors.Is(err, ErrDocumentNotFound) {
		t.Errorf("delete: expected ErrDocumentNotFound, got %v", err)
	}
}

func TestRepository_Delete(t *testing.T) {
	repo, _ := newBookRepo(t)
	ctx := context.Background()
	if _, err := repo.Save(ctx, testBook{ID: "d1", Title: "Beloved"}); err != nil {
		t.Fatal(err)
	}
	if err := repo.Delete(ctx, "d1"); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.FindByID(ctx, "d1"); !errors.Is(err, ErrDocumentNotFound) {
		t.Errorf("expected ErrDocumentNotFound after delete, got %v", err)
	}
}

func TestRepository_SaveAll(t *testing.T) {
	repo, _ := newBookRepo(t)
	ctx := context.Background()
	if _, err := repo.Save(ctx, testBook{ID: "b2", Title: "Kim", Version: 10}); err != nil {
		t.Fatal(err)
	}

	results, err := repo.SaveAll(ctx, []testBook{
		{ID: "b1", Title: "Dune"},
		{ID: "b2", Title: "Kim", Version: 4},
		{ID: "b3", Title: "Nana"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}
	want := []BatchStatus{BatchOK, BatchConflict, BatchOK}
	for i, r := range results {
		if r.Status != want[i] {
			t.Errorf("item %d status = %q, want %q", i, r.Status, want[i])
		}
	}
	if !errors.Is(results[1].Err, ErrVersionConflict) {
		t.Errorf("item 1 err = %v", results[1].Err)
	}
	if results[0].Version != 1 {
		t.Errorf("item 0 version = %d", results[0].Version)
	}
}

func TestRepository_SaveAllRejectsInvalidItem(t *testing.T) {
	repo, store := newBookRepo(t)
	_, err := repo.SaveAll(context.Background(), []testBook{{ID: "ok", Title: "A"}, {Title: "no id"}})
	if !errors.Is(err, ErrInvalidDocument) {
		t.Fatalf("expected ErrInvalidDocument, got %v", err)
	}
	if len(store.docs["books"]) != 0 {
		t.Error("nothing should be written when an item is invalid")
	}
}

func TestRepository_SaveAllLimit(t *testing.T) {
	c, _ := newTestClient(WithMaxBatchSize(1))
	repo, err := NewRepository[testBook](c)
	if err != nil {
		t.Fatal(err)
	}
	_, err = repo.SaveAll(context.Background(), []testBook{{ID: "a", Title: "A"}, {ID: "b", Title: "B"}})
	if err == nil {
		t.Fatal("expected batch size error")
	}
}
