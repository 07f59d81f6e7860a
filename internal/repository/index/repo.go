package index

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/esdata/internal/db"
	"github.com/kailas-cloud/esdata/internal/domain"
	"github.com/kailas-cloud/esdata/internal/mapping"
)

// store is the consumer interface for index lifecycle (ISP).
type store interface {
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
	PutMapping(ctx context.Context, def *db.IndexDefinition) error
	RefreshIndex(ctx context.Context, name string) error
}

// Repo manages the index backing each entity.
type Repo struct {
	store store
}

// New creates an index repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Ensure creates the entity's index when missing, or puts the current mapping on an existing one.
// Reports whether the index was created. An entity that opted out of index creation
// gets domain.ErrIndexNotFound instead.
func (r *Repo) Ensure(ctx context.Context, e *mapping.PersistentEntity) (bool, error) {
	def, err := Definition(e)
	if err != nil {
		return false, err
	}

	exists, err := r.store.IndexExists(ctx, def.Name)
	if err != nil {
		return false, fmt.Errorf("check index %s: %w", def.Name, err)
	}
	if !exists {
		if !e.ShouldCreateIndex() {
			return false, fmt.Errorf("index %s: %w", def.Name, domain.ErrIndexNotFound)
		}
		err = r.store.CreateIndex(ctx, def)
		switch {
		case err == nil:
			return true, nil
		case !errors.Is(err, db.ErrIndexExists):
			return false, fmt.Errorf("create index %s: %w", def.Name, err)
		}
		// created concurrently, fall through to the mapping update
	}

	if err := r.store.PutMapping(ctx, def); err != nil {
		return false, fmt.Errorf("put mapping %s: %w", def.Name, err)
	}
	return false, nil
}

// Create creates the entity's index and fails when it already exists.
func (r *Repo) Create(ctx context.Context, e *mapping.PersistentEntity) error {
	def, err := Definition(e)
	if err != nil {
		return err
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return fmt.Errorf("index %s: %w", def.Name, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("create index %s: %w", def.Name, err)
	}
	return nil
}

// Exists reports whether the entity's index exists.
func (r *Repo) Exists(ctx context.Context, e *mapping.PersistentEntity) (bool, error) {
	ok, err := r.store.IndexExists(ctx, e.IndexName())
	if err != nil {
		return false, fmt.Errorf("check index %s: %w", e.IndexName(), err)
	}
	return ok, nil
}

// Drop deletes the entity's index and all its documents.
func (r *Repo) Drop(ctx context.Context, e *mapping.PersistentEntity) error {
	name := e.IndexName()
	if err := r.store.DropIndex(ctx, name); err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return fmt.Errorf("index %s: %w", name, domain.ErrIndexNotFound)
		}
		return fmt.Errorf("drop index %s: %w", name, err)
	}
	return nil
}

// Refresh makes recent writes visible to search.
func (r *Repo) Refresh(ctx context.Context, e *mapping.PersistentEntity) error {
	name := e.IndexName()
	if err := r.store.RefreshIndex(ctx, name); err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return fmt.Errorf("index %s: %w", name, domain.ErrIndexNotFound)
		}
		return fmt.Errorf("refresh index %s: %w", name, err)
	}
	return nil
}

// Definition derives the index definition of an entity without touching the cluster.
func (r *Repo) Definition(e *mapping.PersistentEntity) (*db.IndexDefinition, error) {
	return Definition(e)
}
