package mapping

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// BuildObserver is notified after every entity scan.
type BuildObserver interface {
	EntityBuilt(entityType string, took time.Duration, err error)
}

// ContextOption configures a Context.
type ContextOption func(*Context)

// WithLogger sets the logger used for build diagnostics.
func WithLogger(l *zap.Logger) ContextOption {
	return func(c *Context) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithObserver attaches a build observer (metrics).
func WithObserver(o BuildObserver) ContextOption {
	return func(c *Context) { c.observer = o }
}

// Context resolves type identifiers to persistent entities.
// Entities are built once per type and cached until Reset.
type Context struct {
	mu       sync.RWMutex
	schemas  map[string]Schema
	entities map[string]*PersistentEntity
	group    singleflight.Group

	logger   *zap.Logger
	observer BuildObserver
}

// NewContext creates an empty mapping context.
func NewContext(opts ...ContextOption) *Context {
	c := &Context{
		schemas:  make(map[string]Schema),
		entities: make(map[string]*PersistentEntity),
		logger:   zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Register makes s resolvable. Replacing the schema of an already built entity fails.
func (c *Context) Register(s Schema) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("register %q: %w", s.Type, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, built := c.entities[s.Type]; built {
		return fmt.Errorf("register %q: %w", s.Type,
			newMappingError(s.Type, "", "entity is already built"))
	}
	c.schemas[s.Type] = s.clone()
	return nil
}

func (c *Context) registered(entityType string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.schemas[entityType]
	return ok
}

// registerIfAbsent stores an already validated schema unless one is present.
func (c *Context) registerIfAbsent(s Schema) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.schemas[s.Type]; !ok {
		c.schemas[s.Type] = s.clone()
	}
}

// RegisterAll registers every schema, stopping at the first failure.
func (c *Context) RegisterAll(schemas []Schema) error {
	for _, s := range schemas {
		if err := c.Register(s); err != nil {
			return err
		}
	}
	return nil
}

// Types returns the registered type identifiers, sorted.
func (c *Context) Types() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.schemas))
	for t := range c.schemas {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// GetPersistentEntity returns a cached entity without building it.
func (c *Context) GetPersistentEntity(entityType string) (*PersistentEntity, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entities[entityType]
	return e, ok
}

// GetRequiredPersistentEntity returns the entity for entityType, scanning its schema on first access.
// Concurrent first calls share one scan and observe the same entity.
// Failed scans are not cached, so every retry fails the same way.
func (c *Context) GetRequiredPersistentEntity(entityType string) (*PersistentEntity, error) {
	if e, ok := c.GetPersistentEntity(entityType); ok {
		return e, nil
	}

	v, err, _ := c.group.Do(entityType, func() (any, error) {
		c.mu.RLock()
		e, ok := c.entities[entityType]
		s, known := c.schemas[entityType]
		c.mu.RUnlock()
		if ok {
			return e, nil
		}
		if !known {
			return nil, fmt.Errorf("entity %q: %w", entityType, ErrUnknownEntity)
		}

		start := time.Now()
		e, err := buildEntity(s)
		c.notify(entityType, time.Since(start), err)
		if err != nil {
			c.logger.Warn("Entity mapping rejected",
				zap.String("entity", entityType), zap.Error(err))
			return nil, fmt.Errorf("entity %q: %w", entityType, err)
		}

		c.mu.Lock()
		c.entities[entityType] = e
		c.mu.Unlock()
		c.logger.Debug("Entity mapping built",
			zap.String("entity", entityType),
			zap.String("index", e.IndexName()),
			zap.Int("properties", len(e.properties)),
		)
		return e, nil
	})
	if err != nil {
		return nil, err //nolint:wrapcheck // already wrapped with the entity type
	}
	return v.(*PersistentEntity), nil //nolint:forcetypeassert // only *PersistentEntity is returned above
}

// Reset drops every cached entity. Registered schemas are kept.
func (c *Context) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entities = make(map[string]*PersistentEntity)
}

func (c *Context) notify(entityType string, took time.Duration, err error) {
	if c.observer != nil {
		c.observer.EntityBuilt(entityType, took, err)
	}
}

// buildEntity scans every declared field in order.
func buildEntity(s Schema) (*PersistentEntity, error) {
	e := NewPersistentEntity(s)
	for _, f := range s.Fields {
		d, err := NewPropertyDescriptor(&s, f.Name)
		if err != nil {
			return nil, err
		}
		p, err := NewPersistentProperty(d, e)
		if err != nil {
			return nil, err
		}
		if err := e.AddPersistentProperty(p); err != nil {
			return nil, err
		}
	}
	e.seal()
	return e, nil
}
