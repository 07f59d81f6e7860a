package esdata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/esdata/internal/db"
	"github.com/kailas-cloud/esdata/internal/db/elastic"
	dbRedis "github.com/kailas-cloud/esdata/internal/db/redis"
	"github.com/kailas-cloud/esdata/internal/mapping"
	"github.com/kailas-cloud/esdata/internal/metrics"
	documentrepo "github.com/kailas-cloud/esdata/internal/repository/document"
	"github.com/kailas-cloud/esdata/internal/repository/hitcache"
	indexrepo "github.com/kailas-cloud/esdata/internal/repository/index"
	searchrepo "github.com/kailas-cloud/esdata/internal/repository/search"
	documentuc "github.com/kailas-cloud/esdata/internal/usecase/document"
	entityuc "github.com/kailas-cloud/esdata/internal/usecase/entity"
	healthuc "github.com/kailas-cloud/esdata/internal/usecase/health"
	searchuc "github.com/kailas-cloud/esdata/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Client is the esdata SDK entry point.
type Client struct {
	store     db.Store
	cache     db.Cache
	mapping   *mapping.Context
	entitySvc *entityuc.Service
	docSvc    *documentuc.Service
	searchSvc *searchuc.Service
	healthSvc *healthuc.Service
}

// New creates a Client, registers the configured schemas and waits for the cluster.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o(cfg)
	}
	cfg.applyDefaults()

	if len(cfg.addresses) == 0 && cfg.cloudID == "" {
		return nil, errors.New("esdata: elasticsearch address required (use WithElasticsearch or WithCloudID)")
	}

	mc, err := newMappingContext(cfg)
	if err != nil {
		return nil, err
	}

	store, err := elastic.NewStore(elastic.Config{
		Addresses:          cfg.addresses,
		CloudID:            cfg.cloudID,
		Username:           cfg.username,
		Password:           cfg.password,
		APIKey:             cfg.apiKey,
		MaxRetries:         cfg.maxRetries,
		InsecureSkipVerify: cfg.insecureSkipVerify,
	}, elastic.WithRefresh(cfg.refresh))
	if err != nil {
		return nil, fmt.Errorf("esdata: create elasticsearch store: %w", err)
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, cfg.readinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("esdata: elasticsearch not ready: %w", err)
	}

	var cache db.Cache
	if len(cfg.cacheAddrs) > 0 {
		rs, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.cacheAddrs,
			Password: cfg.cachePassword,
		})
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("esdata: create cache: %w", err)
		}
		if err := rs.WaitForReady(ctx, cfg.readinessTimeout); err != nil {
			rs.Close()
			store.Close()
			return nil, fmt.Errorf("esdata: cache not ready: %w", err)
		}
		cache = rs
	}

	return wireClient(store, cache, mc, cfg), nil
}

func newMappingContext(cfg *clientConfig) (*mapping.Context, error) {
	mc := mapping.NewContext(
		mapping.WithLogger(cfg.logger),
		mapping.WithObserver(metrics.EntityObserver{}),
	)
	if err := mc.RegisterAll(cfg.schemas); err != nil {
		return nil, fmt.Errorf("esdata: register schemas: %w", err)
	}
	if len(cfg.schemaFiles) > 0 {
		schemas, err := mapping.LoadSchemaFiles(cfg.schemaFiles...)
		if err != nil {
			return nil, fmt.Errorf("esdata: load schema files: %w", err)
		}
		if err := mc.RegisterAll(schemas); err != nil {
			return nil, fmt.Errorf("esdata: register schema files: %w", err)
		}
	}
	return mc, nil
}

// wireClient assembles the services on top of an already connected store.
// cache may be nil.
func wireClient(store db.Store, cache db.Cache, mc *mapping.Context, cfg *clientConfig) *Client {
	var searcher db.Searcher = store
	if cache != nil {
		searcher = hitcache.New(store, cache, cfg.cacheTTL, metrics.SearchCacheTotal, cfg.logger)
	}

	entitySvc := entityuc.New(mc, indexrepo.New(store))
	docSvc := documentuc.New(documentrepo.New(store), entitySvc).WithMaxBatchSize(cfg.maxBatchSize)
	searchSvc := searchuc.New(searchrepo.New(searcher), entitySvc).WithLimits(cfg.defaultPageSize, cfg.maxPageSize)

	var healthSvc *healthuc.Service
	if cache != nil {
		healthSvc = healthuc.New(store, cache)
	} else {
		healthSvc = healthuc.New(store, nil)
	}

	return &Client{
		store:     store,
		cache:     cache,
		mapping:   mc,
		entitySvc: entitySvc,
		docSvc:    docSvc,
		searchSvc: searchSvc,
		healthSvc: healthSvc,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.cache != nil {
		c.cache.Close()
	}
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks cluster connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Health reports "ok", "degraded" when only the cache is down, or "error".
func (c *Client) Health(ctx context.Context) (string, map[string]string) {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return string(report.Status), checks
}

// Mapping returns the mapping context holding every registered entity.
func (c *Client) Mapping() *MappingContext {
	return c.mapping
}

// Entity resolves a registered entity by type identifier.
func (c *Client) Entity(entityType string) (*PersistentEntity, error) {
	e, err := c.entitySvc.Get(entityType)
	if err != nil {
		return nil, fmt.Errorf("entity: %w", err)
	}
	return e, nil
}

// EnsureIndices creates the index of every registered entity that lacks one.
// It returns the types whose index was created.
func (c *Client) EnsureIndices(ctx context.Context) ([]string, error) {
	results, err := c.entitySvc.EnsureAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("ensure indices: %w", err)
	}
	var created []string
	for _, r := range results {
		if r.Created {
			created = append(created, r.Type)
		}
	}
	return created, nil
}
