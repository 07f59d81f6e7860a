package hitcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/esdata/internal/db"
	"github.com/kailas-cloud/esdata/internal/domain"
)

var cacheKeyPrefix = domain.KeyPrefix + "search:"

// DefaultTTL bounds how stale a cached page may get.
const DefaultTTL = 30 * time.Second

// store is the consumer interface for the result cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// searcher is the wrapped search backend.
type searcher interface {
	Search(ctx context.Context, index string, body []byte) (*db.SearchResult, error)
}

// Searcher caches search responses in a key-value store.
// Entries expire by TTL only; writes do not invalidate them.
type Searcher struct {
	inner      searcher
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner searcher,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *Searcher {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Searcher{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Search returns a cached response or runs the search on the inner backend.
// Errors are never cached.
func (c *Searcher) Search(ctx context.Context, index string, body []byte) (*db.SearchResult, error) {
	key := cacheKey(index, body)

	if sr, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return sr, nil
	}

	c.incCache("miss")

	sr, err := c.inner.Search(ctx, index, body)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", index, err)
	}

	c.putToCache(ctx, key, sr)
	return sr, nil
}

func (c *Searcher) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func cacheKey(index string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(index))
	h.Write([]byte{0})
	h.Write(body)
	return cacheKeyPrefix + hex.EncodeToString(h.Sum(nil))
}

func (c *Searcher) getFromCache(ctx context.Context, key string) (*db.SearchResult, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached search result", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	var sr db.SearchResult
	if err := json.Unmarshal(data, &sr); err != nil {
		c.logger.Warn("Failed to parse cached search result", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &sr, true
}

func (c *Searcher) putToCache(ctx context.Context, key string, sr *db.SearchResult) {
	data, err := json.Marshal(sr)
	if err != nil {
		c.logger.Warn("Failed to encode search result", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache search result", zap.String("key", key), zap.Error(err))
	}
}
