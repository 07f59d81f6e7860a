package hitcache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/esdata/internal/db"
)

var body = []byte(`{"query":{"match_all":{}}}`)

func sampleResult() *db.SearchResult {
	return &db.SearchResult{
		Total:    1,
		MaxScore: 1.5,
		Hits:     []db.SearchHit{{Index: "books", ID: "a", Version: 3, Score: 1.5, Source: json.RawMessage(`{"title":"Dune"}`)}},
	}
}

func TestSearch_CacheMiss(t *testing.T) {
	inner := &mockSearcher{result: sampleResult()}
	c, ms := newTestSearcher(t, inner)

	var stored []byte
	var storedTTL time.Duration
	ms.setFn = func(_ context.Context, key string, value []byte, ttl time.Duration) error {
		if !strings.HasPrefix(key, "esdata:search:") {
			t.Errorf("key = %q", key)
		}
		stored, storedTTL = value, ttl
		return nil
	}

	sr, err := c.Search(context.Background(), "books", body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sr.Total != 1 || inner.calls != 1 {
		t.Errorf("total = %d, calls = %d", sr.Total, inner.calls)
	}
	if stored == nil || storedTTL != time.Minute {
		t.Fatalf("expected SET with ttl, got %d bytes ttl %v", len(stored), storedTTL)
	}
}

func TestSearch_CacheHit(t *testing.T) {
	inner := &mockSearcher{result: &db.SearchResult{}}
	c, ms := newTestSearcher(t, inner)

	cached, err := json.Marshal(sampleResult())
	if err != nil {
		t.Fatal(err)
	}
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) { return cached, nil }

	sr, err := c.Search(context.Background(), "books", body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 0 {
		t.Error("inner searcher must not run on a hit")
	}
	if len(sr.Hits) != 1 || sr.Hits[0].Version != 3 || string(sr.Hits[0].Source) != `{"title":"Dune"}` {
		t.Errorf("hits = %+v", sr.Hits)
	}
}

func TestSearch_InnerErrorNotCached(t *testing.T) {
	boom := &db.Error{Op: db.OpSearch, Err: db.ErrIndexNotFound}
	inner := &mockSearcher{err: boom}
	c, ms := newTestSearcher(t, inner)
	ms.setFn = func(_ context.Context, _ string, _ []byte, _ time.Duration) error {
		t.Error("errors must not be cached")
		return nil
	}

	if _, err := c.Search(context.Background(), "books", body); !errors.Is(err, db.ErrIndexNotFound) {
		t.Fatalf("expected wrapped inner error, got %v", err)
	}
}

func TestSearch_CacheFailuresFallThrough(t *testing.T) {
	inner := &mockSearcher{result: sampleResult()}
	c, ms := newTestSearcher(t, inner)
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) { return nil, errors.New("connection refused") }
	ms.setFn = func(_ context.Context, _ string, _ []byte, _ time.Duration) error { return errors.New("connection refused") }

	sr, err := c.Search(context.Background(), "books", body)
	if err != nil {
		t.Fatalf("cache outage must not fail the search: %v", err)
	}
	if sr.Total != 1 || inner.calls != 1 {
		t.Errorf("total = %d, calls = %d", sr.Total, inner.calls)
	}
}

func TestSearch_CorruptEntry(t *testing.T) {
	inner := &mockSearcher{result: sampleResult()}
	c, ms := newTestSearcher(t, inner)
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) { return []byte("{not json"), nil }

	if _, err := c.Search(context.Background(), "books", body); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 {
		t.Error("corrupt entry should be treated as a miss")
	}
}

func TestCacheKey(t *testing.T) {
	a := cacheKey("books", body)
	if a != cacheKey("books", body) {
		t.Error("key must be deterministic")
	}
	if a == cacheKey("authors", body) {
		t.Error("index must be part of the key")
	}
	if cacheKey("ab", []byte("c")) == cacheKey("a", []byte("bc")) {
		t.Error("index and body must be separated")
	}
}

func TestSearch_Metrics(t *testing.T) {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_search_cache_total"}, []string{"result"})
	inner := &mockSearcher{result: sampleResult()}
	ms := &mockKVStore{}
	c := New(inner, ms, 0, counter, zap.NewNop())
	if c.ttl != DefaultTTL {
		t.Errorf("ttl = %v, want default", c.ttl)
	}

	if _, err := c.Search(context.Background(), "books", body); err != nil {
		t.Fatal(err)
	}
	cached, _ := json.Marshal(sampleResult())
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) { return cached, nil }
	if _, err := c.Search(context.Background(), "books", body); err != nil {
		t.Fatal(err)
	}

	if got := testutil.ToFloat64(counter.WithLabelValues("miss")); got != 1 {
		t.Errorf("miss = %v, want 1", got)
	}
	if got := testutil.ToFloat64(counter.WithLabelValues("hit")); got != 1 {
		t.Errorf("hit = %v, want 1", got)
	}
}
