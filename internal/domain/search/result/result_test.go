package result

import (
	"encoding/json"
	"testing"
)

func TestNew(t *testing.T) {
	h := New("doc-1", 0.95, 3, json.RawMessage(`{"title":"Go"}`))

	if h.ID() != "doc-1" {
		t.Errorf("ID() = %q", h.ID())
	}
	if h.Score() != 0.95 {
		t.Errorf("Score() = %f", h.Score())
	}
	if h.Version() != 3 {
		t.Errorf("Version() = %d", h.Version())
	}
	if string(h.Source()) != `{"title":"Go"}` {
		t.Errorf("Source() = %s", h.Source())
	}
}

func TestPage_NoAggregations(t *testing.T) {
	p := NewPage(0, 0, nil, nil)
	if p.HasAggregations() {
		t.Error("HasAggregations() = true")
	}
	if _, ok := p.Aggregation("x"); ok {
		t.Error("unexpected aggregation")
	}
	if _, err := p.TermsBuckets("x"); err == nil {
		t.Error("expected error for missing aggregation")
	}
}

func TestPage_Aggregations(t *testing.T) {
	p := NewPage(7, 2.5, []Hit{New("a", 2.5, 1, nil)}, map[string]json.RawMessage{
		"by_tag":    json.RawMessage(`{"buckets":[{"key":"go","doc_count":5},{"key":"rust","doc_count":2}]}`),
		"max_pages": json.RawMessage(`{"value":812}`),
		"empty_avg": json.RawMessage(`{"value":null}`),
	})

	if p.Total() != 7 || p.MaxScore() != 2.5 || len(p.Hits()) != 1 {
		t.Errorf("page = %+v", p)
	}
	if !p.HasAggregations() {
		t.Fatal("HasAggregations() = false")
	}

	buckets, err := p.TermsBuckets("by_tag")
	if err != nil {
		t.Fatal(err)
	}
	if len(buckets) != 2 || buckets[0].Key != "go" || buckets[0].DocCount != 5 {
		t.Errorf("buckets = %+v", buckets)
	}

	v, err := p.MetricValue("max_pages")
	if err != nil || v == nil || *v != 812 {
		t.Errorf("max_pages = %v, %v", v, err)
	}
	v, err = p.MetricValue("empty_avg")
	if err != nil || v != nil {
		t.Errorf("empty_avg = %v, %v", v, err)
	}
}
