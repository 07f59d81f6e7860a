package request

import (
	"fmt"
	"regexp"
)

var aggNameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// AggregationKind is the aggregation type.
type AggregationKind string

// Supported aggregations.
const (
	AggTerms       AggregationKind = "terms"
	AggMin         AggregationKind = "min"
	AggMax         AggregationKind = "max"
	AggAvg         AggregationKind = "avg"
	AggSum         AggregationKind = "sum"
	AggCardinality AggregationKind = "cardinality"
)

// DefaultTermsSize and MaxTermsSize bound terms buckets.
const (
	DefaultTermsSize = 10
	MaxTermsSize     = 1000
)

// IsValid checks if the kind is supported.
func (k AggregationKind) IsValid() bool {
	switch k {
	case AggTerms, AggMin, AggMax, AggAvg, AggSum, AggCardinality:
		return true
	}
	return false
}

// Aggregation is a named single-level aggregation over one field.
type Aggregation struct {
	name  string
	kind  AggregationKind
	field string
	size  int
}

// NewAggregation validates and creates an aggregation. Size applies to terms only.
func NewAggregation(name string, kind AggregationKind, field string, size int) (Aggregation, error) {
	if !aggNameRegex.MatchString(name) {
		return Aggregation{}, fmt.Errorf("aggregation name %q must match %s", name, aggNameRegex)
	}
	if !kind.IsValid() {
		return Aggregation{}, fmt.Errorf("unsupported aggregation %q", kind)
	}
	if field == "" {
		return Aggregation{}, fmt.Errorf("aggregation %q requires a field", name)
	}
	if kind == AggTerms {
		if size <= 0 {
			size = DefaultTermsSize
		}
		if size > MaxTermsSize {
			return Aggregation{}, fmt.Errorf("terms size too large (max %d)", MaxTermsSize)
		}
	} else {
		size = 0
	}
	return Aggregation{name: name, kind: kind, field: field, size: size}, nil
}

// Name returns the aggregation name.
func (a Aggregation) Name() string { return a.name }

// Kind returns the aggregation type.
func (a Aggregation) Kind() AggregationKind { return a.kind }

// Field returns the referenced field.
func (a Aggregation) Field() string { return a.field }

// Size returns the bucket count for terms aggregations.
func (a Aggregation) Size() int { return a.size }
