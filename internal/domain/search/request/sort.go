package request

import "fmt"

// ScoreField sorts by relevance.
const ScoreField = "_score"

// Sort is one sort key.
type Sort struct {
	field string
	desc  bool
}

// NewSort creates a sort key. Use ScoreField to sort by relevance.
func NewSort(field string, desc bool) (Sort, error) {
	if field == "" {
		return Sort{}, fmt.Errorf("sort field is required")
	}
	return Sort{field: field, desc: desc}, nil
}

// Field returns the referenced field.
func (s Sort) Field() string { return s.field }

// Desc reports descending order.
func (s Sort) Desc() bool { return s.desc }

// IsScore reports whether the key sorts by relevance.
func (s Sort) IsScore() bool { return s.field == ScoreField }

// Order returns "asc" or "desc".
func (s Sort) Order() string {
	if s.desc {
		return "desc"
	}
	return "asc"
}
