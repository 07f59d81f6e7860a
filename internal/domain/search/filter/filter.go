package filter

import "fmt"

// MaxConditionsPerGroup is the maximum number of conditions per filter group.
const MaxConditionsPerGroup = 32

// Expression is a structured filter with must/should/must_not boolean semantics.
// Field references are unresolved; the query compiler maps them through the entity.
type Expression struct {
	must    []Condition
	should  []Condition
	mustNot []Condition
}

// NewExpression validates and creates a filter Expression.
func NewExpression(must, should, mustNot []Condition) (Expression, error) {
	if len(must) > MaxConditionsPerGroup {
		return Expression{}, fmt.Errorf("too many must conditions (max %d)", MaxConditionsPerGroup)
	}
	if len(should) > MaxConditionsPerGroup {
		return Expression{}, fmt.Errorf("too many should conditions (max %d)", MaxConditionsPerGroup)
	}
	if len(mustNot) > MaxConditionsPerGroup {
		return Expression{}, fmt.Errorf("too many must_not conditions (max %d)", MaxConditionsPerGroup)
	}
	return Expression{must: must, should: should, mustNot: mustNot}, nil
}

// Must returns the must conditions.
func (e Expression) Must() []Condition { return e.must }

// Should returns the should conditions.
func (e Expression) Should() []Condition { return e.should }

// MustNot returns the must-not conditions.
func (e Expression) MustNot() []Condition { return e.mustNot }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool {
	return len(e.must) == 0 && len(e.should) == 0 && len(e.mustNot) == 0
}

// Fields returns every field referenced by the expression, in order.
func (e Expression) Fields() []string {
	var out []string
	for _, group := range [][]Condition{e.must, e.should, e.mustNot} {
		for _, c := range group {
			out = append(out, c.field)
		}
	}
	return out
}

// Condition is a single filter clause: either an exact term or a range.
type Condition struct {
	field     string
	term      any
	rangeExpr *Range
}

// NewTerm creates an exact term condition. The value must be a string, bool or number.
func NewTerm(field string, value any) (Condition, error) {
	if field == "" {
		return Condition{}, fmt.Errorf("filter field is required")
	}
	if value == nil {
		return Condition{}, fmt.Errorf("term value is required for field %q", field)
	}
	if s, ok := value.(string); ok && s == "" {
		return Condition{}, fmt.Errorf("term value is required for field %q", field)
	}
	if !isScalar(value) {
		return Condition{}, fmt.Errorf("term value for field %q must be a string, bool or number", field)
	}
	return Condition{field: field, term: value}, nil
}

// NewRange creates a range condition.
func NewRange(field string, r Range) (Condition, error) {
	if field == "" {
		return Condition{}, fmt.Errorf("filter field is required")
	}
	return Condition{field: field, rangeExpr: &r}, nil
}

// Field returns the referenced field (field name or declared property name).
func (c Condition) Field() string { return c.field }

// Term returns the exact match value.
func (c Condition) Term() any { return c.term }

// Range returns the range expression.
func (c Condition) Range() *Range { return c.rangeExpr }

// IsTerm reports whether this is a term condition.
func (c Condition) IsTerm() bool { return c.term != nil }

// IsRange reports whether this is a range condition.
func (c Condition) IsRange() bool { return c.rangeExpr != nil }

// Range is a numeric or date range with gt/gte/lt/lte boundaries.
// Date bounds are strings in any format the field's mapping accepts.
type Range struct {
	gt  any
	gte any
	lt  any
	lte any
}

// NewRangeFilter validates and creates a Range. Nil boundaries are absent.
// At least one boundary required. gt/gte and lt/lte are mutually exclusive.
func NewRangeFilter(gt, gte, lt, lte any) (Range, error) {
	if gt == nil && gte == nil && lt == nil && lte == nil {
		return Range{}, fmt.Errorf("at least one range boundary is required")
	}
	if gt != nil && gte != nil {
		return Range{}, fmt.Errorf("cannot specify both gt and gte")
	}
	if lt != nil && lte != nil {
		return Range{}, fmt.Errorf("cannot specify both lt and lte")
	}
	for _, b := range []any{gt, gte, lt, lte} {
		if b == nil {
			continue
		}
		if _, ok := b.(bool); ok || !isScalar(b) {
			return Range{}, fmt.Errorf("range boundary must be a number or string, got %T", b)
		}
	}
	return Range{gt: gt, gte: gte, lt: lt, lte: lte}, nil
}

// GT returns the lower exclusive bound.
func (r Range) GT() any { return r.gt }

// GTE returns the lower inclusive bound.
func (r Range) GTE() any { return r.gte }

// LT returns the upper exclusive bound.
func (r Range) LT() any { return r.lt }

// LTE returns the upper inclusive bound.
func (r Range) LTE() any { return r.lte }

// Bounds returns the present boundaries keyed by their query DSL name.
func (r Range) Bounds() map[string]any {
	out := make(map[string]any, 2)
	for k, v := range map[string]any{"gt": r.gt, "gte": r.gte, "lt": r.lt, "lte": r.lte} {
		if v != nil {
			out[k] = v
		}
	}
	return out
}

func isScalar(v any) bool {
	switch v.(type) {
	case string, bool, float64, float32, int, int32, int64, uint, uint32, uint64:
		return true
	}
	return false
}
