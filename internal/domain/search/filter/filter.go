// Package filter models structured retrieval predicates with must/should/
// must-not boolean semantics. Conditions within should combine with OR,
// everything else with AND; must-not negates.
package filter

// Expression is a structured filter. The zero value matches everything.
type Expression struct {
	must    []Condition
	should  []Condition
	mustNot []Condition
}

// New creates a filter Expression from condition groups.
func New(must, should, mustNot []Condition) Expression {
	return Expression{must: must, should: should, mustNot: mustNot}
}

// Must returns the AND conditions.
func (e Expression) Must() []Condition { return e.must }

// Should returns the OR conditions.
func (e Expression) Should() []Condition { return e.should }

// MustNot returns the negated conditions.
func (e Expression) MustNot() []Condition { return e.mustNot }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool {
	return len(e.must) == 0 && len(e.should) == 0 && len(e.mustNot) == 0
}

// Condition is a single filter clause: either an exact tag match or a
// numeric range over one field.
type Condition struct {
	key       string
	match     string
	rangeExpr *Range
}

// Match creates an exact tag match condition.
func Match(key, value string) Condition {
	return Condition{key: key, match: value}
}

// NumRange creates a numeric range condition.
func NumRange(key string, r Range) Condition {
	return Condition{key: key, rangeExpr: &r}
}

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// Match returns the exact match value.
func (c Condition) Match() string { return c.match }

// Range returns the numeric range expression.
func (c Condition) Range() *Range { return c.rangeExpr }

// IsMatch reports whether this is a tag match condition.
func (c Condition) IsMatch() bool { return c.match != "" }

// IsRange reports whether this is a numeric range condition.
func (c Condition) IsRange() bool { return c.rangeExpr != nil }

// Range is a numeric range with gt/gte/lt/lte boundaries. gt and gte are
// mutually exclusive by construction, as are lt and lte.
type Range struct {
	gt  *float64
	gte *float64
	lt  *float64
	lte *float64
}

// GreaterThan is the open lower bound (v, +inf).
func GreaterThan(v float64) Range { return Range{gt: &v} }

// AtLeast is the closed lower bound [v, +inf).
func AtLeast(v float64) Range { return Range{gte: &v} }

// LessThan is the open upper bound (-inf, v).
func LessThan(v float64) Range { return Range{lt: &v} }

// AtMost is the closed upper bound (-inf, v].
func AtMost(v float64) Range { return Range{lte: &v} }

// Exactly is the degenerate range [v, v].
func Exactly(v float64) Range { return Range{gte: &v, lte: &v} }

// GT returns the open lower bound, or nil.
func (r Range) GT() *float64 { return r.gt }

// GTE returns the closed lower bound, or nil.
func (r Range) GTE() *float64 { return r.gte }

// LT returns the open upper bound, or nil.
func (r Range) LT() *float64 { return r.lt }

// LTE returns the closed upper bound, or nil.
func (r Range) LTE() *float64 { return r.lte }
