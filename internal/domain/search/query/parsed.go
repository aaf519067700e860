// Package query turns free-text card searches into structured form: a
// classifier that routes a query to a retrieval strategy, and a parser that
// extracts numeric and categorical constraints from natural language.
// Both are pure functions, total over any input string.
package query

// CompareOp is a numeric comparison operator.
type CompareOp string

// Comparison operators.
const (
	OpGT  CompareOp = ">"
	OpGTE CompareOp = ">="
	OpLT  CompareOp = "<"
	OpLTE CompareOp = "<="
	OpEQ  CompareOp = "="
)

// Comparison is a single numeric constraint.
type Comparison struct {
	Op    CompareOp
	Value float64
}

// Filters is the structured constraint set extracted from a query. Nil and
// empty members mean the dimension is unconstrained. Values within one
// dimension combine with OR, dimensions combine with AND.
type Filters struct {
	CMC       *Comparison
	Power     *Comparison
	Toughness *Comparison

	// IncludeColors and ExcludeColors hold single-letter color codes in
	// extraction order. OnlyColors marks a sole-color constraint; when set,
	// ExcludeColors covers every other color.
	IncludeColors []string
	ExcludeColors []string
	OnlyColors    []string

	TypeContains    []string
	Rarity          string
	KeywordsInclude []string
	KeywordsExclude []string
}

// IsEmpty reports whether no constraint was extracted.
func (f *Filters) IsEmpty() bool {
	return f.CMC == nil && f.Power == nil && f.Toughness == nil &&
		len(f.IncludeColors) == 0 && len(f.ExcludeColors) == 0 && len(f.OnlyColors) == 0 &&
		len(f.TypeContains) == 0 && f.Rarity == "" &&
		len(f.KeywordsInclude) == 0 && len(f.KeywordsExclude) == 0
}

// ParsedQuery is the result of parsing a free-text search. Constructed per
// request, immutable once built, never persisted.
type ParsedQuery struct {
	// Raw is the original query.
	Raw string
	// Terms is the residual positive search text after all recognized
	// constraint spans were stripped.
	Terms string
	// Exclusions lists the excluded words (colors, keywords) in extraction
	// order, deduplicated.
	Exclusions *OrderedSet
	// Filters is the structured constraint set.
	Filters Filters
}

// HasFilters reports whether any structured constraint was extracted.
func (p *ParsedQuery) HasFilters() bool { return !p.Filters.IsEmpty() }
