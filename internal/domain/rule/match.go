package rule

import "time"

// Method tags how a match was derived.
type Method string

const (
	// MethodPattern marks a match found by deterministic pattern matching.
	// Treated as ground truth: it always wins over a similarity match for
	// the same (card, rule) pair.
	MethodPattern Method = "pattern"
	// MethodSimilarity marks a match found by embedding distance.
	MethodSimilarity Method = "similarity"
)

// SimilarRule is a rule ranked by embedding similarity to a card's rules
// text.
type SimilarRule struct {
	RuleID string
	Score  float64
}

// Match is one (card, rule) association with its provenance. At most one
// match per pair is ever persisted; re-extraction overwrites in place.
type Match struct {
	CardID      string
	RuleID      string
	Confidence  float64
	Params      map[string]any
	Method      Method
	ExtractedAt time.Time
}
