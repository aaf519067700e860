package search

import (
	"sort"
	"strings"

	"github.com/xrash/smetrics"

	"github.com/mnesler/vector-mtg-sub000/internal/domain/search/result"
)

// Boost reasons reported on re-scored candidates.
const (
	ReasonExactName  = "exact_name_match"
	ReasonNamePrefix = "name_starts_with"
	ReasonNameInfix  = "name_contains"
	ReasonNameFuzzy  = "name_similar"
)

// BoostTuning holds the name-match boost increments.
type BoostTuning struct {
	PrefixBoost float64
	InfixBoost  float64
	FuzzyBoost  float64
	// FuzzyRatio is the Jaro-Winkler similarity above which two names
	// count as near matches.
	FuzzyRatio float64
}

// DefaultBoostTuning returns the standard boost increments.
func DefaultBoostTuning() BoostTuning {
	return BoostTuning{
		PrefixBoost: 0.25,
		InfixBoost:  0.15,
		FuzzyBoost:  0.10,
		FuzzyRatio:  0.7,
	}
}

// boostNameMatches re-scores candidates whose name relates to the query
// text, then restores descending score order. An exact name match pins the
// score to 1.0; the weaker relations add a fixed increment, capped at 1.0.
// At most one boost applies per candidate: the strongest matching relation.
func boostNameMatches(candidates []result.Candidate, queryText string, t BoostTuning) []result.Candidate {
	q := strings.ToLower(strings.TrimSpace(queryText))
	if q == "" || len(candidates) == 0 {
		return candidates
	}

	for i, cand := range candidates {
		name := strings.ToLower(cand.Card().Name)
		switch {
		case name == q:
			candidates[i] = cand.Boosted(1.0, ReasonExactName)
		case strings.HasPrefix(name, q):
			candidates[i] = cand.Boosted(capped(cand.Score()+t.PrefixBoost), ReasonNamePrefix)
		case strings.Contains(name, q):
			candidates[i] = cand.Boosted(capped(cand.Score()+t.InfixBoost), ReasonNameInfix)
		case smetrics.JaroWinkler(name, q, 0.7, 4) > t.FuzzyRatio:
			candidates[i] = cand.Boosted(capped(cand.Score()+t.FuzzyBoost), ReasonNameFuzzy)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score() > candidates[j].Score()
	})
	return candidates
}

func capped(score float64) float64 {
	if score > 1.0 {
		return 1.0
	}
	return score
}
