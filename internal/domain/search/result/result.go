// Package result holds ranked search candidates.
package result

import "github.com/mnesler/vector-mtg-sub000/internal/domain/card"

// Candidate is a single ranked search hit. Created by a retrieval strategy,
// re-scored only by the booster, discarded once the response is built.
type Candidate struct {
	card  card.Card
	score float64
	boost string
}

// New creates a candidate with its retrieval score.
func New(c card.Card, score float64) Candidate {
	return Candidate{card: c, score: score}
}

// Card returns the matched card.
func (r *Candidate) Card() *card.Card { return &r.card }

// Score returns the similarity score in [0,1].
func (r Candidate) Score() float64 { return r.score }

// BoostReason returns the boost tag, or "" when the score is unboosted.
func (r Candidate) BoostReason() string { return r.boost }

// Boosted returns a copy of the candidate with an adjusted score and the
// reason it was adjusted.
func (r Candidate) Boosted(score float64, reason string) Candidate {
	r.score = score
	r.boost = reason
	return r
}
