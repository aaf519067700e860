// Package extract runs the rule extraction engine: every card's rules text
// is tested against the rule taxonomy by deterministic patterns first, then
// by embedding similarity, and the resulting matches are persisted.
package extract

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mnesler/vector-mtg-sub000/internal/domain/card"
	"github.com/mnesler/vector-mtg-sub000/internal/domain/rule"
)

// Tuning holds the extraction knobs.
type Tuning struct {
	// BatchSize is the number of cards processed and committed per batch.
	BatchSize int
	// TopK rules are considered per card in the similarity pass.
	TopK int
	// SimilarityFloor is the minimum similarity for a vector match.
	SimilarityFloor float64
	// PatternConfidence is assigned to every pattern match.
	PatternConfidence float64
}

// DefaultTuning returns the standard extraction knobs.
func DefaultTuning() Tuning {
	return Tuning{
		BatchSize:         500,
		TopK:              5,
		SimilarityFloor:   0.6,
		PatternConfidence: 0.95,
	}
}

// Stats summarizes one extraction run.
type Stats struct {
	TotalCards       int
	CardsWithMatches int
	TotalMatches     int
	PatternMatches   int
	VectorMatches    int
}

// Service is the extraction engine.
type Service struct {
	cards   CardReader
	rules   RuleReader
	matches MatchWriter
	log     *zap.Logger
	tuning  Tuning
	now     func() time.Time
}

// New creates an extraction service.
func New(cards CardReader, rules RuleReader, matches MatchWriter, log *zap.Logger, t Tuning) *Service {
	def := DefaultTuning()
	if t.BatchSize <= 0 {
		t.BatchSize = def.BatchSize
	}
	if t.TopK <= 0 {
		t.TopK = def.TopK
	}
	if t.SimilarityFloor <= 0 {
		t.SimilarityFloor = def.SimilarityFloor
	}
	if t.PatternConfidence <= 0 {
		t.PatternConfidence = def.PatternConfidence
	}
	return &Service{
		cards:   cards,
		rules:   rules,
		matches: matches,
		log:     log,
		tuning:  t,
		now:     time.Now,
	}
}

// Run processes the whole card corpus batch by batch. Matches are committed
// after each batch, so an interrupted run keeps everything committed so far
// and a re-run overwrites rows in place. Cancellation is honored between
// batches.
func (s *Service) Run(ctx context.Context) (Stats, error) {
	var stats Stats

	rules, err := s.rules.LoadAll(ctx)
	if err != nil {
		return stats, fmt.Errorf("load rules: %w", err)
	}
	if len(rules) == 0 {
		s.log.Warn("no rules stored, nothing to extract")
		return stats, nil
	}

	ids, err := s.cards.IDs(ctx)
	if err != nil {
		return stats, fmt.Errorf("list cards: %w", err)
	}
	stats.TotalCards = len(ids)

	ruleByID := make(map[string]*rule.Rule, len(rules))
	for i := range rules {
		ruleByID[rules[i].ID] = &rules[i]
	}

	for start := 0; start < len(ids); start += s.tuning.BatchSize {
		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("extraction interrupted: %w", err)
		}

		end := start + s.tuning.BatchSize
		if end > len(ids) {
			end = len(ids)
		}

		cards, err := s.cards.GetMany(ctx, ids[start:end])
		if err != nil {
			return stats, fmt.Errorf("load card batch at %d: %w", start, err)
		}

		var batch []rule.Match
		for i := range cards {
			matches, err := s.matchCard(ctx, &cards[i], rules, ruleByID)
			if err != nil {
				return stats, err
			}
			if len(matches) == 0 {
				continue
			}
			stats.CardsWithMatches++
			for _, m := range matches {
				if m.Method == rule.MethodPattern {
					stats.PatternMatches++
				} else {
					stats.VectorMatches++
				}
			}
			stats.TotalMatches += len(matches)
			batch = append(batch, matches...)
		}

		if err := s.matches.UpsertBatch(ctx, batch); err != nil {
			return stats, fmt.Errorf("commit batch at %d: %w", start, err)
		}

		s.log.Info("extraction batch committed",
			zap.Int("cards", end-start),
			zap.Int("matches", len(batch)),
			zap.Int("processed", end),
			zap.Int("total", len(ids)))
	}

	return stats, nil
}

// matchCard derives matches for one card. The pattern pass runs first and a
// pattern match for a (card, rule) pair shadows any similarity match for
// the same pair.
func (s *Service) matchCard(
	ctx context.Context, c *card.Card, rules []rule.Rule, ruleByID map[string]*rule.Rule,
) ([]rule.Match, error) {
	if c.RulesText == "" {
		return nil, nil
	}

	matched := make(map[string]bool, 4)
	var out []rule.Match

	for i := range rules {
		r := &rules[i]
		if !r.MatchText(c.RulesText) {
			continue
		}
		matched[r.ID] = true
		out = append(out, rule.Match{
			CardID:      c.ID,
			RuleID:      r.ID,
			Confidence:  s.tuning.PatternConfidence,
			Params:      r.ExtractParams(c.RulesText),
			Method:      rule.MethodPattern,
			ExtractedAt: s.now(),
		})
	}

	if len(c.TextVector) == 0 {
		return out, nil
	}

	hits, err := s.rules.TopSimilar(ctx, c.TextVector, s.tuning.TopK)
	if err != nil {
		return nil, fmt.Errorf("similar rules for card %s: %w", c.ID, err)
	}

	for _, hit := range hits {
		if hit.Score < s.tuning.SimilarityFloor || matched[hit.RuleID] {
			continue
		}
		r, ok := ruleByID[hit.RuleID]
		if !ok {
			continue
		}
		out = append(out, rule.Match{
			CardID:      c.ID,
			RuleID:      hit.RuleID,
			Confidence:  hit.Score,
			Params:      r.ExtractParams(c.RulesText),
			Method:      rule.MethodSimilarity,
			ExtractedAt: s.now(),
		})
	}

	return out, nil
}
