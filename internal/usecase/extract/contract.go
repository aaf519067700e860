package extract

import (
	"context"

	"github.com/mnesler/vector-mtg-sub000/internal/domain/card"
	"github.com/mnesler/vector-mtg-sub000/internal/domain/rule"
)

// CardReader reads the card corpus in ID batches.
type CardReader interface {
	IDs(ctx context.Context) ([]string, error)
	GetMany(ctx context.Context, ids []string) ([]card.Card, error)
}

// RuleReader loads the rule taxonomy and answers similarity lookups.
type RuleReader interface {
	LoadAll(ctx context.Context) ([]rule.Rule, error)
	TopSimilar(ctx context.Context, vector []float32, k int) ([]rule.SimilarRule, error)
}

// MatchWriter persists match rows.
type MatchWriter interface {
	UpsertBatch(ctx context.Context, matches []rule.Match) error
}
