package extract

import (
	"context"

	"github.com/mnesler/vector-mtg-sub000/internal/domain/card"
	"github.com/mnesler/vector-mtg-sub000/internal/domain/rule"
)

// mockCards implements CardReader for tests.
type mockCards struct {
	idsFn     func(ctx context.Context) ([]string, error)
	getManyFn func(ctx context.Context, ids []string) ([]card.Card, error)
}

func (m *mockCards) IDs(ctx context.Context) ([]string, error) {
	if m.idsFn != nil {
		return m.idsFn(ctx)
	}
	return nil, nil
}

func (m *mockCards) GetMany(ctx context.Context, ids []string) ([]card.Card, error) {
	if m.getManyFn != nil {
		return m.getManyFn(ctx, ids)
	}
	return nil, nil
}

// mockRules implements RuleReader for tests.
type mockRules struct {
	loadAllFn    func(ctx context.Context) ([]rule.Rule, error)
	topSimilarFn func(ctx context.Context, vector []float32, k int) ([]rule.SimilarRule, error)
}

func (m *mockRules) LoadAll(ctx context.Context) ([]rule.Rule, error) {
	if m.loadAllFn != nil {
		return m.loadAllFn(ctx)
	}
	return nil, nil
}

func (m *mockRules) TopSimilar(ctx context.Context, vector []float32, k int) ([]rule.SimilarRule, error) {
	if m.topSimilarFn != nil {
		return m.topSimilarFn(ctx, vector, k)
	}
	return nil, nil
}

// mockMatches implements MatchWriter for tests.
type mockMatches struct {
	upsertFn func(ctx context.Context, matches []rule.Match) error
	batches  [][]rule.Match
}

func (m *mockMatches) UpsertBatch(ctx context.Context, matches []rule.Match) error {
	m.batches = append(m.batches, matches)
	if m.upsertFn != nil {
		return m.upsertFn(ctx, matches)
	}
	return nil
}

func mustRule(id, pattern string) rule.Rule {
	r, _ := rule.New(id, id, "", pattern, "", nil, nil)
	return r
}
