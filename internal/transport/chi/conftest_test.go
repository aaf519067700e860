package chi

import (
	"context"

	"go.uber.org/zap"

	"github.com/mnesler/vector-mtg-sub000/internal/domain"
	"github.com/mnesler/vector-mtg-sub000/internal/domain/card"
	"github.com/mnesler/vector-mtg-sub000/internal/domain/rule"
	"github.com/mnesler/vector-mtg-sub000/internal/domain/search/filter"
	"github.com/mnesler/vector-mtg-sub000/internal/domain/search/result"
	extractuc "github.com/mnesler/vector-mtg-sub000/internal/usecase/extract"
	searchuc "github.com/mnesler/vector-mtg-sub000/internal/usecase/search"
)

// stubCardRepo implements searchuc.Repository for handler tests.
type stubCardRepo struct {
	literalFn func(ctx context.Context, name string, limit, offset int) ([]result.Candidate, bool, error)
	similarFn func(ctx context.Context, vector []float32, threshold float64, limit, offset int) ([]result.Candidate, bool, error)
}

func (s *stubCardRepo) SearchLiteral(ctx context.Context, name string, limit, offset int) ([]result.Candidate, bool, error) {
	if s.literalFn != nil {
		return s.literalFn(ctx, name, limit, offset)
	}
	return nil, false, nil
}

func (s *stubCardRepo) SearchSimilar(
	ctx context.Context, vector []float32, threshold float64, limit, offset int,
) ([]result.Candidate, bool, error) {
	if s.similarFn != nil {
		return s.similarFn(ctx, vector, threshold, limit, offset)
	}
	return nil, false, nil
}

func (s *stubCardRepo) SearchFiltered(
	ctx context.Context, _ filter.Expression, _ []float32, _ float64, _, _ int,
) ([]result.Candidate, bool, error) {
	return nil, false, nil
}

// stubEmbedder implements searchuc.Embedder.
type stubEmbedder struct {
	err error
}

func (s *stubEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	if s.err != nil {
		return domain.EmbeddingResult{}, s.err
	}
	return domain.EmbeddingResult{Embedding: []float32{0.1}}, nil
}

// stubCards implements extractuc.CardReader.
type stubCards struct {
	ids []string
}

func (s *stubCards) IDs(_ context.Context) ([]string, error) { return s.ids, nil }

func (s *stubCards) GetMany(_ context.Context, ids []string) ([]card.Card, error) {
	out := make([]card.Card, len(ids))
	for i, id := range ids {
		out[i] = card.Card{ID: id, RulesText: "deals 1 damage"}
	}
	return out, nil
}

// stubRules implements extractuc.RuleReader.
type stubRules struct {
	rules []rule.Rule
}

func (s *stubRules) LoadAll(_ context.Context) ([]rule.Rule, error) { return s.rules, nil }

func (s *stubRules) TopSimilar(_ context.Context, _ []float32, _ int) ([]rule.SimilarRule, error) {
	return nil, nil
}

// stubMatches implements extractuc.MatchWriter.
type stubMatches struct{}

func (s *stubMatches) UpsertBatch(_ context.Context, _ []rule.Match) error { return nil }

// stubPinger implements Pinger.
type stubPinger struct {
	err error
}

func (s *stubPinger) Ping(_ context.Context) error { return s.err }

func newTestServer(repo searchuc.Repository, embed searchuc.Embedder, pinger Pinger) *Server {
	searchSvc := searchuc.New(repo, embed, searchuc.DefaultOptions())

	damage, _ := rule.New("direct-damage", "Direct damage", "", `deals?\s+\d+\s+damage`, "removal", nil, nil)
	extractSvc := extractuc.New(
		&stubCards{ids: []string{"c1"}},
		&stubRules{rules: []rule.Rule{damage}},
		&stubMatches{},
		zap.NewNop(),
		extractuc.DefaultTuning(),
	)

	return NewServer(searchSvc, extractSvc, pinger, zap.NewNop())
}
