package search

import (
	"context"

	"github.com/mnesler/vector-mtg-sub000/internal/domain"
	"github.com/mnesler/vector-mtg-sub000/internal/domain/card"
	"github.com/mnesler/vector-mtg-sub000/internal/domain/search/filter"
	"github.com/mnesler/vector-mtg-sub000/internal/domain/search/result"
)

// mockRepo implements Repository for tests.
type mockRepo struct {
	literalFn  func(ctx context.Context, name string, limit, offset int) ([]result.Candidate, bool, error)
	similarFn  func(ctx context.Context, vector []float32, threshold float64, limit, offset int) ([]result.Candidate, bool, error)
	filteredFn func(ctx context.Context, expr filter.Expression, vector []float32, threshold float64, limit, offset int) ([]result.Candidate, bool, error)
}

func (m *mockRepo) SearchLiteral(ctx context.Context, name string, limit, offset int) ([]result.Candidate, bool, error) {
	if m.literalFn != nil {
		return m.literalFn(ctx, name, limit, offset)
	}
	return nil, false, nil
}

func (m *mockRepo) SearchSimilar(
	ctx context.Context, vector []float32, threshold float64, limit, offset int,
) ([]result.Candidate, bool, error) {
	if m.similarFn != nil {
		return m.similarFn(ctx, vector, threshold, limit, offset)
	}
	return nil, false, nil
}

func (m *mockRepo) SearchFiltered(
	ctx context.Context, expr filter.Expression, vector []float32, threshold float64, limit, offset int,
) ([]result.Candidate, bool, error) {
	if m.filteredFn != nil {
		return m.filteredFn(ctx, expr, vector, threshold, limit, offset)
	}
	return nil, false, nil
}

// mockEmbedder implements Embedder for tests.
type mockEmbedder struct {
	embedFn func(ctx context.Context, text string) (domain.EmbeddingResult, error)
	calls   int
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	m.calls++
	if m.embedFn != nil {
		return m.embedFn(ctx, text)
	}
	return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}}, nil
}

func candidate(name string, score float64) result.Candidate {
	return result.New(card.Card{ID: name, Name: name}, score)
}
