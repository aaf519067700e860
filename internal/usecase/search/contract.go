package search

import (
	"context"

	"github.com/mnesler/vector-mtg-sub000/internal/domain"
	"github.com/mnesler/vector-mtg-sub000/internal/domain/search/filter"
	"github.com/mnesler/vector-mtg-sub000/internal/domain/search/result"
)

// Repository defines the storage contract for card retrieval.
type Repository interface {
	SearchLiteral(ctx context.Context, name string, limit, offset int) ([]result.Candidate, bool, error)

	SearchSimilar(
		ctx context.Context, vector []float32, threshold float64, limit, offset int,
	) ([]result.Candidate, bool, error)

	SearchFiltered(
		ctx context.Context, expr filter.Expression, vector []float32, threshold float64, limit, offset int,
	) ([]result.Candidate, bool, error)
}

// Embedder vectorizes query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
