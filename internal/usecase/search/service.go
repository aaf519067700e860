// Package search orchestrates query understanding and retrieval: classify
// the query, run the matching strategy, then boost name matches.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/mnesler/vector-mtg-sub000/internal/domain"
	"github.com/mnesler/vector-mtg-sub000/internal/domain/search/method"
	"github.com/mnesler/vector-mtg-sub000/internal/domain/search/query"
	"github.com/mnesler/vector-mtg-sub000/internal/domain/search/result"
)

// Options holds request validation bounds and scoring defaults.
type Options struct {
	DefaultLimit     int
	MaxLimit         int
	DefaultThreshold float64
	Boost            BoostTuning
}

// DefaultOptions returns the standard service options.
func DefaultOptions() Options {
	return Options{
		DefaultLimit:     20,
		MaxLimit:         100,
		DefaultThreshold: 0.6,
		Boost:            DefaultBoostTuning(),
	}
}

// Request is one search invocation.
type Request struct {
	Query string
	// Limit of 0 takes the configured default.
	Limit  int
	Offset int
	// Threshold of 0 takes the configured default. Applies to
	// similarity-ranked strategies only.
	Threshold float64
}

// Response is the ranked outcome of one search.
type Response struct {
	Query   string
	Method  method.Method
	Count   int
	HasMore bool
	Results []result.Candidate
}

// Service routes a free-text query through parsing, classification, one
// retrieval strategy and the name booster.
type Service struct {
	repo  Repository
	embed Embedder
	opts  Options
}

// New creates a search service.
func New(repo Repository, embed Embedder, opts Options) *Service {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = DefaultOptions().DefaultLimit
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = DefaultOptions().MaxLimit
	}
	if opts.DefaultThreshold <= 0 {
		opts.DefaultThreshold = DefaultOptions().DefaultThreshold
	}
	return &Service{repo: repo, embed: embed, opts: opts}
}

// Search executes one query end to end. On error no partial results are
// returned.
func (s *Service) Search(ctx context.Context, req *Request) (*Response, error) {
	raw := strings.TrimSpace(req.Query)
	if raw == "" {
		return nil, fmt.Errorf("%w: query is required", domain.ErrInvalidRequest)
	}
	limit, offset, threshold, err := s.bounds(req)
	if err != nil {
		return nil, err
	}

	m := query.Classify(raw)

	var (
		results []result.Candidate
		hasMore bool
	)
	switch m {
	case method.Literal:
		results, hasMore, err = s.repo.SearchLiteral(ctx, raw, limit, offset)
	case method.Similarity:
		results, hasMore, err = s.searchSimilar(ctx, raw, threshold, limit, offset)
	case method.Filtered:
		results, hasMore, err = s.searchFiltered(ctx, raw, threshold, limit, offset)
	default:
		return nil, fmt.Errorf("unsupported search method: %s", m)
	}
	if err != nil {
		return nil, err
	}

	results = boostNameMatches(results, raw, s.opts.Boost)

	return &Response{
		Query:   raw,
		Method:  m,
		Count:   len(results),
		HasMore: hasMore,
		Results: results,
	}, nil
}

// searchSimilar embeds the whole query and ranks by full-card vector
// distance.
func (s *Service) searchSimilar(
	ctx context.Context, raw string, threshold float64, limit, offset int,
) ([]result.Candidate, bool, error) {
	emb, err := s.embed.Embed(ctx, raw)
	if err != nil {
		return nil, false, fmt.Errorf("vectorize query: %w", err)
	}
	return s.repo.SearchSimilar(ctx, emb.Embedding, threshold, limit, offset)
}

// searchFiltered parses structured constraints out of the query. Residual
// positive text becomes a similarity ranking signal on top of the
// predicate; without residual text the predicate alone decides.
func (s *Service) searchFiltered(
	ctx context.Context, raw string, threshold float64, limit, offset int,
) ([]result.Candidate, bool, error) {
	parsed := query.Parse(raw)
	expr := parsed.Filters.Expression()

	var vector []float32
	if parsed.Terms != "" {
		emb, err := s.embed.Embed(ctx, parsed.Terms)
		if err != nil {
			return nil, false, fmt.Errorf("vectorize query terms: %w", err)
		}
		vector = emb.Embedding
	}

	return s.repo.SearchFiltered(ctx, expr, vector, threshold, limit, offset)
}

func (s *Service) bounds(req *Request) (limit, offset int, threshold float64, err error) {
	limit = req.Limit
	switch {
	case limit == 0:
		limit = s.opts.DefaultLimit
	case limit < 0:
		return 0, 0, 0, fmt.Errorf("%w: limit must be positive", domain.ErrInvalidRequest)
	case limit > s.opts.MaxLimit:
		limit = s.opts.MaxLimit
	}

	offset = req.Offset
	if offset < 0 {
		return 0, 0, 0, fmt.Errorf("%w: offset must not be negative", domain.ErrInvalidRequest)
	}

	threshold = req.Threshold
	if threshold == 0 {
		threshold = s.opts.DefaultThreshold
	}
	if threshold < 0 || threshold > 1 {
		return 0, 0, 0, fmt.Errorf("%w: threshold must be in [0,1]", domain.ErrInvalidRequest)
	}

	return limit, offset, threshold, nil
}
