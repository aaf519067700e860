// Package card persists cards as Redis hashes and implements the three
// retrieval strategies over the card FT index.
package card

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mnesler/vector-mtg-sub000/internal/db"
	"github.com/mnesler/vector-mtg-sub000/internal/domain"
	domcard "github.com/mnesler/vector-mtg-sub000/internal/domain/card"
	"github.com/mnesler/vector-mtg-sub000/internal/domain/search/filter"
	"github.com/mnesler/vector-mtg-sub000/internal/domain/search/result"
)

// store is the consumer interface for card rows (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	SearchFiltered(ctx context.Context, q *db.FilterQuery) (*db.SearchResult, error)
}

// Tuning holds the retrieval scoring knobs.
type Tuning struct {
	// Name-match score ladder for literal search.
	ExactScore     float64
	PrefixScore    float64
	SubstringScore float64
	TextScore      float64

	// NeutralScore is assigned to predicate-only hits, which carry no
	// ranking signal of their own.
	NeutralScore float64

	// Overfetch multiplies the requested page size before deduplication
	// and threshold cuts shrink the candidate set.
	Overfetch int
}

// DefaultTuning returns the standard scoring knobs.
func DefaultTuning() Tuning {
	return Tuning{
		ExactScore:     1.0,
		PrefixScore:    0.95,
		SubstringScore: 0.75,
		TextScore:      0.5,
		NeutralScore:   0.8,
		Overfetch:      3,
	}
}

// Repo implements usecase/search.CardRepository and the card persistence
// used by the loader and the extraction engine.
type Repo struct {
	store  store
	tuning Tuning
}

// New creates a card repository.
func New(s store, t Tuning) *Repo {
	if t.Overfetch <= 0 {
		t.Overfetch = DefaultTuning().Overfetch
	}
	return &Repo{store: s, tuning: t}
}

// Upsert creates or overwrites a card row.
func (r *Repo) Upsert(ctx context.Context, c *domcard.Card) error {
	if err := r.store.HSet(ctx, domain.CardKey(c.ID), buildFields(c)); err != nil {
		return fmt.Errorf("upsert card %s: %w", c.ID, storeErr(err))
	}
	return nil
}

// UpsertBatch writes a batch of card rows in one round-trip.
func (r *Repo) UpsertBatch(ctx context.Context, cards []domcard.Card) error {
	if len(cards) == 0 {
		return nil
	}
	items := make([]db.HashSetItem, len(cards))
	for i := range cards {
		items[i] = db.HashSetItem{
			Key:    domain.CardKey(cards[i].ID),
			Fields: buildFields(&cards[i]),
		}
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("upsert %d cards: %w", len(cards), storeErr(err))
	}
	return nil
}

// Get returns a card by ID.
func (r *Repo) Get(ctx context.Context, id string) (domcard.Card, error) {
	fields, err := r.store.HGetAll(ctx, domain.CardKey(id))
	if err != nil {
		return domcard.Card{}, fmt.Errorf("get card %s: %w", id, storeErr(err))
	}
	if len(fields) == 0 {
		return domcard.Card{}, domain.ErrCardNotFound
	}
	return parseFields(id, fields), nil
}

// IDs returns every stored card ID.
func (r *Repo) IDs(ctx context.Context) ([]string, error) {
	keys, err := r.store.Scan(ctx, domain.CardKey("*"))
	if err != nil {
		return nil, fmt.Errorf("scan cards: %w", storeErr(err))
	}
	ids := make([]string, 0, len(keys))
	prefix := domain.CardKey("")
	for _, k := range keys {
		ids = append(ids, strings.TrimPrefix(k, prefix))
	}
	sort.Strings(ids)
	return ids, nil
}

// GetMany fetches cards by ID in one round-trip, skipping missing rows.
func (r *Repo) GetMany(ctx context.Context, ids []string) ([]domcard.Card, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = domain.CardKey(id)
	}
	rows, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("get %d cards: %w", len(ids), storeErr(err))
	}
	cards := make([]domcard.Card, 0, len(rows))
	for i, fields := range rows {
		if len(fields) == 0 {
			continue
		}
		cards = append(cards, parseFields(ids[i], fields))
	}
	return cards, nil
}

// SearchLiteral looks a card up by name. Candidate rows come from a
// full-text pass over name and rules text; scores follow a fixed ladder
// from exact name match down to rules-text-only hits, and reprints collapse
// to their most recent printing.
func (r *Repo) SearchLiteral(ctx context.Context, name string, limit, offset int) ([]result.Candidate, bool, error) {
	fetch := r.fetchSize(limit, offset)

	res, err := r.store.SearchText(ctx, &db.TextQuery{
		IndexName:    domain.CardIndex(),
		Query:        name,
		TextFields:   []string{domcard.FieldName, domcard.FieldRulesText},
		TopK:         fetch,
		ReturnFields: returnFields,
	})
	if err != nil {
		return nil, false, fmt.Errorf("literal search %q: %w", name, storeErr(err))
	}

	wanted := strings.ToLower(strings.TrimSpace(name))
	candidates := make([]result.Candidate, 0, len(res.Entries))
	for _, entry := range res.Entries {
		c := parseFields(cardIDFromKey(entry.Key), entry.Fields)
		candidates = append(candidates, result.New(c, r.nameScore(wanted, c.Name)))
	}

	candidates = dedupeByName(candidates)
	sortByScore(candidates)

	page, hasMore := paginate(candidates, limit, offset)
	if res.Total > fetch {
		hasMore = true
	}
	return page, hasMore, nil
}

// SearchSimilar runs KNN over the full-card vector, drops hits below the
// similarity threshold and collapses reprints to the best-scoring printing.
func (r *Repo) SearchSimilar(
	ctx context.Context, vector []float32, threshold float64, limit, offset int,
) ([]result.Candidate, bool, error) {
	fetch := r.fetchSize(limit, offset)

	res, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    domain.CardIndex(),
		VectorField:  domcard.FieldFullVector,
		Vector:       vector,
		K:            fetch,
		ReturnFields: returnFields,
	})
	if err != nil {
		return nil, false, fmt.Errorf("similarity search: %w", storeErr(err))
	}

	candidates := collectScored(res.Entries, threshold)
	candidates = dedupeByName(candidates)
	sortByScore(candidates)

	page, hasMore := paginate(candidates, limit, offset)
	if res.Total > fetch {
		hasMore = true
	}
	return page, hasMore, nil
}

// SearchFiltered retrieves cards matching a structured filter. With a query
// vector the predicate becomes a KNN pre-filter and hits rank by similarity;
// without one the predicate alone decides membership and every hit gets the
// neutral score.
func (r *Repo) SearchFiltered(
	ctx context.Context, expr filter.Expression, vector []float32, threshold float64, limit, offset int,
) ([]result.Candidate, bool, error) {
	if len(vector) > 0 {
		return r.searchFilteredKNN(ctx, expr, vector, threshold, limit, offset)
	}

	res, err := r.store.SearchFiltered(ctx, &db.FilterQuery{
		IndexName:    domain.CardIndex(),
		Filters:      expr,
		Offset:       offset,
		Limit:        limit,
		ReturnFields: returnFields,
	})
	if err != nil {
		return nil, false, fmt.Errorf("filtered search: %w", storeErr(err))
	}

	candidates := make([]result.Candidate, 0, len(res.Entries))
	for _, entry := range res.Entries {
		c := parseFields(cardIDFromKey(entry.Key), entry.Fields)
		candidates = append(candidates, result.New(c, r.tuning.NeutralScore))
	}
	return candidates, offset+limit < res.Total, nil
}

func (r *Repo) searchFilteredKNN(
	ctx context.Context, expr filter.Expression, vector []float32, threshold float64, limit, offset int,
) ([]result.Candidate, bool, error) {
	fetch := r.fetchSize(limit, offset)

	res, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    domain.CardIndex(),
		VectorField:  domcard.FieldFullVector,
		Filters:      expr,
		Vector:       vector,
		K:            fetch,
		ReturnFields: returnFields,
	})
	if err != nil {
		return nil, false, fmt.Errorf("filtered knn search: %w", storeErr(err))
	}

	candidates := collectScored(res.Entries, threshold)
	sortByScore(candidates)

	page, hasMore := paginate(candidates, limit, offset)
	if res.Total > fetch {
		hasMore = true
	}
	return page, hasMore, nil
}

// nameScore places a hit on the literal score ladder.
func (r *Repo) nameScore(wanted, got string) float64 {
	name := strings.ToLower(got)
	switch {
	case name == wanted:
		return r.tuning.ExactScore
	case strings.HasPrefix(name, wanted):
		return r.tuning.PrefixScore
	case strings.Contains(name, wanted):
		return r.tuning.SubstringScore
	default:
		return r.tuning.TextScore
	}
}

func (r *Repo) fetchSize(limit, offset int) int {
	fetch := r.tuning.Overfetch * (limit + offset)
	if fetch < limit {
		fetch = limit
	}
	return fetch
}

func collectScored(entries []db.SearchEntry, threshold float64) []result.Candidate {
	candidates := make([]result.Candidate, 0, len(entries))
	for _, entry := range entries {
		if entry.Score < threshold {
			continue
		}
		c := parseFields(cardIDFromKey(entry.Key), entry.Fields)
		candidates = append(candidates, result.New(c, entry.Score))
	}
	return candidates
}

// dedupeByName collapses printings sharing a display name to one candidate:
// the better score wins, ties go to the more recent printing.
func dedupeByName(candidates []result.Candidate) []result.Candidate {
	seen := make(map[string]int, len(candidates))
	out := make([]result.Candidate, 0, len(candidates))
	for _, cand := range candidates {
		name := strings.ToLower(cand.Card().Name)
		idx, ok := seen[name]
		if !ok {
			seen[name] = len(out)
			out = append(out, cand)
			continue
		}
		kept := out[idx]
		if cand.Score() > kept.Score() ||
			(cand.Score() == kept.Score() && cand.Card().NewerThan(kept.Card())) {
			out[idx] = cand
		}
	}
	return out
}

// sortByScore orders candidates by score descending, then name for a
// stable, reproducible order.
func sortByScore(candidates []result.Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score() != candidates[j].Score() {
			return candidates[i].Score() > candidates[j].Score()
		}
		return candidates[i].Card().Name < candidates[j].Card().Name
	})
}

func paginate(candidates []result.Candidate, limit, offset int) ([]result.Candidate, bool) {
	if offset >= len(candidates) {
		return nil, false
	}
	end := offset + limit
	if end > len(candidates) {
		end = len(candidates)
	}
	return candidates[offset:end], end < len(candidates)
}

func cardIDFromKey(key string) string {
	return strings.TrimPrefix(key, domain.CardKey(""))
}

// storeErr maps store transport failures onto the retryable domain sentinels
// the API layer knows how to report.
func storeErr(err error) error {
	switch {
	case errors.Is(err, db.ErrUnavailable):
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	case errors.Is(err, db.ErrVectorDim):
		return fmt.Errorf("%w: %v", domain.ErrVectorDimMismatch, err)
	}
	return err
}
