// Package rule persists the rule taxonomy as Redis hashes and serves the
// similarity lookups the extraction engine runs against the rule FT index.
package rule

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/mnesler/vector-mtg-sub000/internal/db"
	"github.com/mnesler/vector-mtg-sub000/internal/domain"
	domrule "github.com/mnesler/vector-mtg-sub000/internal/domain/rule"
)

// store is the consumer interface for rule rows (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo implements usecase/extract.RuleRepository.
type Repo struct {
	store store
	log   *zap.Logger
}

// New creates a rule repository.
func New(s store, log *zap.Logger) *Repo {
	return &Repo{store: s, log: log}
}

// Upsert creates or overwrites a rule row.
func (r *Repo) Upsert(ctx context.Context, rl *domrule.Rule) error {
	if err := r.store.HSet(ctx, domain.RuleKey(rl.ID), buildFields(rl)); err != nil {
		return fmt.Errorf("upsert rule %s: %w", rl.ID, storeErr(err))
	}
	return nil
}

// UpsertBatch writes a batch of rule rows in one round-trip.
func (r *Repo) UpsertBatch(ctx context.Context, rules []domrule.Rule) error {
	if len(rules) == 0 {
		return nil
	}
	items := make([]db.HashSetItem, len(rules))
	for i := range rules {
		items[i] = db.HashSetItem{
			Key:    domain.RuleKey(rules[i].ID),
			Fields: buildFields(&rules[i]),
		}
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("upsert %d rules: %w", len(rules), storeErr(err))
	}
	return nil
}

// LoadAll returns every stored rule with patterns compiled. Rules whose
// pattern fails to compile are kept without a matcher and logged; they still
// take part in similarity matching.
func (r *Repo) LoadAll(ctx context.Context) ([]domrule.Rule, error) {
	keys, err := r.store.Scan(ctx, domain.RuleKey("*"))
	if err != nil {
		return nil, fmt.Errorf("scan rules: %w", storeErr(err))
	}
	if len(keys) == 0 {
		return nil, nil
	}
	sort.Strings(keys)

	rows, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load %d rules: %w", len(keys), storeErr(err))
	}

	prefix := domain.RuleKey("")
	rules := make([]domrule.Rule, 0, len(rows))
	for i, fields := range rows {
		if len(fields) == 0 {
			continue
		}
		id := strings.TrimPrefix(keys[i], prefix)
		rl, ok := parseFields(id, fields)
		if !ok {
			r.log.Warn("rule pattern failed to compile, similarity matching only",
				zap.String("rule_id", id),
				zap.String("pattern", rl.Pattern))
		}
		rules = append(rules, rl)
	}
	return rules, nil
}

// TopSimilar returns the k rules closest to the given text vector, best
// first. Scores are cosine similarities in [0,1].
func (r *Repo) TopSimilar(ctx context.Context, vector []float32, k int) ([]domrule.SimilarRule, error) {
	res, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    domain.RuleIndex(),
		VectorField:  fieldVector,
		Vector:       vector,
		K:            k,
		ReturnFields: []string{fieldName},
	})
	if err != nil {
		return nil, fmt.Errorf("rule similarity search: %w", storeErr(err))
	}

	prefix := domain.RuleKey("")
	out := make([]domrule.SimilarRule, 0, len(res.Entries))
	for _, entry := range res.Entries {
		out = append(out, domrule.SimilarRule{
			RuleID: strings.TrimPrefix(entry.Key, prefix),
			Score:  entry.Score,
		})
	}
	return out, nil
}

// storeErr maps store transport failures onto the retryable domain sentinels.
func storeErr(err error) error {
	switch {
	case errors.Is(err, db.ErrUnavailable):
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	case errors.Is(err, db.ErrVectorDim):
		return fmt.Errorf("%w: %v", domain.ErrVectorDimMismatch, err)
	}
	return err
}
