// Package cardrule persists (card, rule) match rows. Rows are keyed by the
// pair, so re-running extraction overwrites matches instead of duplicating
// them.
package cardrule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/mnesler/vector-mtg-sub000/internal/db"
	"github.com/mnesler/vector-mtg-sub000/internal/domain"
	domrule "github.com/mnesler/vector-mtg-sub000/internal/domain/rule"
)

// store is the consumer interface for match rows (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
}

// Store field names for match hashes.
const (
	fieldCardID      = "card_id"
	fieldRuleID      = "rule_id"
	fieldConfidence  = "confidence"
	fieldParams      = "params"
	fieldMethod      = "method"
	fieldExtractedAt = "extracted_at"
)

// Repo implements usecase/extract.MatchRepository.
type Repo struct {
	store store
}

// New creates a match repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// UpsertBatch writes a batch of match rows in one round-trip.
func (r *Repo) UpsertBatch(ctx context.Context, matches []domrule.Match) error {
	if len(matches) == 0 {
		return nil
	}
	items := make([]db.HashSetItem, len(matches))
	for i := range matches {
		m := &matches[i]
		items[i] = db.HashSetItem{
			Key:    domain.CardRuleKey(m.CardID, m.RuleID),
			Fields: buildFields(m),
		}
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("upsert %d matches: %w", len(matches), storeErr(err))
	}
	return nil
}

// ForCard returns all stored matches for one card.
func (r *Repo) ForCard(ctx context.Context, cardID string) ([]domrule.Match, error) {
	keys, err := r.store.Scan(ctx, domain.CardRuleKey(cardID, "*"))
	if err != nil {
		return nil, fmt.Errorf("scan matches for card %s: %w", cardID, storeErr(err))
	}
	if len(keys) == 0 {
		return nil, nil
	}

	rows, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load %d matches: %w", len(keys), storeErr(err))
	}

	matches := make([]domrule.Match, 0, len(rows))
	for _, fields := range rows {
		if len(fields) == 0 {
			continue
		}
		matches = append(matches, parseFields(fields))
	}
	return matches, nil
}

func buildFields(m *domrule.Match) map[string]string {
	// HSET merges into an existing hash, so params is written even when
	// empty; otherwise a re-run that binds nothing would keep the stale
	// bindings of the previous run.
	params := ""
	if len(m.Params) > 0 {
		if data, err := json.Marshal(m.Params); err == nil {
			params = string(data)
		}
	}
	return map[string]string{
		fieldCardID:      m.CardID,
		fieldRuleID:      m.RuleID,
		fieldConfidence:  strconv.FormatFloat(m.Confidence, 'f', -1, 64),
		fieldParams:      params,
		fieldMethod:      string(m.Method),
		fieldExtractedAt: m.ExtractedAt.UTC().Format(time.RFC3339),
	}
}

// storeErr maps store transport failures onto the retryable domain sentinel.
func storeErr(err error) error {
	if errors.Is(err, db.ErrUnavailable) {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return err
}

func parseFields(fields map[string]string) domrule.Match {
	m := domrule.Match{
		CardID: fields[fieldCardID],
		RuleID: fields[fieldRuleID],
		Method: domrule.Method(fields[fieldMethod]),
	}
	if v, err := strconv.ParseFloat(fields[fieldConfidence], 64); err == nil {
		m.Confidence = v
	}
	if raw := fields[fieldParams]; raw != "" {
		_ = json.Unmarshal([]byte(raw), &m.Params)
	}
	if t, err := time.Parse(time.RFC3339, fields[fieldExtractedAt]); err == nil {
		m.ExtractedAt = t
	}
	return m
}
