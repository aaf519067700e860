package rule

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/mnesler/vector-mtg-sub000/internal/db"
	"github.com/mnesler/vector-mtg-sub000/internal/domain"
	domrule "github.com/mnesler/vector-mtg-sub000/internal/domain/rule"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetFn         func(ctx context.Context, key string, fields map[string]string) error
	hsetMultiFn    func(ctx context.Context, items []db.HashSetItem) error
	hgetAllMultiFn func(ctx context.Context, keys []string) ([]map[string]string, error)
	scanFn         func(ctx context.Context, pattern string) ([]string, error)
	searchKNNFn    func(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

func (m *mockStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	if m.hsetFn != nil {
		return m.hsetFn(ctx, key, fields)
	}
	return nil
}

func (m *mockStore) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	if m.hsetMultiFn != nil {
		return m.hsetMultiFn(ctx, items)
	}
	return nil
}

func (m *mockStore) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if m.hgetAllMultiFn != nil {
		return m.hgetAllMultiFn(ctx, keys)
	}
	return make([]map[string]string, len(keys)), nil
}

func (m *mockStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pattern)
	}
	return nil, nil
}

func (m *mockStore) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if m.searchKNNFn != nil {
		return m.searchKNNFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func TestLoadAll_CompilesPatterns(t *testing.T) {
	ms := &mockStore{}
	ms.scanFn = func(_ context.Context, pattern string) ([]string, error) {
		if pattern != domain.RuleKey("*") {
			t.Fatalf("unexpected scan pattern: %q", pattern)
		}
		return []string{domain.RuleKey("r2"), domain.RuleKey("r1")}, nil
	}
	ms.hgetAllMultiFn = func(_ context.Context, keys []string) ([]map[string]string, error) {
		// Keys arrive sorted.
		if keys[0] != domain.RuleKey("r1") {
			t.Fatalf("expected sorted keys, got %v", keys)
		}
		return []map[string]string{
			{"name": "Direct damage", "pattern": `deals?\s+\d+\s+damage`},
			{"name": "Broken", "pattern": `deals (\d+ damage`},
		}, nil
	}

	repo := New(ms, zap.NewNop())
	rules, err := repo.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(rules))
	}
	if !rules[0].HasPattern() {
		t.Fatal("valid pattern must compile")
	}
	// The broken rule survives, just without a matcher.
	if rules[1].HasPattern() {
		t.Fatal("broken pattern must not compile")
	}
	if rules[1].ID != "r2" {
		t.Fatalf("unexpected rule id: %q", rules[1].ID)
	}
}

func TestLoadAll_Empty(t *testing.T) {
	repo := New(&mockStore{}, zap.NewNop())
	rules, err := repo.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rules != nil {
		t.Fatalf("expected nil for empty store, got %v", rules)
	}
}

func TestTopSimilar(t *testing.T) {
	ms := &mockStore{}
	ms.searchKNNFn = func(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
		if q.IndexName != domain.RuleIndex() || q.VectorField != fieldVector {
			t.Fatalf("unexpected query: %+v", q)
		}
		if q.K != 5 {
			t.Fatalf("expected K=5, got %d", q.K)
		}
		return &db.SearchResult{Total: 2, Entries: []db.SearchEntry{
			{Key: domain.RuleKey("r7"), Score: 0.91},
			{Key: domain.RuleKey("r3"), Score: 0.72},
		}}, nil
	}

	repo := New(ms, zap.NewNop())
	hits, err := repo.TopSimilar(context.Background(), []float32{0.1}, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].RuleID != "r7" || hits[0].Score != 0.91 {
		t.Fatalf("unexpected first hit: %+v", hits[0])
	}
}

func TestFieldsRoundTrip(t *testing.T) {
	orig, _ := domrule.New("r1", "Direct damage", "Deal N damage", `deals?\s+(\d+)\s+damage`, "removal",
		map[string]domrule.ParamType{"damage_amount": domrule.ParamInt},
		[]float32{0.25, 0.5},
	)

	got, ok := parseFields("r1", buildFields(&orig))
	if !ok {
		t.Fatal("expected pattern to recompile")
	}
	if got.Name != orig.Name || got.Template != orig.Template || got.Category != orig.Category {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.Params["damage_amount"] != domrule.ParamInt {
		t.Fatalf("params mismatch: %v", got.Params)
	}
	if len(got.Vector) != 2 || got.Vector[0] != 0.25 {
		t.Fatalf("vector mismatch: %v", got.Vector)
	}
	if !got.MatchText("deals 3 damage") {
		t.Fatal("recompiled pattern must match")
	}
}
