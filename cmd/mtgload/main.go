// Command mtgload bulk-loads card and rule JSON dumps into the store:
// creates the FT indexes, embeds texts in batches and upserts the rows.
// Re-running over the same files overwrites rows in place.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mnesler/vector-mtg-sub000/internal/config"
	"github.com/mnesler/vector-mtg-sub000/internal/db"
	dbRedis "github.com/mnesler/vector-mtg-sub000/internal/db/redis"
	"github.com/mnesler/vector-mtg-sub000/internal/domain"
	domcard "github.com/mnesler/vector-mtg-sub000/internal/domain/card"
	domrule "github.com/mnesler/vector-mtg-sub000/internal/domain/rule"
	logpkg "github.com/mnesler/vector-mtg-sub000/internal/logger"
	"github.com/mnesler/vector-mtg-sub000/internal/metrics"
	cardrepo "github.com/mnesler/vector-mtg-sub000/internal/repository/card"
	"github.com/mnesler/vector-mtg-sub000/internal/repository/embcache"
	rulerepo "github.com/mnesler/vector-mtg-sub000/internal/repository/rule"
	openaiEmb "github.com/mnesler/vector-mtg-sub000/internal/transport/openai"
)

// embedBatchSize texts per embedding API call.
const embedBatchSize = 64

// upsertBatchSize rows per pipelined store write.
const upsertBatchSize = 500

func main() {
	cardsPath := flag.String("cards", "", "path to cards JSON file")
	rulesPath := flag.String("rules", "", "path to rules JSON file")
	recreate := flag.Bool("recreate-indexes", false, "drop and recreate FT indexes before loading")
	flag.Parse()

	env := config.GetEnv()
	cfg := config.MustLoad(env)

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	if *cardsPath == "" && *rulesPath == "" {
		logger.Fatal("nothing to load: pass -cards and/or -rules")
	}

	domain.KeyPrefix = cfg.Storage.KeyPrefix

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}

	metrics.RegisterEmbeddingMetrics()

	embedder, dim := buildDocEmbedder(cfg, store, logger)
	if dim <= 0 {
		logger.Fatal("embedding.vectorizers dimensions must be set for loading")
	}

	if err := ensureIndexes(ctx, store, cfg, dim, *recreate); err != nil {
		logger.Fatal("Failed to create indexes", zap.Error(err))
	}

	if *rulesPath != "" {
		if err := loadRules(ctx, store, embedder, *rulesPath, logger); err != nil {
			logger.Fatal("Rule load failed", zap.Error(err))
		}
	}
	if *cardsPath != "" {
		if err := loadCards(ctx, store, embedder, *cardsPath, logger); err != nil {
			logger.Fatal("Card load failed", zap.Error(err))
		}
	}

	logger.Info("Load finished")
}

func buildDocEmbedder(cfg config.Config, store db.Store, logger *zap.Logger) (domain.Embedder, int) {
	var vecCfg config.VectorizerConfig
	var provName string
	for _, vc := range cfg.Embedding.Vectorizers {
		vecCfg = vc
		provName = vc.Provider
		break
	}
	provCfg := cfg.Embedding.Providers[provName]

	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     provCfg.APIKey,
		BaseURL:    provCfg.BaseURL,
		Model:      vecCfg.Model,
		Dimensions: vecCfg.Dimensions,
		Provider:   provName,
		Logger:     logger,
	})

	var embedder domain.Embedder = embcache.New(base, store, metrics.EmbeddingCacheTotal, logger)
	if vecCfg.DocumentInstruction != "" {
		embedder = domain.NewInstructionEmbedder(embedder, vecCfg.DocumentInstruction)
	}
	return embedder, vecCfg.Dimensions
}

func ensureIndexes(ctx context.Context, store db.Store, cfg config.Config, dim int, recreate bool) error {
	cardIdx := db.NewIndex(domain.CardIndex()).
		Prefix(domain.CardKey("")).
		Text(domcard.FieldName).
		Text(domcard.FieldRulesText).
		Numeric(domcard.FieldCMC).
		Numeric(domcard.FieldPower).
		Numeric(domcard.FieldToughness).
		Tag(domcard.FieldTypes).
		Tag(domcard.FieldColors).
		Tag(domcard.FieldKeywords).
		Tag(domcard.FieldRarity).
		VectorHNSW(domcard.FieldFullVector, dim, db.DistanceCosine, cfg.Index.HNSWM, cfg.Index.HNSWEFConstruct).
		VectorHNSW(domcard.FieldTextVector, dim, db.DistanceCosine, cfg.Index.HNSWM, cfg.Index.HNSWEFConstruct).
		MustBuild()

	ruleIdx := db.NewIndex(domain.RuleIndex()).
		Prefix(domain.RuleKey("")).
		Text("name").
		Tag("category").
		VectorHNSW("vector", dim, db.DistanceCosine, cfg.Index.HNSWM, cfg.Index.HNSWEFConstruct).
		MustBuild()

	for _, idx := range []*db.IndexDefinition{cardIdx, ruleIdx} {
		if recreate {
			if err := store.DropIndex(ctx, idx.Name); err != nil && err != db.ErrIndexNotFound {
				return fmt.Errorf("drop index %s: %w", idx.Name, err)
			}
		}
		if err := store.CreateIndex(ctx, idx); err != nil {
			if err == db.ErrIndexExists {
				continue
			}
			return fmt.Errorf("create index %s: %w", idx.Name, err)
		}
	}
	return nil
}

// cardRow is the input JSON shape for one card. Power and toughness come as
// strings because non-numeric values ("*", "X") exist in the wild; those
// load as absent.
type cardRow struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	ManaCost   string   `json:"mana_cost"`
	CMC        float64  `json:"cmc"`
	TypeLine   string   `json:"type_line"`
	Types      []string `json:"types"`
	RulesText  string   `json:"rules_text"`
	Colors     []string `json:"colors"`
	Keywords   []string `json:"keywords"`
	Rarity     string   `json:"rarity"`
	Power      string   `json:"power"`
	Toughness  string   `json:"toughness"`
	ReleasedAt string   `json:"released_at"`
}

type ruleRow struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Template string            `json:"template"`
	Pattern  string            `json:"pattern"`
	Category string            `json:"category"`
	Params   map[string]string `json:"params"`
}

func loadCards(ctx context.Context, store db.Store, embedder domain.Embedder, path string, logger *zap.Logger) error {
	var rows []cardRow
	if err := readJSON(path, &rows); err != nil {
		return err
	}
	logger.Info("Loading cards", zap.String("file", path), zap.Int("count", len(rows)))

	repo := cardrepo.New(store, cardrepo.DefaultTuning())

	for start := 0; start < len(rows); start += upsertBatchSize {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("load interrupted: %w", err)
		}
		end := start + upsertBatchSize
		if end > len(rows) {
			end = len(rows)
		}

		cards := make([]domcard.Card, 0, end-start)
		for _, row := range rows[start:end] {
			cards = append(cards, cardFromRow(row))
		}
		if err := embedCards(ctx, embedder, cards); err != nil {
			return err
		}
		if err := repo.UpsertBatch(ctx, cards); err != nil {
			return err
		}
		logger.Info("Card batch loaded", zap.Int("loaded", end), zap.Int("total", len(rows)))
	}
	return nil
}

func loadRules(ctx context.Context, store db.Store, embedder domain.Embedder, path string, logger *zap.Logger) error {
	var rows []ruleRow
	if err := readJSON(path, &rows); err != nil {
		return err
	}
	logger.Info("Loading rules", zap.String("file", path), zap.Int("count", len(rows)))

	texts := make([]string, len(rows))
	rules := make([]domrule.Rule, len(rows))
	for i, row := range rows {
		params := make(map[string]domrule.ParamType, len(row.Params))
		for name, typ := range row.Params {
			params[name] = domrule.ParamType(typ)
		}
		r, ok := domrule.New(row.ID, row.Name, row.Template, row.Pattern, row.Category, params, nil)
		if !ok {
			logger.Warn("rule pattern failed to compile, similarity matching only",
				zap.String("rule_id", row.ID), zap.String("pattern", row.Pattern))
		}
		rules[i] = r
		texts[i] = r.EmbeddingText()
	}

	vectors, err := embedAll(ctx, embedder, texts)
	if err != nil {
		return fmt.Errorf("embed rules: %w", err)
	}
	for i := range rules {
		rules[i].Vector = vectors[i]
	}

	if err := rulerepo.New(store, logger).UpsertBatch(ctx, rules); err != nil {
		return err
	}
	logger.Info("Rules loaded", zap.Int("count", len(rules)))
	return nil
}

func embedCards(ctx context.Context, embedder domain.Embedder, cards []domcard.Card) error {
	fullTexts := make([]string, len(cards))
	ruleTexts := make([]string, len(cards))
	for i := range cards {
		fullTexts[i] = cards[i].EmbeddingText()
		ruleTexts[i] = cards[i].RulesText
	}

	fullVecs, err := embedAll(ctx, embedder, fullTexts)
	if err != nil {
		return fmt.Errorf("embed card texts: %w", err)
	}
	textVecs, err := embedAll(ctx, embedder, ruleTexts)
	if err != nil {
		return fmt.Errorf("embed rules texts: %w", err)
	}

	for i := range cards {
		cards[i].FullVector = fullVecs[i]
		cards[i].TextVector = textVecs[i]
	}
	return nil
}

// embedAll embeds texts in API-sized chunks, preserving order.
func embedAll(ctx context.Context, embedder domain.Embedder, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		res, err := batchEmbed(ctx, embedder, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, res.Embeddings...)
	}
	return out, nil
}

func batchEmbed(ctx context.Context, embedder domain.Embedder, texts []string) (domain.BatchEmbeddingResult, error) {
	if be, ok := embedder.(domain.BatchEmbedder); ok {
		return be.BatchEmbed(ctx, texts)
	}
	return domain.BatchFallback(ctx, embedder, texts)
}

func cardFromRow(row cardRow) domcard.Card {
	c := domcard.Card{
		ID:        row.ID,
		Name:      row.Name,
		ManaCost:  row.ManaCost,
		CMC:       row.CMC,
		TypeLine:  row.TypeLine,
		Types:     row.Types,
		RulesText: row.RulesText,
		Colors:    row.Colors,
		Keywords:  row.Keywords,
		Rarity:    row.Rarity,
	}
	if v, err := strconv.ParseFloat(row.Power, 64); err == nil {
		c.Power = &v
	}
	if v, err := strconv.ParseFloat(row.Toughness, 64); err == nil {
		c.Toughness = &v
	}
	if t, err := time.Parse("2006-01-02", row.ReleasedAt); err == nil {
		c.ReleasedAt = t
	}
	return c
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
