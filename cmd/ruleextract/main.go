// Command ruleextract runs the rule extraction engine once over the whole
// card corpus and prints run statistics. SIGINT/SIGTERM stop the run at the
// next batch boundary; committed batches stay committed.
package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mnesler/vector-mtg-sub000/internal/config"
	dbRedis "github.com/mnesler/vector-mtg-sub000/internal/db/redis"
	"github.com/mnesler/vector-mtg-sub000/internal/domain"
	logpkg "github.com/mnesler/vector-mtg-sub000/internal/logger"
	cardrepo "github.com/mnesler/vector-mtg-sub000/internal/repository/card"
	cardrulerepo "github.com/mnesler/vector-mtg-sub000/internal/repository/cardrule"
	rulerepo "github.com/mnesler/vector-mtg-sub000/internal/repository/rule"
	extractuc "github.com/mnesler/vector-mtg-sub000/internal/usecase/extract"
	"github.com/mnesler/vector-mtg-sub000/internal/version"
)

func main() {
	env := config.GetEnv()
	cfg := config.MustLoad(env)

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting rule extraction run",
		zap.String("version", version.Version),
		zap.String("env", env),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

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

	svc := extractuc.New(
		cardrepo.New(store, cardrepo.DefaultTuning()),
		rulerepo.New(store, logger),
		cardrulerepo.New(store),
		logger,
		extractuc.Tuning{
			BatchSize:         cfg.Extract.BatchSize,
			TopK:              cfg.Extract.TopK,
			SimilarityFloor:   cfg.Extract.SimilarityFloor,
			PatternConfidence: cfg.Extract.PatternConfidence,
		},
	)

	start := time.Now()
	stats, err := svc.Run(ctx)
	if err != nil {
		logger.Fatal("Extraction run failed", zap.Error(err),
			zap.Int("total_matches_committed", stats.TotalMatches))
	}

	logger.Info("Extraction run finished",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("total_cards", stats.TotalCards),
		zap.Int("cards_with_matches", stats.CardsWithMatches),
		zap.Int("total_matches", stats.TotalMatches),
		zap.Int("pattern_matches", stats.PatternMatches),
		zap.Int("vector_matches", stats.VectorMatches),
	)
}
