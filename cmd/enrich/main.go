// Command enrich runs the batch enrichment pipeline once: topic modeling
// over the stored record text and spatial-temporal clustering, writing the
// derived fields back to the store. Safe to run at any time after records
// exist; each run fully replaces the topic definitions.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	mongoadapter "github.com/disasterwatch/gdelt-disaster-etl/internal/adapter/mongo"
	"github.com/disasterwatch/gdelt-disaster-etl/internal/config"
	"github.com/disasterwatch/gdelt-disaster-etl/internal/enrich"
	"github.com/disasterwatch/gdelt-disaster-etl/internal/observability"
)

func main() {
	if err := run(); err != nil {
		slog.Error("enrich failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := mongoadapter.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, logger)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := store.Close(shutdownCtx); err != nil {
			logger.Error("store close error", "error", err)
		}
	}()

	params := enrich.Params{
		TopicCount:        cfg.TopicCount,
		TopicIterations:   cfg.TopicIterations,
		TopicSeed:         cfg.TopicSeed,
		VocabularySize:    cfg.VocabularySize,
		MinDocFreq:        cfg.MinDocFreq,
		ClusterEps:        cfg.ClusterEps,
		ClusterMinSamples: cfg.ClusterMinSamples,
	}
	pipeline := enrich.New(store, params, logger, metrics)

	result, err := pipeline.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("enriched %d/%d records, %d topics, %d clusters\n",
		result.RecordsUpdated, result.RecordsProcessed,
		result.TopicsCreated, result.ClustersFound)
	return nil
}
