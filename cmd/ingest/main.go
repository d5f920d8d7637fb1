// Command ingest pulls GDELT daily export files over a date range, filters
// and classifies disaster-related events, and upserts them into the store.
//
// One-shot usage (defaults to yesterday when flags are omitted):
//
//	ingest -start 20250526 -end 20250602
//
// Daemon mode ingests the previous UTC day on the configured cron schedule
// and serves health, readiness, and metrics endpoints:
//
//	ingest -daemon
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/disasterwatch/gdelt-disaster-etl/internal/adapter/gdelt"
	httpadapter "github.com/disasterwatch/gdelt-disaster-etl/internal/adapter/http"
	kafkaadapter "github.com/disasterwatch/gdelt-disaster-etl/internal/adapter/kafka"
	mongoadapter "github.com/disasterwatch/gdelt-disaster-etl/internal/adapter/mongo"
	"github.com/disasterwatch/gdelt-disaster-etl/internal/config"
	"github.com/disasterwatch/gdelt-disaster-etl/internal/ingest"
	"github.com/disasterwatch/gdelt-disaster-etl/internal/observability"
)

func main() {
	if err := run(); err != nil {
		slog.Error("ingest failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	startFlag := flag.String("start", "", "first day to ingest (YYYYMMDD, default yesterday)")
	endFlag := flag.String("end", "", "last day to ingest (YYYYMMDD, default = start)")
	daemon := flag.Bool("daemon", false, "run on the configured cron schedule instead of once")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	rules, err := config.LoadRules(cfg.RulesPath)
	if err != nil {
		return fmt.Errorf("load rules: %w", err)
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
	if err := store.EnsureIndexes(ctx); err != nil {
		return err
	}

	fetcher := gdelt.NewClient(cfg.FeedBaseURL, cfg.FetchTimeout, rules, logger)

	var publisher ingest.Publisher
	if cfg.KafkaEnabled {
		writer := kafkaadapter.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		publisher = writer
		logger.Info("kafka sink enabled", "topic", cfg.KafkaTopic)
	}

	orch := ingest.New(fetcher, store, publisher, rules, logger, metrics)

	if *daemon {
		return runDaemon(ctx, cfg, orch, logger)
	}

	start, end, err := parseRange(*startFlag, *endFlag)
	if err != nil {
		return err
	}
	rep, err := orch.Run(ctx, start, end)
	if err != nil {
		return err
	}
	fmt.Printf("run %s: %d records written, %d rows skipped, %d/%d days ok\n",
		rep.RunID, rep.RecordsWritten, rep.RowsSkipped,
		rep.DaysProcessed, rep.DaysProcessed+rep.DaysFailed)
	return nil
}

// runDaemon serves the operational endpoints and ingests the previous UTC
// day on every cron tick until a shutdown signal arrives.
func runDaemon(ctx context.Context, cfg *config.Config, orch *ingest.Orchestrator, logger *slog.Logger) error {
	srv := httpadapter.NewServer(cfg.HTTPAddr, orch, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	c := cron.New()
	_, err := c.AddFunc(cfg.CronSchedule, func() {
		day := time.Now().UTC().AddDate(0, 0, -1)
		if _, err := orch.Run(ctx, day, day); err != nil {
			logger.Error("scheduled ingestion failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid CRON_SCHEDULE %q: %w", cfg.CronSchedule, err)
	}
	c.Start()
	logger.Info("daemon started", "schedule", cfg.CronSchedule, "addr", cfg.HTTPAddr)

	<-ctx.Done()
	logger.Info("shutting down")

	cronCtx := c.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	select {
	case <-cronCtx.Done():
	case <-shutdownCtx.Done():
		logger.Warn("cron jobs did not finish before shutdown timeout")
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	logger.Info("shutdown complete")
	return nil
}

// parseRange resolves the start/end flags, defaulting to yesterday.
func parseRange(startFlag, endFlag string) (time.Time, time.Time, error) {
	if startFlag == "" {
		yesterday := time.Now().UTC().AddDate(0, 0, -1)
		return yesterday, yesterday, nil
	}
	start, err := time.Parse("20060102", startFlag)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid -start %q: %w", startFlag, err)
	}
	if endFlag == "" {
		return start, start, nil
	}
	end, err := time.Parse("20060102", endFlag)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid -end %q: %w", endFlag, err)
	}
	return start, end, nil
}
