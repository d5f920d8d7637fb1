// Package ingest drives the daily fetch-transform-upsert loop over a date
// range. Failures are contained at the narrowest possible scope: a bad row
// skips the row, a bad day skips the day, and the run always terminates with
// a report of partial-success counts.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/disasterwatch/gdelt-disaster-etl/internal/domain"
	"github.com/disasterwatch/gdelt-disaster-etl/internal/observability"
)

// Fetcher retrieves the disaster-related raw rows for one calendar day.
type Fetcher interface {
	FetchDay(ctx context.Context, day time.Time) ([]domain.RawEventRow, error)
}

// Store persists canonical records and run reports.
type Store interface {
	UpsertRecord(ctx context.Context, rec domain.DisasterRecord) error
	SaveIngestReport(ctx context.Context, rep domain.IngestReport) error
}

// Publisher forwards upserted records to a downstream sink. Optional; the
// store remains the source of truth.
type Publisher interface {
	PublishRecords(ctx context.Context, records []domain.DisasterRecord) error
}

// Orchestrator coordinates one ingestion run across a date range.
type Orchestrator struct {
	fetcher   Fetcher
	store     Store
	publisher Publisher // nil disables the sink
	rules     domain.ClassifierRules
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
}

// New creates an Orchestrator. Pass a nil publisher to disable the sink.
func New(f Fetcher, s Store, p Publisher, rules domain.ClassifierRules, logger *slog.Logger, metrics *observability.Metrics) *Orchestrator {
	return &Orchestrator{
		fetcher:   f,
		store:     s,
		publisher: p,
		rules:     rules,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil once at least one day has been ingested
// successfully, for the daemon-mode readiness probe.
func (o *Orchestrator) CheckReadiness(_ context.Context) error {
	if !o.ready.Load() {
		return errors.New("no feed day ingested yet")
	}
	return nil
}

// Run processes each day from start to end inclusive, in increasing order,
// and returns the end-of-run report. A day's fetch failure is logged and
// skipped; only an invalid range or context cancellation aborts the run.
// Re-running the same range is idempotent because records upsert by event_id.
func (o *Orchestrator) Run(ctx context.Context, start, end time.Time) (domain.IngestReport, error) {
	start = truncateToDay(start)
	end = truncateToDay(end)
	if start.After(end) {
		return domain.IngestReport{}, fmt.Errorf("invalid range: start %s after end %s",
			start.Format(time.DateOnly), end.Format(time.DateOnly))
	}

	rep := domain.IngestReport{
		RunID:     uuid.NewString(),
		StartDate: start,
		EndDate:   end,
		StartedAt: domain.Clock().Now().UTC(),
	}

	o.logger.Info("ingestion run started",
		"run_id", rep.RunID,
		"start", start.Format(time.DateOnly),
		"end", end.Format(time.DateOnly),
	)
	o.metrics.IngestRunning.Set(1)
	defer o.metrics.IngestRunning.Set(0)

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			o.logger.Info("ingestion run cancelled", "run_id", rep.RunID, "reason", err)
			break
		}
		o.processDay(ctx, day, &rep)
	}

	rep.FinishedAt = domain.Clock().Now().UTC()
	o.logger.Info("ingestion run finished",
		"run_id", rep.RunID,
		"days_processed", rep.DaysProcessed,
		"days_failed", rep.DaysFailed,
		"rows_fetched", rep.RowsFetched,
		"rows_skipped", rep.RowsSkipped,
		"records_written", rep.RecordsWritten,
	)

	if err := o.store.SaveIngestReport(ctx, rep); err != nil {
		o.logger.Warn("save ingest report failed", "run_id", rep.RunID, "error", err)
	}
	return rep, nil
}

// processDay runs one fetch-transform-upsert cycle and folds the outcome
// into the report.
func (o *Orchestrator) processDay(ctx context.Context, day time.Time, rep *domain.IngestReport) {
	started := time.Now()
	dateStr := day.Format(time.DateOnly)

	rows, err := o.fetcher.FetchDay(ctx, day)
	if err != nil {
		o.logger.Error("fetch day failed, skipping", "date", dateStr, "error", err)
		o.metrics.DaysFailed.Inc()
		rep.DaysFailed++
		return
	}

	rep.RowsFetched += len(rows)
	o.metrics.RowsFetched.Add(float64(len(rows)))

	written := make([]domain.DisasterRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := domain.TransformRow(o.rules, row)
		if err != nil {
			o.logger.Warn("row rejected", "date", dateStr, "error", err)
			o.metrics.RowsSkipped.Inc()
			rep.RowsSkipped++
			continue
		}
		if err := o.store.UpsertRecord(ctx, rec); err != nil {
			// Fatal to this record only; the rest of the day continues.
			o.logger.Error("upsert failed", "date", dateStr, "event_id", rec.EventID, "error", err)
			o.metrics.UpsertErrors.Inc()
			rep.RowsSkipped++
			continue
		}
		written = append(written, rec)
		rep.RecordsWritten++
	}
	o.metrics.RecordsWritten.Add(float64(len(written)))

	o.publish(ctx, dateStr, written)

	o.metrics.DaysProcessed.Inc()
	o.metrics.DayProcessingDuration.Observe(time.Since(started).Seconds())
	rep.DaysProcessed++
	if len(written) > 0 {
		o.ready.Store(true)
	}
	o.logger.Info("day ingested", "date", dateStr, "records", len(written))
}

// publish forwards the day's records to the sink. Publish failures are
// logged and counted but never fail the day; the records are already stored.
func (o *Orchestrator) publish(ctx context.Context, dateStr string, records []domain.DisasterRecord) {
	if o.publisher == nil || len(records) == 0 {
		return
	}
	if err := o.publisher.PublishRecords(ctx, records); err != nil {
		o.logger.Error("publish records failed", "date", dateStr, "count", len(records), "error", err)
		o.metrics.PublishErrors.Inc()
	}
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
