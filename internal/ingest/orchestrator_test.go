package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/disasterwatch/gdelt-disaster-etl/internal/domain"
	"github.com/disasterwatch/gdelt-disaster-etl/internal/observability"
)

type fakeFetcher struct {
	rows    map[string][]domain.RawEventRow
	failOn  map[string]error
	fetched []string
}

func (f *fakeFetcher) FetchDay(_ context.Context, day time.Time) ([]domain.RawEventRow, error) {
	date := day.Format("20060102")
	f.fetched = append(f.fetched, date)
	if err, ok := f.failOn[date]; ok {
		return nil, err
	}
	return f.rows[date], nil
}

type fakeStore struct {
	records     map[string]domain.DisasterRecord
	upserts     int
	upsertErrOn map[string]error
	reports     []domain.IngestReport
	reportErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[string]domain.DisasterRecord)}
}

func (s *fakeStore) UpsertRecord(_ context.Context, rec domain.DisasterRecord) error {
	if err, ok := s.upsertErrOn[rec.EventID]; ok {
		return err
	}
	s.upserts++
	s.records[rec.EventID] = rec
	return nil
}

func (s *fakeStore) SaveIngestReport(_ context.Context, rep domain.IngestReport) error {
	if s.reportErr != nil {
		return s.reportErr
	}
	s.reports = append(s.reports, rep)
	return nil
}

type fakePublisher struct {
	published [][]domain.DisasterRecord
	err       error
}

func (p *fakePublisher) PublishRecords(_ context.Context, records []domain.DisasterRecord) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, records)
	return nil
}

func feedRow(eventID, date string) domain.RawEventRow {
	return domain.RawEventRow{
		EventID:      eventID,
		Date:         date,
		Actor1Name:   "EARTHQUAKE VICTIMS",
		EventCode:    "0231",
		BaseCode:     "023",
		RootCode:     "02",
		Goldstein:    "-9.0",
		Mentions:     "120",
		Tone:         "-6.5",
		ActionGeoLat: "35.68",
		ActionGeoLon: "139.69",
	}
}

func day(s string) time.Time {
	d, _ := time.Parse("20060102", s)
	return d
}

func newOrchestrator(f Fetcher, s Store, p Publisher) *Orchestrator {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(f, s, p, domain.DefaultRules(), logger, observability.NewMetricsForTesting())
}

func TestRun_HappyPath(t *testing.T) {
	fetcher := &fakeFetcher{rows: map[string][]domain.RawEventRow{
		"20250526": {feedRow("1", "20250526"), feedRow("2", "20250526")},
		"20250527": {feedRow("3", "20250527")},
	}}
	store := newFakeStore()
	pub := &fakePublisher{}

	rep, err := newOrchestrator(fetcher, store, pub).Run(context.Background(), day("20250526"), day("20250527"))
	require.NoError(t, err)

	assert.Equal(t, []string{"20250526", "20250527"}, fetcher.fetched)
	assert.Equal(t, 2, rep.DaysProcessed)
	assert.Zero(t, rep.DaysFailed)
	assert.Equal(t, 3, rep.RowsFetched)
	assert.Zero(t, rep.RowsSkipped)
	assert.Equal(t, 3, rep.RecordsWritten)
	assert.NotEmpty(t, rep.RunID)
	assert.Len(t, store.records, 3)

	// One publish batch per day.
	require.Len(t, pub.published, 2)
	assert.Len(t, pub.published[0], 2)
	assert.Len(t, pub.published[1], 1)

	// Report persisted with the same run id.
	require.Len(t, store.reports, 1)
	assert.Equal(t, rep.RunID, store.reports[0].RunID)
}

func TestRun_DayFailureSkipsAndContinues(t *testing.T) {
	fetcher := &fakeFetcher{
		rows: map[string][]domain.RawEventRow{
			"20250526": {feedRow("1", "20250526")},
			"20250528": {feedRow("2", "20250528")},
		},
		failOn: map[string]error{
			"20250527": &domain.FetchError{Date: "20250527", Err: errors.New("status 404")},
		},
	}
	store := newFakeStore()

	rep, err := newOrchestrator(fetcher, store, nil).Run(context.Background(), day("20250526"), day("20250528"))
	require.NoError(t, err)

	assert.Equal(t, []string{"20250526", "20250527", "20250528"}, fetcher.fetched)
	assert.Equal(t, 2, rep.DaysProcessed)
	assert.Equal(t, 1, rep.DaysFailed)
	assert.Equal(t, 2, rep.RecordsWritten)
	assert.Len(t, store.records, 2)
}

func TestRun_BadRowSkipsAndContinues(t *testing.T) {
	badDate := feedRow("1", "not-a-date")
	badGeo := feedRow("2", "20250526")
	badGeo.ActionGeoLat = "95.0"

	fetcher := &fakeFetcher{rows: map[string][]domain.RawEventRow{
		"20250526": {badDate, badGeo, feedRow("3", "20250526")},
	}}
	store := newFakeStore()

	rep, err := newOrchestrator(fetcher, store, nil).Run(context.Background(), day("20250526"), day("20250526"))
	require.NoError(t, err)

	assert.Equal(t, 3, rep.RowsFetched)
	assert.Equal(t, 2, rep.RowsSkipped)
	assert.Equal(t, 1, rep.RecordsWritten)
	assert.Equal(t, 1, rep.DaysProcessed)
	assert.Contains(t, store.records, "3")
}

func TestRun_UpsertFailureSkipsRecord(t *testing.T) {
	fetcher := &fakeFetcher{rows: map[string][]domain.RawEventRow{
		"20250526": {feedRow("1", "20250526"), feedRow("2", "20250526")},
	}}
	store := newFakeStore()
	store.upsertErrOn = map[string]error{"1": errors.New("write conflict")}
	pub := &fakePublisher{}

	rep, err := newOrchestrator(fetcher, store, pub).Run(context.Background(), day("20250526"), day("20250526"))
	require.NoError(t, err)

	assert.Equal(t, 1, rep.RowsSkipped)
	assert.Equal(t, 1, rep.RecordsWritten)

	// Only the stored record reaches the sink.
	require.Len(t, pub.published, 1)
	require.Len(t, pub.published[0], 1)
	assert.Equal(t, "2", pub.published[0][0].EventID)
}

func TestRun_Idempotent(t *testing.T) {
	fetcher := &fakeFetcher{rows: map[string][]domain.RawEventRow{
		"20250526": {feedRow("1", "20250526"), feedRow("2", "20250526")},
	}}
	store := newFakeStore()
	orch := newOrchestrator(fetcher, store, nil)

	_, err := orch.Run(context.Background(), day("20250526"), day("20250526"))
	require.NoError(t, err)
	_, err = orch.Run(context.Background(), day("20250526"), day("20250526"))
	require.NoError(t, err)

	// Same events keyed by event_id, upserted twice, stored once each.
	assert.Equal(t, 4, store.upserts)
	assert.Len(t, store.records, 2)
}

func TestRun_InvalidRange(t *testing.T) {
	store := newFakeStore()
	orch := newOrchestrator(&fakeFetcher{}, store, nil)

	_, err := orch.Run(context.Background(), day("20250527"), day("20250526"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid range")
	assert.Empty(t, store.reports)
}

func TestRun_PublishFailureIsNonFatal(t *testing.T) {
	fetcher := &fakeFetcher{rows: map[string][]domain.RawEventRow{
		"20250526": {feedRow("1", "20250526")},
	}}
	store := newFakeStore()
	pub := &fakePublisher{err: errors.New("broker unavailable")}

	rep, err := newOrchestrator(fetcher, store, pub).Run(context.Background(), day("20250526"), day("20250526"))
	require.NoError(t, err)

	assert.Equal(t, 1, rep.RecordsWritten)
	assert.Len(t, store.records, 1)
}

func TestRun_ReportSaveFailureIsNonFatal(t *testing.T) {
	fetcher := &fakeFetcher{rows: map[string][]domain.RawEventRow{
		"20250526": {feedRow("1", "20250526")},
	}}
	store := newFakeStore()
	store.reportErr = errors.New("collection unavailable")

	rep, err := newOrchestrator(fetcher, store, nil).Run(context.Background(), day("20250526"), day("20250526"))
	require.NoError(t, err)
	assert.Equal(t, 1, rep.RecordsWritten)
}

func TestRun_ContextCancellationStopsLoop(t *testing.T) {
	fetcher := &fakeFetcher{rows: map[string][]domain.RawEventRow{
		"20250526": {feedRow("1", "20250526")},
	}}
	store := newFakeStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rep, err := newOrchestrator(fetcher, store, nil).Run(ctx, day("20250526"), day("20250528"))
	require.NoError(t, err)

	assert.Empty(t, fetcher.fetched)
	assert.Zero(t, rep.DaysProcessed)
}

func TestCheckReadiness(t *testing.T) {
	fetcher := &fakeFetcher{rows: map[string][]domain.RawEventRow{
		"20250526": {feedRow("1", "20250526")},
	}}
	store := newFakeStore()
	orch := newOrchestrator(fetcher, store, nil)

	assert.Error(t, orch.CheckReadiness(context.Background()))

	_, err := orch.Run(context.Background(), day("20250526"), day("20250526"))
	require.NoError(t, err)
	assert.NoError(t, orch.CheckReadiness(context.Background()))
}
