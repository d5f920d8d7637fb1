package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// ingestion and enrichment pipelines.
type Metrics struct {
	DaysProcessed  prometheus.Counter
	DaysFailed     prometheus.Counter
	RowsFetched    prometheus.Counter
	RowsSkipped    prometheus.Counter
	RecordsWritten prometheus.Counter
	UpsertErrors   prometheus.Counter
	PublishErrors  prometheus.Counter
	IngestRunning  prometheus.Gauge

	DayProcessingDuration prometheus.Histogram

	// Enrichment metrics.
	RecordsEnriched    prometheus.Counter
	EnrichmentErrors   prometheus.Counter
	EnrichmentDuration prometheus.Histogram
	TopicsCreated      prometheus.Gauge
	ClustersFound      prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.DaysProcessed,
		m.DaysFailed,
		m.RowsFetched,
		m.RowsSkipped,
		m.RecordsWritten,
		m.UpsertErrors,
		m.PublishErrors,
		m.IngestRunning,
		m.DayProcessingDuration,
		m.RecordsEnriched,
		m.EnrichmentErrors,
		m.EnrichmentDuration,
		m.TopicsCreated,
		m.ClustersFound,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		DaysProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "disaster_etl",
			Name:      "days_processed_total",
			Help:      "Total feed days fetched and processed successfully.",
		}),
		DaysFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "disaster_etl",
			Name:      "days_failed_total",
			Help:      "Total feed days skipped after a fetch or format failure.",
		}),
		RowsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "disaster_etl",
			Name:      "rows_fetched_total",
			Help:      "Total disaster-related rows returned by the feed pre-filter.",
		}),
		RowsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "disaster_etl",
			Name:      "rows_skipped_total",
			Help:      "Total rows rejected by validation.",
		}),
		RecordsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "disaster_etl",
			Name:      "records_written_total",
			Help:      "Total records upserted into the store.",
		}),
		UpsertErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "disaster_etl",
			Name:      "upsert_errors_total",
			Help:      "Total store upsert failures.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "disaster_etl",
			Name:      "publish_errors_total",
			Help:      "Total sink publish failures (non-fatal; store is authoritative).",
		}),
		IngestRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "disaster_etl",
			Name:      "ingest_running",
			Help:      "1 while an ingestion run is active, 0 otherwise.",
		}),
		DayProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "disaster_etl",
			Name:      "day_processing_duration_seconds",
			Help:      "Duration of a complete fetch-transform-upsert cycle for one day.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
		RecordsEnriched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "disaster_etl",
			Name:      "records_enriched_total",
			Help:      "Total records updated with topic and cluster assignments.",
		}),
		EnrichmentErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "disaster_etl",
			Name:      "enrichment_errors_total",
			Help:      "Total per-record enrichment write failures.",
		}),
		EnrichmentDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "disaster_etl",
			Name:      "enrichment_duration_seconds",
			Help:      "Duration of a complete enrichment batch run.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
		}),
		TopicsCreated: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "disaster_etl",
			Name:      "topics_created",
			Help:      "Topic definitions produced by the last enrichment run.",
		}),
		ClustersFound: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "disaster_etl",
			Name:      "clusters_found",
			Help:      "Spatial-temporal clusters found by the last enrichment run.",
		}),
	}
}
