// Package enrich implements the batch enrichment stage: topic assignments
// over the record text and spatial-temporal clusters over location, time,
// and severity. It runs independently of ingestion, reads the whole store,
// and writes derived fields back per record.
package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/disasterwatch/gdelt-disaster-etl/internal/analytics"
	"github.com/disasterwatch/gdelt-disaster-etl/internal/domain"
	"github.com/disasterwatch/gdelt-disaster-etl/internal/observability"
)

// minClusterInput is the minimum number of valid feature vectors before
// clustering runs at all. Below it every record gets the noise sentinel.
const minClusterInput = 3

// topicKeywordsStored is how many topic keywords are written per record;
// topic definitions keep a longer list.
const (
	topicKeywordsStored  = 5
	topicKeywordsDefined = 10
)

// Store is the read-modify-write surface the pipeline needs.
type Store interface {
	AllRecords(ctx context.Context) ([]domain.DisasterRecord, error)
	ApplyEnrichment(ctx context.Context, eventID string, e domain.Enrichment) error
	ReplaceTopics(ctx context.Context, topics []domain.TopicDefinition) error
}

// Params configure the topic model and the clustering stage. All values are
// injected; none are inferred from the data.
type Params struct {
	TopicCount      int
	TopicIterations int
	TopicSeed       int64
	VocabularySize  int
	MinDocFreq      int

	ClusterEps        float64
	ClusterMinSamples int
}

// DefaultParams returns the canonical enrichment parameters.
func DefaultParams() Params {
	return Params{
		TopicCount:        8,
		TopicIterations:   10,
		TopicSeed:         42,
		VocabularySize:    1000,
		MinDocFreq:        2,
		ClusterEps:        0.3,
		ClusterMinSamples: 3,
	}
}

// Result summarizes one enrichment run.
type Result struct {
	RecordsProcessed int
	RecordsUpdated   int
	TopicsCreated    int
	ClustersFound    int
}

// Pipeline is the batch enrichment job.
type Pipeline struct {
	store   Store
	params  Params
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Pipeline.
func New(store Store, params Params, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{store: store, params: params, logger: logger, metrics: metrics}
}

// Run reads the full corpus, computes topic and cluster assignments, and
// writes them back. A single record's update failure is logged and skipped.
// The topics replacement happens after the per-record updates and is
// non-fatal to them.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	started := time.Now()
	defer func() {
		p.metrics.EnrichmentDuration.Observe(time.Since(started).Seconds())
	}()

	records, err := p.store.AllRecords(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("read records: %w", err)
	}
	if len(records) == 0 {
		p.logger.Info("no records to enrich")
		return Result{}, nil
	}
	p.logger.Info("enrichment started", "records", len(records))

	corpus := analytics.Vectorize(buildCorpus(records), analytics.VectorizerParams{
		MaxFeatures: p.params.VocabularySize,
		MinDocFreq:  p.params.MinDocFreq,
	})
	if len(corpus.Vocabulary) == 0 {
		// Degenerate corpus (too few records for the document-frequency
		// floor). Every document keeps the uniform topic distribution.
		p.logger.Warn("empty vocabulary, topic assignments degenerate", "records", len(records))
	}
	model := analytics.FitTopics(corpus, analytics.TopicModelParams{
		Topics:     p.params.TopicCount,
		Iterations: p.params.TopicIterations,
		Seed:       p.params.TopicSeed,
	})

	topicTerms := model.TopTerms(corpus, topicKeywordsDefined)
	topics := make([]domain.TopicDefinition, len(topicTerms))
	for z, terms := range topicTerms {
		topics[z] = domain.TopicDefinition{
			TopicID:  z,
			Keywords: terms,
			Name:     fmt.Sprintf("Topic_%d", z),
		}
	}

	clusters, clusterCount := p.clusterRecords(records)

	analysisDate := domain.Clock().Now().UTC()
	result := Result{
		RecordsProcessed: len(records),
		TopicsCreated:    len(topics),
		ClustersFound:    clusterCount,
	}

	for i, rec := range records {
		topic, confidence := model.Dominant(i)
		enrichment := domain.Enrichment{
			TopicID:         topic,
			TopicConfidence: confidence,
			TopicKeywords:   truncate(topicTerms[topic], topicKeywordsStored),
			ClusterID:       clusters[i],
			AnalysisDate:    analysisDate,
		}
		if err := p.store.ApplyEnrichment(ctx, rec.EventID, enrichment); err != nil {
			p.logger.Error("enrichment update failed, skipping record",
				"event_id", rec.EventID, "error", err)
			p.metrics.EnrichmentErrors.Inc()
			continue
		}
		result.RecordsUpdated++
		p.metrics.RecordsEnriched.Inc()
	}

	if err := p.store.ReplaceTopics(ctx, topics); err != nil {
		// The per-record updates above already landed; losing the topic
		// definitions is recoverable on the next run.
		p.logger.Error("replace topics failed", "error", err)
	}

	p.metrics.TopicsCreated.Set(float64(len(topics)))
	p.metrics.ClustersFound.Set(float64(clusterCount))
	p.logger.Info("enrichment finished",
		"records_updated", result.RecordsUpdated,
		"topics", len(topics),
		"clusters", clusterCount,
	)
	return result, nil
}

// clusterRecords builds the 4-dimensional feature matrix (latitude,
// longitude, years since epoch, severity), standardizes it, and runs DBSCAN.
// Records without a usable location are excluded from the clustering input
// and labeled noise in the output. Fewer than minClusterInput valid vectors
// skips clustering entirely.
func (p *Pipeline) clusterRecords(records []domain.DisasterRecord) (labels []int, clusters int) {
	labels = make([]int, len(records))
	for i := range labels {
		labels[i] = domain.ClusterNoise
	}

	var features [][]float64
	var valid []int
	epoch := time.Unix(0, 0).UTC()
	for i, rec := range records {
		if rec.Location.Type != "Point" {
			continue
		}
		years := rec.Date.Sub(epoch).Hours() / 24 / 365.25
		features = append(features, []float64{
			rec.Location.Lat(),
			rec.Location.Lon(),
			years,
			float64(rec.Severity),
		})
		valid = append(valid, i)
	}

	if len(features) < minClusterInput {
		p.logger.Warn("not enough records for clustering",
			"valid", len(features), "required", minClusterInput)
		return labels, 0
	}

	assignments := analytics.DBSCAN(analytics.Standardize(features), p.params.ClusterEps, p.params.ClusterMinSamples)
	seen := map[int]bool{}
	for k, label := range assignments {
		labels[valid[k]] = label
		if label != analytics.Noise {
			seen[label] = true
		}
	}
	return labels, len(seen)
}

func truncate(terms []string, n int) []string {
	if len(terms) <= n {
		return terms
	}
	return terms[:n]
}
