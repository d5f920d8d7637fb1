// Package mongo implements the disaster store on MongoDB: records keyed by
// event_id with a 2dsphere location index, a wholesale-replaced topics
// collection, and ingest-run reports.
package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/disasterwatch/gdelt-disaster-etl/internal/domain"
)

// Store is the MongoDB-backed disaster store. It is opened once at process
// start, passed by handle to the pipelines, and closed on shutdown.
type Store struct {
	client  *mongo.Client
	records *mongo.Collection
	topics  *mongo.Collection
	runs    *mongo.Collection
	logger  *slog.Logger
}

// Connect opens a client for the given URI, verifies the connection with a
// ping, and returns a Store bound to the named database.
func Connect(ctx context.Context, uri, database string, logger *slog.Logger) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(30*time.Second).
		SetConnectTimeout(20*time.Second))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(database)
	return &Store{
		client:  client,
		records: db.Collection("disasters"),
		topics:  db.Collection("topics"),
		runs:    db.Collection("ingest_runs"),
		logger:  logger,
	}, nil
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes the read and write paths rely on:
// a unique index on event_id, a 2dsphere index on location, and ascending
// indexes on date, event_code, and disaster_type.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.records.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "event_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "location", Value: "2dsphere"}}},
		{Keys: bson.D{{Key: "date", Value: 1}}},
		{Keys: bson.D{{Key: "event_code", Value: 1}}},
		{Keys: bson.D{{Key: "disaster_type", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	return nil
}

// UpsertRecord writes a record keyed by event_id, replacing any existing
// document. Re-ingesting the same event updates it in place.
func (s *Store) UpsertRecord(ctx context.Context, rec domain.DisasterRecord) error {
	_, err := s.records.ReplaceOne(ctx,
		bson.M{"event_id": rec.EventID},
		rec,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert record %s: %w", rec.EventID, err)
	}
	return nil
}

// AllRecords returns every stored disaster record. The enrichment pipeline
// reads the full corpus; callers needing a window should use
// RecordsByDateRange instead.
func (s *Store) AllRecords(ctx context.Context) ([]domain.DisasterRecord, error) {
	cursor, err := s.records.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []domain.DisasterRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return records, nil
}

// RecordsByDateRange returns records with from <= date <= to, sorted by
// date ascending. This is the read contract used by the dashboard and
// report consumers.
func (s *Store) RecordsByDateRange(ctx context.Context, from, to time.Time) ([]domain.DisasterRecord, error) {
	filter := bson.M{"date": bson.M{"$gte": from, "$lte": to}}
	cursor, err := s.records.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find records by date range: %w", err)
	}
	defer cursor.Close(ctx)

	var records []domain.DisasterRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return records, nil
}

// ApplyEnrichment sets the derived topic and cluster fields on one record.
// The ClusterNoise sentinel is persisted as a null cluster_id.
func (s *Store) ApplyEnrichment(ctx context.Context, eventID string, e domain.Enrichment) error {
	var clusterID any
	if e.ClusterID != domain.ClusterNoise {
		clusterID = e.ClusterID
	}

	update := bson.M{"$set": bson.M{
		"topic_id":         e.TopicID,
		"topic_confidence": e.TopicConfidence,
		"topic_keywords":   e.TopicKeywords,
		"cluster_id":       clusterID,
		"analysis_date":    e.AnalysisDate,
	}}
	res, err := s.records.UpdateOne(ctx, bson.M{"event_id": eventID}, update)
	if err != nil {
		return fmt.Errorf("apply enrichment to %s: %w", eventID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("apply enrichment to %s: record not found", eventID)
	}
	return nil
}

// ReplaceTopics clears the topics collection and inserts the new set.
// Atomic from the caller's perspective: a failure between the two steps
// leaves at most an empty collection, never a mix of runs.
func (s *Store) ReplaceTopics(ctx context.Context, topics []domain.TopicDefinition) error {
	if _, err := s.topics.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("clear topics: %w", err)
	}
	if len(topics) == 0 {
		return nil
	}
	docs := make([]any, len(topics))
	for i, t := range topics {
		docs[i] = t
	}
	if _, err := s.topics.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert topics: %w", err)
	}
	return nil
}

// SaveIngestReport stores the end-of-run report. Best-effort from the
// orchestrator's perspective; callers log and continue on failure.
func (s *Store) SaveIngestReport(ctx context.Context, rep domain.IngestReport) error {
	if _, err := s.runs.InsertOne(ctx, rep); err != nil {
		return fmt.Errorf("save ingest report %s: %w", rep.RunID, err)
	}
	return nil
}
