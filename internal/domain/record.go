package domain

import "time"

// RawEventRow is one parsed line from the GDELT daily export, limited to the
// columns this pipeline consumes. All fields are kept as raw strings; parsing
// and validation happen in TransformRow. Rows are transient and discarded
// after transformation.
type RawEventRow struct {
	EventID    string
	Date       string // YYYYMMDD
	Actor1Name string
	Actor2Name string
	EventCode  string
	BaseCode   string
	RootCode   string
	Goldstein  string
	Mentions   string
	Sources    string
	Articles   string
	Tone       string

	Actor1GeoName    string
	Actor1GeoCountry string
	Actor1GeoLat     string
	Actor1GeoLon     string

	ActionGeoName    string
	ActionGeoCountry string
	ActionGeoLat     string
	ActionGeoLon     string

	SourceURL string
}

// GeoPoint is a GeoJSON point. Coordinates are stored in (lon, lat) order to
// match the 2dsphere index convention.
type GeoPoint struct {
	Type        string     `bson:"type" json:"type"`
	Coordinates [2]float64 `bson:"coordinates" json:"coordinates"`
}

// NewGeoPoint builds a GeoJSON point from a latitude/longitude pair.
func NewGeoPoint(lat, lon float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: [2]float64{lon, lat}}
}

// Lat returns the latitude component.
func (p GeoPoint) Lat() float64 { return p.Coordinates[1] }

// Lon returns the longitude component.
func (p GeoPoint) Lon() float64 { return p.Coordinates[0] }

// DisasterRecord is the canonical persisted entity, keyed by EventID.
type DisasterRecord struct {
	EventID      string    `bson:"event_id" json:"event_id"`
	Date         time.Time `bson:"date" json:"date"`
	Actor1       string    `bson:"actor1" json:"actor1,omitempty"`
	Actor2       string    `bson:"actor2" json:"actor2,omitempty"`
	EventCode    string    `bson:"event_code" json:"event_code"`
	BaseCode     string    `bson:"base_code" json:"base_code"`
	RootCode     string    `bson:"root_code" json:"root_code"`
	Goldstein    float64   `bson:"goldstein" json:"goldstein"`
	Tone         float64   `bson:"tone" json:"tone"`
	Mentions     int       `bson:"mentions" json:"mentions"`
	Articles     int       `bson:"articles" json:"articles"`
	Sources      int       `bson:"sources" json:"sources"`
	Location     GeoPoint  `bson:"location" json:"location"`
	CountryCode  string    `bson:"country_code" json:"country_code,omitempty"`
	LocationName string    `bson:"location_name" json:"location_name,omitempty"`
	SourceURL    string    `bson:"source_url" json:"source_url,omitempty"`
	DisasterType string    `bson:"disaster_type" json:"disaster_type"`
	Severity     int       `bson:"severity" json:"severity"`
	Keywords     []string  `bson:"keywords" json:"keywords"`

	ProcessedDate time.Time `bson:"processed_date" json:"processed_date"`

	// Enrichment fields, null until the enrichment pipeline runs.
	// ClusterID is null for noise points (the clustering sentinel -1 is
	// never persisted).
	TopicID         *int       `bson:"topic_id,omitempty" json:"topic_id,omitempty"`
	TopicConfidence *float64   `bson:"topic_confidence,omitempty" json:"topic_confidence,omitempty"`
	TopicKeywords   []string   `bson:"topic_keywords,omitempty" json:"topic_keywords,omitempty"`
	ClusterID       *int       `bson:"cluster_id,omitempty" json:"cluster_id,omitempty"`
	AnalysisDate    *time.Time `bson:"analysis_date,omitempty" json:"analysis_date,omitempty"`
}

// ClusterNoise is the in-memory sentinel for records outside every
// spatial-temporal cluster. The store maps it to a null cluster_id.
const ClusterNoise = -1

// Enrichment holds the derived fields written back by the enrichment
// pipeline for a single record.
type Enrichment struct {
	TopicID         int
	TopicConfidence float64
	TopicKeywords   []string
	ClusterID       int // ClusterNoise for unclustered records
	AnalysisDate    time.Time
}

// TopicDefinition describes one discovered topic. The topics collection is
// replaced wholesale on every enrichment run; topics are not versioned.
type TopicDefinition struct {
	TopicID  int      `bson:"topic_id" json:"topic_id"`
	Keywords []string `bson:"keywords" json:"keywords"`
	Name     string   `bson:"name" json:"name"`
}

// IngestReport summarizes one orchestrator run over a date range.
type IngestReport struct {
	RunID          string    `bson:"run_id" json:"run_id"`
	StartDate      time.Time `bson:"start_date" json:"start_date"`
	EndDate        time.Time `bson:"end_date" json:"end_date"`
	StartedAt      time.Time `bson:"started_at" json:"started_at"`
	FinishedAt     time.Time `bson:"finished_at" json:"finished_at"`
	DaysProcessed  int       `bson:"days_processed" json:"days_processed"`
	DaysFailed     int       `bson:"days_failed" json:"days_failed"`
	RowsFetched    int       `bson:"rows_fetched" json:"rows_fetched"`
	RowsSkipped    int       `bson:"rows_skipped" json:"rows_skipped"`
	RecordsWritten int       `bson:"records_written" json:"records_written"`
}
