package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/disasterwatch/gdelt-disaster-etl/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	MongoURI      string
	MongoDatabase string

	FeedBaseURL  string
	FetchTimeout time.Duration

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// RulesPath optionally points at a YAML classifier-rules file. Empty
	// means the compiled-in canonical rules.
	RulesPath string

	// CronSchedule drives daemon mode: each tick ingests the previous UTC day.
	CronSchedule string

	// Optional Kafka sink publishing upserted records downstream.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string

	// Enrichment parameters.
	TopicCount        int
	TopicIterations   int
	TopicSeed         int64
	VocabularySize    int
	MinDocFreq        int
	ClusterEps        float64
	ClusterMinSamples int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	fetchTimeout, err := parseDuration("FETCH_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	kafkaBrokers := parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092"))
	kafkaEnabled := os.Getenv("KAFKA_ENABLED") == "true"

	clusterEps, err := parseFloat("CLUSTER_EPS", 0.3)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		MongoURI:      os.Getenv("MONGO_URI"),
		MongoDatabase: envOrDefault("MONGO_DATABASE", "gdelt"),

		FeedBaseURL:  envOrDefault("FEED_BASE_URL", "http://data.gdeltproject.org/events"),
		FetchTimeout: fetchTimeout,

		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		RulesPath:    os.Getenv("RULES_PATH"),
		CronSchedule: envOrDefault("CRON_SCHEDULE", "0 7 * * *"),

		KafkaEnabled: kafkaEnabled,
		KafkaBrokers: kafkaBrokers,
		KafkaTopic:   envOrDefault("KAFKA_TOPIC", "disaster-records"),

		TopicCount:        parseIntOrDefault("TOPIC_COUNT", 8),
		TopicIterations:   parseIntOrDefault("TOPIC_ITERATIONS", 10),
		TopicSeed:         int64(parseIntOrDefault("TOPIC_SEED", 42)),
		VocabularySize:    parseIntOrDefault("VOCABULARY_SIZE", 1000),
		MinDocFreq:        parseIntOrDefault("MIN_DOC_FREQ", 2),
		ClusterEps:        clusterEps,
		ClusterMinSamples: parseIntOrDefault("CLUSTER_MIN_SAMPLES", 3),
	}

	if cfg.MongoURI == "" {
		return nil, errors.New("MONGO_URI is required")
	}
	if cfg.FeedBaseURL == "" {
		return nil, errors.New("FEED_BASE_URL is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.TopicCount <= 0 || cfg.TopicIterations <= 0 {
		return nil, errors.New("TOPIC_COUNT and TOPIC_ITERATIONS must be positive")
	}
	if cfg.ClusterEps <= 0 || cfg.ClusterMinSamples <= 0 {
		return nil, errors.New("CLUSTER_EPS and CLUSTER_MIN_SAMPLES must be positive")
	}

	return cfg, nil
}

// rulesFile mirrors ClassifierRules with optional sections so a partial file
// can override one section while the others keep their canonical defaults.
type rulesFile struct {
	DisasterCodes map[string]string          `yaml:"disaster_codes"`
	Keywords      []string                   `yaml:"keywords"`
	Severity      *domain.SeverityThresholds `yaml:"severity"`
}

// LoadRules returns the classifier rules, overlaying the YAML file at path on
// the canonical defaults. An empty path yields the defaults unchanged. Each
// section present in the file replaces that section wholly.
func LoadRules(path string) (domain.ClassifierRules, error) {
	rules := domain.DefaultRules()
	if path == "" {
		return rules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.ClassifierRules{}, fmt.Errorf("read rules file: %w", err)
	}
	var file rulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return domain.ClassifierRules{}, fmt.Errorf("parse rules file %s: %w", path, err)
	}

	if file.DisasterCodes != nil {
		if len(file.DisasterCodes) == 0 {
			return domain.ClassifierRules{}, fmt.Errorf("rules file %s: disaster_codes must not be empty", path)
		}
		rules.DisasterCodes = file.DisasterCodes
	}
	if file.Keywords != nil {
		if len(file.Keywords) == 0 {
			return domain.ClassifierRules{}, fmt.Errorf("rules file %s: keywords must not be empty", path)
		}
		rules.Keywords = file.Keywords
	}
	if file.Severity != nil {
		rules.Severity = *file.Severity
	}
	return rules, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	raw := envOrDefault(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return d, nil
}

func parseIntOrDefault(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return fallback
}

func parseFloat(key string, fallback float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return v, nil
}

func parseBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
