package enrich

import (
	"strings"

	"github.com/disasterwatch/gdelt-disaster-etl/internal/domain"
)

// fallbackDocument keeps topic modeling from ever seeing an empty document.
const fallbackDocument = "unknown disaster"

// documentText builds the topic-model input for one record: actors, location
// name, disaster type, and matched keywords, lower-cased, with empty and
// placeholder parts dropped.
func documentText(rec domain.DisasterRecord) string {
	parts := []string{
		rec.Actor1,
		rec.Actor2,
		rec.LocationName,
		rec.DisasterType,
		strings.Join(rec.Keywords, " "),
	}

	var kept []string
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" || strings.EqualFold(part, "none") {
			continue
		}
		kept = append(kept, part)
	}
	if len(kept) == 0 {
		return fallbackDocument
	}
	return strings.ToLower(strings.Join(kept, " "))
}

// buildCorpus returns one document per record, in record order.
func buildCorpus(records []domain.DisasterRecord) []string {
	docs := make([]string, len(records))
	for i, rec := range records {
		docs[i] = documentText(rec)
	}
	return docs
}
