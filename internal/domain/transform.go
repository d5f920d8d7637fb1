package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// geoCandidate is one possible location source for a row. Candidates are
// tried in priority order and each is validated before acceptance; a present
// but out-of-range candidate does not block a later valid one.
type geoCandidate struct {
	lat, lon      string
	name, country string
}

// TransformRow validates and normalizes a raw feed row into a canonical
// DisasterRecord. It rejects the row with ErrInvalidDate when the YYYYMMDD
// date does not parse and with ErrInvalidLocation when no candidate
// geography yields an in-range coordinate pair. Numeric fields degrade to
// zero instead of rejecting. The transform is pure apart from the
// processed_date stamp taken from the package clock.
func TransformRow(rules ClassifierRules, row RawEventRow) (DisasterRecord, error) {
	date, err := time.Parse("20060102", strings.TrimSpace(row.Date))
	if err != nil {
		return DisasterRecord{}, fmt.Errorf("row %s: date %q: %w", row.EventID, row.Date, ErrInvalidDate)
	}

	candidates := []geoCandidate{
		{lat: row.ActionGeoLat, lon: row.ActionGeoLon, name: row.ActionGeoName, country: row.ActionGeoCountry},
		{lat: row.Actor1GeoLat, lon: row.Actor1GeoLon, name: row.Actor1GeoName, country: row.Actor1GeoCountry},
	}
	lat, lon, ok := resolveLocation(candidates)
	if !ok {
		return DisasterRecord{}, fmt.Errorf("row %s: %w", row.EventID, ErrInvalidLocation)
	}

	keywords := ExtractKeywords(rules.Keywords, row.Actor1Name, row.Actor2Name)
	goldstein := parseFloatOrZero(row.Goldstein)
	mentions := parseCountOrZero(row.Mentions)
	tone := parseFloatOrZero(row.Tone)

	return DisasterRecord{
		EventID:       strings.TrimSpace(row.EventID),
		Date:          date,
		Actor1:        strings.TrimSpace(row.Actor1Name),
		Actor2:        strings.TrimSpace(row.Actor2Name),
		EventCode:     strings.TrimSpace(row.EventCode),
		BaseCode:      strings.TrimSpace(row.BaseCode),
		RootCode:      strings.TrimSpace(row.RootCode),
		Goldstein:     goldstein,
		Tone:          tone,
		Mentions:      mentions,
		Articles:      parseCountOrZero(row.Articles),
		Sources:       parseCountOrZero(row.Sources),
		Location:      NewGeoPoint(lat, lon),
		CountryCode:   firstNonEmpty(row.ActionGeoCountry, row.Actor1GeoCountry),
		LocationName:  firstNonEmpty(row.ActionGeoName, row.Actor1GeoName),
		SourceURL:     strings.TrimSpace(row.SourceURL),
		DisasterType:  Classify(rules, strings.TrimSpace(row.EventCode), strings.TrimSpace(row.BaseCode), keywords, row.Actor1Name, row.Actor2Name),
		Severity:      Severity(rules.Severity, goldstein, mentions, tone),
		Keywords:      keywords,
		ProcessedDate: clock.Now().UTC(),
	}, nil
}

// resolveLocation returns the first candidate whose coordinates parse and
// fall inside the valid WGS-84 range.
func resolveLocation(candidates []geoCandidate) (lat, lon float64, ok bool) {
	for _, c := range candidates {
		latStr := strings.TrimSpace(c.lat)
		lonStr := strings.TrimSpace(c.lon)
		if latStr == "" || lonStr == "" {
			continue
		}
		lat, errLat := strconv.ParseFloat(latStr, 64)
		lon, errLon := strconv.ParseFloat(lonStr, 64)
		if errLat != nil || errLon != nil {
			continue
		}
		if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			continue
		}
		return lat, lon, true
	}
	return 0, 0, false
}

// parseFloatOrZero parses a string as float64, returning 0 on failure.
func parseFloatOrZero(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// parseCountOrZero parses a non-negative integer, returning 0 on failure or
// for negative values.
func parseCountOrZero(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
