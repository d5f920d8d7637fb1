package domain

import "strings"

// keywordRule maps a set of synonym substrings to a disaster type.
// The order of keywordRules is a contract: rules are evaluated top to bottom
// and the first match wins.
type keywordRule struct {
	terms []string
	class string
}

var keywordRules = []keywordRule{
	{terms: []string{"earthquake", "quake"}, class: "earthquake"},
	{terms: []string{"flood", "flooding"}, class: "flood"},
	{terms: []string{"fire", "wildfire"}, class: "wildfire"},
	{terms: []string{"storm", "hurricane", "typhoon", "cyclone"}, class: "storm"},
	{terms: []string{"explosion", "blast"}, class: "explosion"},
	{terms: []string{"accident", "crash"}, class: "accident"},
}

// Classify maps an event to a disaster type. Precedence: exact event code in
// the disaster-code table, then exact base code, then keyword synonyms over
// the actor text, then "other". Classification is total and deterministic.
func Classify(rules ClassifierRules, eventCode, baseCode string, keywords []string, actor1, actor2 string) string {
	if class, ok := rules.DisasterCodes[eventCode]; ok {
		return class
	}
	if class, ok := rules.DisasterCodes[baseCode]; ok {
		return class
	}

	text := strings.ToLower(strings.Join(append([]string{actor1, actor2}, keywords...), " "))
	for _, rule := range keywordRules {
		for _, term := range rule.terms {
			if strings.Contains(text, term) {
				return rule.class
			}
		}
	}
	return "other"
}

// Severity scores a disaster 1-5 from the Goldstein scale, the mention count,
// and the average tone. The score is additive over the rule thresholds and
// clamped to [1,5]; it is monotonically non-decreasing in -goldstein,
// mentions, and -tone.
func Severity(t SeverityThresholds, goldstein float64, mentions int, tone float64) int {
	score := 0

	switch {
	case goldstein <= t.GoldsteinCatastrophic:
		score += 3
	case goldstein <= t.GoldsteinSevere:
		score += 2
	case goldstein <= t.GoldsteinElevated:
		score++
	}

	switch {
	case mentions >= t.MentionsHigh:
		score += 2
	case mentions >= t.MentionsElevated:
		score++
	}

	if tone <= t.ToneNegative {
		score++
	}

	if score < 1 {
		return 1
	}
	if score > 5 {
		return 5
	}
	return score
}

// ExtractKeywords scans both actor names for the configured disaster
// keywords, case-insensitive substring match. The returned order follows the
// keyword list, not the actor text.
func ExtractKeywords(keywords []string, actor1, actor2 string) []string {
	text := strings.ToLower(actor1 + " " + actor2)
	var found []string
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			found = append(found, kw)
		}
	}
	return found
}
