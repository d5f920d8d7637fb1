package domain

// SeverityThresholds are the cut points of the additive severity formula.
// More negative Goldstein and tone, and higher mention counts, raise the
// score. See Severity for how they combine.
type SeverityThresholds struct {
	GoldsteinCatastrophic float64 `yaml:"goldstein_catastrophic"`
	GoldsteinSevere       float64 `yaml:"goldstein_severe"`
	GoldsteinElevated     float64 `yaml:"goldstein_elevated"`
	MentionsHigh          int     `yaml:"mentions_high"`
	MentionsElevated      int     `yaml:"mentions_elevated"`
	ToneNegative          float64 `yaml:"tone_negative"`
}

// ClassifierRules hold the externally injected classification inputs: the
// CAMEO disaster-code table, the actor keyword list, and the severity
// thresholds. Components receive them by value; nothing in the pipeline
// reads configuration directly.
type ClassifierRules struct {
	DisasterCodes map[string]string  `yaml:"disaster_codes"`
	Keywords      []string           `yaml:"keywords"`
	Severity      SeverityThresholds `yaml:"severity"`
}

// DefaultRules returns the canonical rule set: the GDELT CAMEO codes that map
// directly to disaster types, the actor-name pre-filter keywords, and the
// severity thresholds.
func DefaultRules() ClassifierRules {
	return ClassifierRules{
		DisasterCodes: map[string]string{
			// Natural disasters (CAMEO 023x appeal codes).
			"0231": "earthquake",
			"0232": "flood",
			"0233": "drought",
			"0234": "hurricane_typhoon",
			"0235": "wildfire",
			"0236": "volcanic_activity",
			"0237": "landslide",
			"0238": "tsunami",
			// Man-made disasters.
			"180":  "terrorist_attack",
			"190":  "armed_conflict",
			"200":  "explosion",
			"145":  "industrial_accident",
			"1283": "chemical_spill",
			"1284": "nuclear_incident",
		},
		Keywords: []string{
			"earthquake", "flood", "fire", "storm", "hurricane", "explosion",
		},
		Severity: SeverityThresholds{
			GoldsteinCatastrophic: -8,
			GoldsteinSevere:       -5,
			GoldsteinElevated:     -2,
			MentionsHigh:          100,
			MentionsElevated:      50,
			ToneNegative:          -5,
		},
	}
}
