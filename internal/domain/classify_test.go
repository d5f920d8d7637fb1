package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_CodePrecedence(t *testing.T) {
	rules := DefaultRules()

	t.Run("event code wins regardless of actor text", func(t *testing.T) {
		got := Classify(rules, "0231", "", nil, "MASSIVE FLOODING EVENT", "")
		assert.Equal(t, "earthquake", got)
	})

	t.Run("base code used when event code unknown", func(t *testing.T) {
		got := Classify(rules, "0999", "0232", nil, "", "")
		assert.Equal(t, "flood", got)
	})

	t.Run("man-made codes", func(t *testing.T) {
		assert.Equal(t, "terrorist_attack", Classify(rules, "180", "", nil, "", ""))
		assert.Equal(t, "armed_conflict", Classify(rules, "190", "", nil, "", ""))
		assert.Equal(t, "nuclear_incident", Classify(rules, "1284", "", nil, "", ""))
	})
}

func TestClassify_KeywordPrecedence(t *testing.T) {
	rules := DefaultRules()

	cases := []struct {
		name   string
		actor1 string
		actor2 string
		want   string
	}{
		{"flood keyword", "MASSIVE FLOODING EVENT", "", "flood"},
		{"quake synonym", "QUAKE SURVIVORS", "", "earthquake"},
		{"wildfire", "WILDFIRE CREWS", "", "wildfire"},
		{"typhoon maps to storm", "", "TYPHOON SHELTER", "storm"},
		{"blast maps to explosion", "BLAST SITE", "", "explosion"},
		{"crash maps to accident", "TRAIN CRASH VICTIMS", "", "accident"},
		{"earthquake beats flood when both present", "EARTHQUAKE AND FLOOD", "", "earthquake"},
		{"case insensitive", "flood victims", "", "flood"},
		{"no match falls to other", "TRADE MINISTRY", "FARMERS", "other"},
		{"empty input falls to other", "", "", "other"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(rules, "010", "010", nil, tc.actor1, tc.actor2)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSeverity_Formula(t *testing.T) {
	th := DefaultRules().Severity

	cases := []struct {
		name      string
		goldstein float64
		mentions  int
		tone      float64
		want      int
	}{
		{"all maxed clamps to 5", -9, 120, -6, 5},
		{"benign floor is 1", 5, 0, 5, 1},
		{"goldstein catastrophic alone", -8, 0, 0, 3},
		{"goldstein severe alone", -5, 0, 0, 2},
		{"goldstein elevated alone", -2, 0, 0, 1},
		{"just above elevated threshold", -1.9, 0, 0, 1},
		{"mentions high alone", 0, 100, 0, 2},
		{"mentions elevated alone", 0, 50, 0, 1},
		{"tone alone", 0, 0, -5, 1},
		{"mid combination", -5, 50, -5, 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Severity(th, tc.goldstein, tc.mentions, tc.tone))
		})
	}
}

func TestSeverity_BoundsAndMonotonicity(t *testing.T) {
	th := DefaultRules().Severity
	goldsteins := []float64{-10, -8, -5, -2, 0, 10}
	mentions := []int{0, 50, 100, 500}
	tones := []float64{-10, -5, 0, 10}

	for _, g := range goldsteins {
		for _, m := range mentions {
			for _, tn := range tones {
				s := Severity(th, g, m, tn)
				assert.GreaterOrEqual(t, s, 1)
				assert.LessOrEqual(t, s, 5)
			}
		}
	}

	// Monotone in each signal individually.
	for i := 1; i < len(goldsteins); i++ {
		assert.GreaterOrEqual(t,
			Severity(th, goldsteins[i-1], 50, 0),
			Severity(th, goldsteins[i], 50, 0))
	}
	for i := 1; i < len(mentions); i++ {
		assert.LessOrEqual(t,
			Severity(th, -5, mentions[i-1], 0),
			Severity(th, -5, mentions[i], 0))
	}
	for i := 1; i < len(tones); i++ {
		assert.GreaterOrEqual(t,
			Severity(th, -5, 50, tones[i-1]),
			Severity(th, -5, 50, tones[i]))
	}
}

func TestExtractKeywords(t *testing.T) {
	keywords := DefaultRules().Keywords

	t.Run("matches across both actors", func(t *testing.T) {
		got := ExtractKeywords(keywords, "EARTHQUAKE RELIEF", "Flood Response Team")
		assert.Equal(t, []string{"earthquake", "flood"}, got)
	})

	t.Run("substring match", func(t *testing.T) {
		got := ExtractKeywords(keywords, "WILDFIRE CREW", "")
		assert.Equal(t, []string{"fire"}, got)
	})

	t.Run("no matches", func(t *testing.T) {
		assert.Empty(t, ExtractKeywords(keywords, "TRADE MINISTRY", ""))
	})
}
