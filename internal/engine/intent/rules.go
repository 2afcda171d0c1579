// internal/engine/intent/rules.go
package intent

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"compliance-copilot/internal/models"
)

// rule maps a keyword set to an intent with a fixed, hand-tuned confidence.
// Rules are evaluated in declaration order; the first match wins.
type rule struct {
	intent     models.Intent
	keywords   []string
	confidence float64
}

var rules = []rule{
	{
		intent:     models.IntentEnergyAudit,
		keywords:   []string{"energy", "audit", "consumption", "kwh", "kilowatt", "csrd"},
		confidence: 0.85,
	},
	{
		intent:     models.IntentProcessingRecord,
		keywords:   []string{"gdpr", "article 30", "art. 30", "data protection", "record of processing"},
		confidence: 0.90,
	},
	{
		intent:     models.IntentAIRiskAssessment,
		keywords:   []string{"ai act", "ai risk", "artificial intelligence act", "high-risk ai"},
		confidence: 0.88,
	},
	{
		intent:     models.IntentEnergyOptimization,
		keywords:   []string{"optimize", "reduce cost", "save energy", "load shift"},
		confidence: 0.82,
	},
}

var kwhPattern = regexp.MustCompile(`(?i)(\d+[.,]?\d*)\s*(kwh|kilowatt)`)

// extractKWh pulls a consumption quantity paired with a kWh unit hint.
func extractKWh(text string) (float64, bool) {
	m := kwhPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	normalized := strings.ReplaceAll(m[1], ",", ".")
	value, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// locationCues are the tokens after which a capitalized word is read as a
// place name.
var locationCues = map[string]bool{
	"in":        true,
	"from":      true,
	"location:": true,
}

var trimPunct = strings.NewReplacer(",", "", ".", "", "!", "", "?", "", ";", "", ":", "")

// extractCity applies the capitalized-token heuristic: the first capitalized
// word following a location cue is taken as the city.
func extractCity(text string) (string, bool) {
	tokens := strings.Fields(text)
	for i := 0; i < len(tokens)-1; i++ {
		cue := strings.ToLower(tokens[i])
		if !locationCues[cue] {
			continue
		}
		candidate := trimPunct.Replace(tokens[i+1])
		if candidate == "" {
			continue
		}
		first, _ := utf8.DecodeRuneInString(candidate)
		if unicode.IsUpper(first) {
			return candidate, true
		}
	}
	return "", false
}
