// internal/engine/intent/matcher.go

// Package intent turns free-form user text into an intent with extracted
// slots. The lexical matcher is the always-available deterministic base; the
// classifier optionally refines it through the reasoning capability.
package intent

import (
	"strings"

	"compliance-copilot/internal/models"
)

// Match classifies text against the ordered lexical rule set. It is a pure
// function: no match is a normal outcome (empty intent, confidence zero),
// never an error.
func Match(text string) models.Classification {
	lowered := strings.ToLower(text)

	for _, r := range rules {
		if !matchesAny(lowered, r.keywords) {
			continue
		}

		slots := models.Slots{}
		if r.intent == models.IntentEnergyAudit {
			if kwh, ok := extractKWh(text); ok {
				slots["kWh"] = kwh
			}
			if city, ok := extractCity(text); ok {
				slots["city"] = city
			}
		}

		return models.Classification{
			Intent:     r.intent,
			Slots:      slots,
			Confidence: r.confidence,
			Source:     "lexical",
		}
	}

	return models.Classification{
		Intent:     models.IntentNone,
		Slots:      models.Slots{},
		Confidence: 0,
		Source:     "lexical",
	}
}

func matchesAny(loweredText string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(loweredText, kw) {
			return true
		}
	}
	return false
}
