// internal/models/intent.go
package models

// Intent identifies the compliance task a user is asking for. The set is
// closed: classification results outside this enumeration are discarded.
type Intent string

const (
	IntentEnergyAudit        Intent = "energy-audit"
	IntentProcessingRecord   Intent = "processing-record"
	IntentAIRiskAssessment   Intent = "ai-risk-assessment"
	IntentEnergyOptimization Intent = "energy-optimization"

	// IntentNone marks text that matched no configured intent. It is a
	// normal classification outcome, not an error.
	IntentNone Intent = ""
)

// KnownIntents lists every configured intent in declaration order.
var KnownIntents = []Intent{
	IntentEnergyAudit,
	IntentProcessingRecord,
	IntentAIRiskAssessment,
	IntentEnergyOptimization,
}

// IsKnown reports whether the intent belongs to the closed enumeration.
func (i Intent) IsKnown() bool {
	for _, known := range KnownIntents {
		if i == known {
			return true
		}
	}
	return false
}

// Slots holds named, typed values extracted from user input or looked up
// from a stored profile. Keys collide last-write-wins.
type Slots map[string]interface{}

// Merge copies every entry of other into a new Slots, overwriting existing
// names. Neither receiver nor argument is mutated.
func (s Slots) Merge(other Slots) Slots {
	merged := make(Slots, len(s)+len(other))
	for k, v := range s {
		merged[k] = v
	}
	for k, v := range other {
		merged[k] = v
	}
	return merged
}

// Classification is the result of intent detection for a single text turn.
type Classification struct {
	Intent     Intent  `json:"intent"`
	Slots      Slots   `json:"slots"`
	Confidence float64 `json:"confidence"`
	// Source records which path produced the result: "lexical" or "reasoner".
	Source string `json:"source"`
}
