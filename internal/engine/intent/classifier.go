// internal/engine/intent/classifier.go
package intent

import (
	"context"

	"compliance-copilot/internal/capability/reasoning"
	"compliance-copilot/internal/common/logger"
	"compliance-copilot/internal/common/metrics"
	"compliance-copilot/internal/models"
)

// Classifier wraps the lexical matcher with the optional reasoning
// capability. Any reasoner problem falls back to the lexical result; the
// caller never sees a classification failure.
type Classifier struct {
	reasoner reasoning.Reasoner
	log      logger.Logger
}

func NewClassifier(reasoner reasoning.Reasoner, log logger.Logger) *Classifier {
	return &Classifier{reasoner: reasoner, log: log}
}

// Classify returns the best classification for a text turn. The reasoner's
// reply is accepted only when its intent belongs to the closed enumeration;
// an accepted confidence replaces the lexical one outright.
func (c *Classifier) Classify(ctx context.Context, text string) models.Classification {
	lexical := Match(text)

	if !c.reasoner.Available() {
		c.record(lexical)
		return lexical
	}

	knownIntents := make([]string, len(models.KnownIntents))
	for i, it := range models.KnownIntents {
		knownIntents[i] = string(it)
	}

	reply, err := c.reasoner.ClassifyIntent(ctx, text, knownIntents)
	if err != nil {
		c.log.Warn("Reasoner unavailable, using lexical classification", map[string]interface{}{
			"error":  err.Error(),
			"intent": string(lexical.Intent),
		})
		c.record(lexical)
		return lexical
	}

	refined := models.Intent(reply.Intent)
	if !refined.IsKnown() {
		c.log.Debug("Reasoner returned out-of-catalog intent, discarded", map[string]interface{}{
			"reasonerIntent": reply.Intent,
		})
		c.record(lexical)
		return lexical
	}

	// Reasoner slots refine the lexical ones; lexical numeric extraction
	// stays authoritative on collision.
	slots := models.Slots(reply.Slots).Merge(lexical.Slots)

	result := models.Classification{
		Intent:     refined,
		Slots:      slots,
		Confidence: reply.Confidence,
		Source:     "reasoner",
	}
	c.record(result)
	return result
}

func (c *Classifier) record(result models.Classification) {
	intentLabel := string(result.Intent)
	if intentLabel == "" {
		intentLabel = "none"
	}
	metrics.IntentClassifications.WithLabelValues(result.Source, intentLabel).Inc()
}
