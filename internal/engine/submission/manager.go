// internal/engine/submission/manager.go
package submission

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"compliance-copilot/internal/common/errors"
	"compliance-copilot/internal/common/logger"
	"compliance-copilot/internal/common/metrics"
	"compliance-copilot/internal/engine/intent"
	"compliance-copilot/internal/engine/recipes"
	"compliance-copilot/internal/models"
)

// lockStripes bounds memory for per-submission serialization. Collisions
// only cost unnecessary serialization, never correctness.
const lockStripes = 64

// TurnResult is what a single ingested turn reports back to the workflow.
type TurnResult struct {
	SubmissionID       string        `json:"submissionId"`
	Stage              models.Stage  `json:"stage"`
	Intent             models.Intent `json:"intent"`
	RecipeID           string        `json:"recipeId,omitempty"`
	Confidence         float64       `json:"confidence"`
	MissingSlots       []string      `json:"missingSlots"`
	MissingSlotPrompts []string      `json:"missingSlotPrompts"`
	// IntentConflict is set when a later turn classified a different intent
	// after the submission left the collecting stage. Collected slots are
	// kept and the conflicting classification is discarded.
	IntentConflict bool `json:"intentConflict,omitempty"`
}

// Manager funnels every submission mutation through one place so the audit
// trail stays consistent. Turns against the same submission are serialized;
// different submissions proceed in parallel.
type Manager struct {
	store      Store
	catalog    *recipes.Catalog
	classifier *intent.Classifier
	log        logger.Logger
	locks      [lockStripes]sync.Mutex
}

func NewManager(store Store, catalog *recipes.Catalog, classifier *intent.Classifier, log logger.Logger) *Manager {
	return &Manager{
		store:      store,
		catalog:    catalog,
		classifier: classifier,
		log:        log,
	}
}

func (m *Manager) lockFor(id string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(id))
	return &m.locks[h.Sum32()%lockStripes]
}

// Get returns the current state of a submission.
func (m *Manager) Get(ctx context.Context, id string) (*models.Submission, error) {
	return m.store.Get(ctx, id)
}

// IngestTurn classifies one text turn and folds the result into the
// submission: recipe binding on first resolved intent, last-write-wins slot
// merge, and stage advance to ready when nothing required is missing. All
// changes are computed on a clone and committed only if the context is still
// live, so a cancelled call leaves prior state untouched.
func (m *Manager) IngestTurn(ctx context.Context, submissionID, userID, text string) (*TurnResult, error) {
	lock := m.lockFor(submissionID)
	lock.Lock()
	defer lock.Unlock()

	current, err := m.store.Get(ctx, submissionID)
	if err != nil {
		if stdErr, ok := err.(*errors.StandardError); !ok || stdErr.Code != errors.ErrCodeSubmissionNotFound {
			return nil, err
		}
		current = m.newSubmission(submissionID, userID)
	}

	next := current.Clone()
	classification := m.classifier.Classify(ctx, text)

	result := &TurnResult{
		SubmissionID: next.ID,
		Intent:       classification.Intent,
		Confidence:   classification.Confidence,
	}

	if classification.Intent != models.IntentNone {
		if err := m.applyIntent(next, classification, result); err != nil {
			return nil, err
		}
	}

	if len(classification.Slots) > 0 {
		next.Slots = next.Slots.Merge(classification.Slots)
		m.audit(next, "slots_merged", fmt.Sprintf("merged %d slot(s)", len(classification.Slots)))
	}

	m.recomputeStage(next, result)

	// Commit only when the caller is still waiting. An abandoned call must
	// not leave partial slot merges behind.
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	next.UpdatedAt = time.Now().UTC()
	if err := m.store.Put(ctx, next); err != nil {
		return nil, err
	}

	result.Stage = next.Stage
	result.RecipeID = next.RecipeID
	return result, nil
}

func (m *Manager) newSubmission(id, userID string) *models.Submission {
	if id == "" {
		id = uuid.NewString()
	}
	now := time.Now().UTC()
	sub := &models.Submission{
		ID:        id,
		UserID:    userID,
		Slots:     models.Slots{},
		Stage:     models.StageCollecting,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.audit(sub, "created", "")
	return sub
}

// applyIntent binds or re-binds the recipe for a resolved intent.
// Re-classification is allowed only while collecting; a conflicting intent
// on a later stage is recorded and discarded, keeping collected slots.
func (m *Manager) applyIntent(next *models.Submission, classification models.Classification, result *TurnResult) error {
	if next.Intent == classification.Intent {
		return nil
	}

	if next.Intent != models.IntentNone && next.Stage != models.StageCollecting {
		result.IntentConflict = true
		m.audit(next, "intent_conflict_rejected",
			fmt.Sprintf("kept %s, rejected %s at stage %s", next.Intent, classification.Intent, next.Stage))
		return nil
	}

	recipe, ok := m.catalog.Lookup(classification.Intent)
	if !ok {
		// Known intent without a recipe: no workflow selected yet.
		m.log.Debug("No recipe bound for intent", map[string]interface{}{
			"intent": string(classification.Intent),
		})
		return nil
	}

	next.Intent = classification.Intent
	next.RecipeID = recipe.ID
	m.audit(next, "recipe_bound", recipe.ID)
	return nil
}

// recomputeStage advances collecting → ready when every required slot is
// present. Stages never regress; submissions already past ready only get
// their missing list refreshed (always empty by construction).
func (m *Manager) recomputeStage(next *models.Submission, result *TurnResult) {
	result.MissingSlots = []string{}
	result.MissingSlotPrompts = []string{}

	if next.RecipeID == "" {
		return
	}
	recipe, ok := m.catalog.Get(next.RecipeID)
	if !ok {
		return
	}

	missing := recipe.MissingSlots(next.Slots)
	result.MissingSlots = missing
	for _, name := range missing {
		result.MissingSlotPrompts = append(result.MissingSlotPrompts, m.catalog.Question(name))
	}

	if len(missing) == 0 && next.Stage == models.StageCollecting {
		m.transition(next, models.StageReady, "all required slots present")
	}
}

// MarkMapped records that a field assignment was computed. Requires every
// required slot to be present.
func (m *Manager) MarkMapped(ctx context.Context, submissionID string) (*models.Submission, error) {
	return m.advance(ctx, submissionID, models.StageMapped, models.StageReady, "markMapped")
}

// MarkPackaged records the external document generation acknowledgement.
func (m *Manager) MarkPackaged(ctx context.Context, submissionID string) (*models.Submission, error) {
	return m.advance(ctx, submissionID, models.StagePackaged, models.StageMapped, "markPackaged")
}

// MarkDelivered records the external delivery acknowledgement.
func (m *Manager) MarkDelivered(ctx context.Context, submissionID string) (*models.Submission, error) {
	return m.advance(ctx, submissionID, models.StageDelivered, models.StagePackaged, "markDelivered")
}

func (m *Manager) advance(ctx context.Context, submissionID string, target, requires models.Stage, operation string) (*models.Submission, error) {
	lock := m.lockFor(submissionID)
	lock.Lock()
	defer lock.Unlock()

	current, err := m.store.Get(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	next := current.Clone()

	if next.Stage.Rank() >= target.Rank() {
		// Already there or past: advancing is idempotent, never regresses.
		return next, nil
	}

	if err := m.checkPrecondition(next, requires, operation); err != nil {
		return nil, err
	}

	m.transition(next, target, "")
	next.UpdatedAt = time.Now().UTC()

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err := m.store.Put(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

func (m *Manager) checkPrecondition(sub *models.Submission, requires models.Stage, operation string) error {
	if sub.Stage.Rank() >= requires.Rank() {
		return nil
	}

	detail := fmt.Sprintf("stage is %s, requires %s", sub.Stage, requires)
	if sub.RecipeID != "" {
		if recipe, ok := m.catalog.Get(sub.RecipeID); ok {
			if missing := recipe.MissingSlots(sub.Slots); len(missing) > 0 {
				detail = fmt.Sprintf("missing required slots: %s", strings.Join(missing, ", "))
			}
		}
	}
	return errors.NewPreconditionNotMetError(operation, detail)
}

func (m *Manager) transition(sub *models.Submission, to models.Stage, detail string) {
	from := sub.Stage
	sub.Stage = to
	m.audit(sub, "stage_advanced", detail)
	metrics.SubmissionStageTransitions.WithLabelValues(string(from), string(to)).Inc()
}

func (m *Manager) audit(sub *models.Submission, action, detail string) {
	sub.AuditTrail = append(sub.AuditTrail, models.AuditEntry{
		ID:        uuid.NewString(),
		Action:    action,
		Detail:    detail,
		Stage:     sub.Stage,
		Timestamp: time.Now().UTC(),
	})
}
