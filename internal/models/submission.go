// internal/models/submission.go
package models

import "time"

// Stage is the lifecycle stage of a submission. Stages only move forward.
type Stage string

const (
	StageCollecting Stage = "collecting"
	StageReady      Stage = "ready"
	StageMapped     Stage = "mapped"
	StagePackaged   Stage = "packaged"
	StageDelivered  Stage = "delivered"
)

var stageOrder = map[Stage]int{
	StageCollecting: 0,
	StageReady:      1,
	StageMapped:     2,
	StagePackaged:   3,
	StageDelivered:  4,
}

// Rank returns the stage's position in the lifecycle, or -1 for an
// unrecognized stage.
func (s Stage) Rank() int {
	rank, ok := stageOrder[s]
	if !ok {
		return -1
	}
	return rank
}

// AuditEntry records one state transition on a submission. The audit trail
// is append-only and is never rewritten.
type AuditEntry struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail,omitempty"`
	Stage     Stage     `json:"stage"`
	Timestamp time.Time `json:"timestamp"`
}

// Submission accumulates one conversation's progress toward a recipe.
type Submission struct {
	ID         string       `json:"id"`
	UserID     string       `json:"userId,omitempty"`
	RecipeID   string       `json:"recipeId,omitempty"`
	Intent     Intent       `json:"intent,omitempty"`
	Slots      Slots        `json:"slots"`
	Stage      Stage        `json:"stage"`
	AuditTrail []AuditEntry `json:"auditTrail"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

// Clone returns a deep copy. The manager mutates copies and commits them
// only after a turn completes, so a cancelled call leaves prior state intact.
func (s *Submission) Clone() *Submission {
	c := *s
	c.Slots = make(Slots, len(s.Slots))
	for k, v := range s.Slots {
		c.Slots[k] = v
	}
	c.AuditTrail = make([]AuditEntry, len(s.AuditTrail))
	copy(c.AuditTrail, s.AuditTrail)
	return &c
}
