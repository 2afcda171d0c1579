// internal/engine/submission/store.go

// Package submission implements the per-conversation state machine: slot
// accumulation across turns, recipe binding, lifecycle stages, and the
// append-only audit trail.
package submission

import (
	"context"
	"sync"

	"compliance-copilot/internal/common/errors"
	"compliance-copilot/internal/models"
)

// Store persists submissions. Implementations must return a
// SUBMISSION_NOT_FOUND StandardError for unknown identifiers.
type Store interface {
	Get(ctx context.Context, id string) (*models.Submission, error)
	Put(ctx context.Context, sub *models.Submission) error
	Delete(ctx context.Context, id string) error
}

// MemoryStore keeps submissions in process memory. Used in tests and
// single-node deployments without Redis.
type MemoryStore struct {
	mu   sync.RWMutex
	subs map[string]*models.Submission
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{subs: make(map[string]*models.Submission)}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*models.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.subs[id]
	if !ok {
		return nil, errors.NewSubmissionNotFoundError(id)
	}
	return sub.Clone(), nil
}

func (s *MemoryStore) Put(ctx context.Context, sub *models.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subs[sub.ID] = sub.Clone()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.subs, id)
	return nil
}
