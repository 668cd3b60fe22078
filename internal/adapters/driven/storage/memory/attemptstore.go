package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/kycup/internal/core/domain"
	"github.com/custodia-labs/kycup/internal/core/ports/driven"
)

// Ensure AttemptStore implements the interface.
var _ driven.AttemptStore = (*AttemptStore)(nil)

// AttemptStore is an in-memory implementation of driven.AttemptStore.
type AttemptStore struct {
	mu       sync.RWMutex
	attempts map[string]domain.SubmissionAttempt
}

// NewAttemptStore creates a new in-memory attempt store.
func NewAttemptStore() *AttemptStore {
	return &AttemptStore{
		attempts: make(map[string]domain.SubmissionAttempt),
	}
}

// Save stores or updates an attempt.
func (s *AttemptStore) Save(_ context.Context, attempt domain.SubmissionAttempt) error {
	if attempt.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[attempt.ID] = attempt
	return nil
}

// Get retrieves an attempt by ID.
func (s *AttemptStore) Get(_ context.Context, id string) (*domain.SubmissionAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	attempt, ok := s.attempts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &attempt, nil
}

// List returns attempts, most recent first.
func (s *AttemptStore) List(_ context.Context, limit int) ([]domain.SubmissionAttempt, error) {
	s.mu.RLock()
	result := make([]domain.SubmissionAttempt, 0, len(s.attempts))
	for _, a := range s.attempts {
		result = append(result, a)
	}
	s.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].StartedAt.Equal(result[j].StartedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].StartedAt.After(result[j].StartedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Prune keeps the most recent keep attempts.
func (s *AttemptStore) Prune(ctx context.Context, keep int) (int, error) {
	if keep < 0 {
		return 0, domain.ErrInvalidInput
	}
	ordered, _ := s.List(ctx, 0)
	if len(ordered) <= keep {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range ordered[keep:] {
		delete(s.attempts, a.ID)
	}
	return len(ordered) - keep, nil
}
