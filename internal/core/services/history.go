package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/kycup/internal/core/domain"
	"github.com/custodia-labs/kycup/internal/core/ports/driven"
	"github.com/custodia-labs/kycup/internal/core/ports/driving"
)

// Ensure HistoryService implements the interface.
var _ driving.HistoryService = (*HistoryService)(nil)

// ErrHistoryUnavailable indicates no attempt store is configured.
var ErrHistoryUnavailable = errors.New("history store not configured")

// HistoryService exposes recorded submission attempts.
type HistoryService struct {
	store driven.AttemptStore
}

// NewHistoryService creates a new history service.
func NewHistoryService(store driven.AttemptStore) *HistoryService {
	return &HistoryService{store: store}
}

// List returns attempts, most recent first. limit <= 0 returns all.
func (s *HistoryService) List(ctx context.Context, limit int) ([]domain.SubmissionAttempt, error) {
	if s.store == nil {
		return nil, ErrHistoryUnavailable
	}
	attempts, err := s.store.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	return attempts, nil
}

// Get retrieves an attempt by ID.
func (s *HistoryService) Get(ctx context.Context, id string) (*domain.SubmissionAttempt, error) {
	if s.store == nil {
		return nil, ErrHistoryUnavailable
	}
	if id == "" {
		return nil, fmt.Errorf("%w: empty attempt id", domain.ErrInvalidInput)
	}
	attempt, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get attempt %s: %w", id, err)
	}
	return attempt, nil
}

// Prune keeps the most recent keep attempts.
func (s *HistoryService) Prune(ctx context.Context, keep int) (int, error) {
	if s.store == nil {
		return 0, ErrHistoryUnavailable
	}
	if keep < 0 {
		return 0, fmt.Errorf("%w: keep must not be negative", domain.ErrInvalidInput)
	}
	removed, err := s.store.Prune(ctx, keep)
	if err != nil {
		return 0, fmt.Errorf("prune attempts: %w", err)
	}
	return removed, nil
}
