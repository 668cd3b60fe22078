package driven

import (
	"context"

	"github.com/custodia-labs/kycup/internal/core/domain"
)

// AttemptStore persists submission attempts.
type AttemptStore interface {
	// Save stores or updates an attempt.
	Save(ctx context.Context, attempt domain.SubmissionAttempt) error

	// Get retrieves an attempt by ID.
	Get(ctx context.Context, id string) (*domain.SubmissionAttempt, error)

	// List returns attempts, most recent first. limit <= 0 means no limit.
	List(ctx context.Context, limit int) ([]domain.SubmissionAttempt, error)

	// Prune keeps the most recent keep attempts and returns how many were removed.
	Prune(ctx context.Context, keep int) (int, error)
}
