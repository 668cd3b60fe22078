package driving

import (
	"context"

	"github.com/custodia-labs/kycup/internal/core/domain"
)

// HistoryService exposes recorded submission attempts.
type HistoryService interface {
	// List returns attempts, most recent first.
	List(ctx context.Context, limit int) ([]domain.SubmissionAttempt, error)

	// Get retrieves an attempt by ID.
	Get(ctx context.Context, id string) (*domain.SubmissionAttempt, error)

	// Prune keeps the most recent keep attempts and returns how many were removed.
	Prune(ctx context.Context, keep int) (int, error)
}
