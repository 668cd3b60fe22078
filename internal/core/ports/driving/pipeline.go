package driving

import (
	"context"

	"github.com/custodia-labs/kycup/internal/core/domain"
)

// DocumentUploadPipeline validates, compresses and uploads the three KYC images.
type DocumentUploadPipeline interface {
	// SelectFile validates file and starts compressing it into slot.
	// Validation errors are returned immediately; compression runs in the background.
	SelectFile(ctx context.Context, slot domain.Slot, file domain.ImageFile) error

	// RemoveFile clears slot and releases its preview.
	RemoveFile(slot domain.Slot) error

	// SetDocumentType selects the document being submitted.
	SetDocumentType(docType domain.DocumentType) error

	// SetKycStatus records the account status supplied by the caller.
	SetKycStatus(status domain.KycStatus)

	// RefreshStatus pulls the account status from the configured provider.
	RefreshStatus(ctx context.Context) (domain.KycStatus, error)

	// AwaitCompression blocks until no slot is compressing.
	AwaitCompression(ctx context.Context) error

	// Submit starts an upload of the three compressed slots.
	Submit(ctx context.Context) (UploadTask, error)

	// Retry re-runs a failed upload with the same files.
	Retry(ctx context.Context) (UploadTask, error)

	// Snapshot returns a consistent copy of the pipeline state.
	Snapshot() domain.PipelineSnapshot

	// Subscribe registers fn to receive a snapshot after every state change.
	// Snapshots arrive in state order. fn must not change pipeline state.
	// The returned function removes the subscription.
	Subscribe(fn func(domain.PipelineSnapshot)) (unsubscribe func())

	// Reset returns a succeeded or failed pipeline to idle with empty slots.
	Reset() error

	// Close releases every preview and stops pending timers.
	Close() error
}

// UploadTask is one in-flight upload attempt.
type UploadTask interface {
	// Attempt returns the 1-based attempt number.
	Attempt() int

	// Progress streams non-decreasing percentages in [0, 100].
	// The channel is closed when the attempt finishes.
	Progress() <-chan int

	// Done is closed when the attempt reaches a terminal outcome.
	Done() <-chan struct{}

	// Wait blocks until the attempt finishes and returns its record and classified error.
	Wait(ctx context.Context) (domain.SubmissionAttempt, error)
}
