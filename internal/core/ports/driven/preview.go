package driven

import (
	"context"

	"github.com/custodia-labs/kycup/internal/core/domain"
)

// PreviewStore owns preview resources for compressed images.
// Every handle returned by Create must be released exactly once.
type PreviewStore interface {
	// Create stores a preview of file and returns its handle.
	Create(ctx context.Context, slot domain.Slot, file domain.ImageFile) (domain.PreviewHandle, error)

	// Release frees the preview. Releasing an unknown handle returns domain.ErrNotFound.
	Release(handle domain.PreviewHandle) error
}
