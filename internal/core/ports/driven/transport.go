package driven

import (
	"context"

	"github.com/custodia-labs/kycup/internal/core/domain"
)

// UploadTransport sends one multipart submission to the KYC endpoint.
type UploadTransport interface {
	// Upload sends req and returns the raw response.
	// An error means no response was received; a non-200 status is not an error.
	// progress is called with non-decreasing byte counts while the body is sent.
	Upload(ctx context.Context, req domain.UploadRequest, progress domain.ProgressFunc) (*domain.UploadResponse, error)
}
