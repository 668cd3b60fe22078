package driven

import (
	"context"

	"github.com/custodia-labs/kycup/internal/core/domain"
)

// ImageCompressor reduces an image to the given bounds.
// Implementations treat the input as untrusted and may fail on undecodable data;
// callers fall back to the original file.
type ImageCompressor interface {
	// Compress returns a re-encoded image satisfying opts where possible.
	Compress(ctx context.Context, file domain.ImageFile, opts domain.CompressionOptions) (domain.ImageFile, error)
}
