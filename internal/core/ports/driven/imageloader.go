package driven

import (
	"context"

	"github.com/custodia-labs/kycup/internal/core/domain"
)

// ImageLoader reads an image from a local path.
type ImageLoader interface {
	// Load reads path and reports its detected MIME type.
	Load(ctx context.Context, path string) (domain.ImageFile, error)
}
