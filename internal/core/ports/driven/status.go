package driven

import (
	"context"

	"github.com/custodia-labs/kycup/internal/core/domain"
)

// KycStatusProvider supplies the current user's KYC status.
type KycStatusProvider interface {
	// Status returns the account status, domain.KycUnknown when the supplier has no value.
	Status(ctx context.Context) (domain.KycStatus, error)
}
