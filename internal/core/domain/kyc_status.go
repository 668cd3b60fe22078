package domain

// KycStatus is the account verification state supplied by the platform.
// It is read-only to the upload pipeline and gates the whole form.
type KycStatus int

const (
	// KycUnknown means the supplier returned null or has not answered yet.
	KycUnknown KycStatus = -1
	// KycUnverified means no documents have been accepted.
	KycUnverified KycStatus = 0
	// KycPending means documents are awaiting review.
	KycPending KycStatus = 1
	// KycVerified means the account is verified; the form is disabled.
	KycVerified KycStatus = 2
)

// KycStatusFromInt converts the supplier's integer, nil meaning unknown.
func KycStatusFromInt(v *int) KycStatus {
	if v == nil {
		return KycUnknown
	}
	switch KycStatus(*v) {
	case KycUnverified, KycPending, KycVerified:
		return KycStatus(*v)
	default:
		return KycUnknown
	}
}

// IsVerified returns true only for the verified state.
func (k KycStatus) IsVerified() bool {
	return k == KycVerified
}

// String returns the string representation.
func (k KycStatus) String() string {
	switch k {
	case KycUnverified:
		return "unverified"
	case KycPending:
		return "pending"
	case KycVerified:
		return "verified"
	default:
		return "unknown"
	}
}

// Description returns a human-readable description of the status.
func (k KycStatus) Description() string {
	switch k {
	case KycUnverified:
		return "Not verified - upload your documents to verify your account"
	case KycPending:
		return "Pending review - your documents are being checked"
	case KycVerified:
		return "Your KYC has been verified."
	default:
		return unknownDescription
	}
}
