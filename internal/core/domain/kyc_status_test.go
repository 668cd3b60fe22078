package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestKycStatusFromInt(t *testing.T) {
	assert.Equal(t, KycUnknown, KycStatusFromInt(nil))
	assert.Equal(t, KycUnverified, KycStatusFromInt(intPtr(0)))
	assert.Equal(t, KycPending, KycStatusFromInt(intPtr(1)))
	assert.Equal(t, KycVerified, KycStatusFromInt(intPtr(2)))
	assert.Equal(t, KycUnknown, KycStatusFromInt(intPtr(5)))
}

func TestKycStatus_IsVerified(t *testing.T) {
	assert.True(t, KycVerified.IsVerified())
	assert.False(t, KycPending.IsVerified())
	assert.False(t, KycUnverified.IsVerified())
	assert.False(t, KycUnknown.IsVerified())
}

func TestKycStatus_String(t *testing.T) {
	assert.Equal(t, "unverified", KycUnverified.String())
	assert.Equal(t, "pending", KycPending.String())
	assert.Equal(t, "verified", KycVerified.String())
	assert.Equal(t, "unknown", KycUnknown.String())
	assert.Equal(t, unknownDescription, KycUnknown.Description())
}
