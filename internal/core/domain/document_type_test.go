package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDocumentType(t *testing.T) {
	tests := []struct {
		input    string
		expected DocumentType
	}{
		{"Passport", DocumentPassport},
		{"passport", DocumentPassport},
		{"Driver's license", DocumentDriversLicense},
		{"drivers-license", DocumentDriversLicense},
		{"national-id", DocumentNationalID},
		{"National Identity card", DocumentNationalID},
		{" voters-card ", DocumentVotersCard},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDocumentType(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseDocumentType_Unknown(t *testing.T) {
	_, err := ParseDocumentType("library card")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDocumentType_IsValid(t *testing.T) {
	for _, d := range AllDocumentTypes() {
		assert.True(t, d.IsValid(), d)
		assert.NotEmpty(t, d.Alias())
	}
	assert.False(t, DocumentType("").IsValid())
	assert.Equal(t, DocumentDriversLicense, DefaultDocumentType)
}
