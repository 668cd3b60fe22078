package domain

import (
	"fmt"
	"strings"
)

const unknownDescription = "Unknown"

// DocumentType is the identity document being submitted.
// The string value is sent verbatim as the documentType form field.
type DocumentType string

// Supported document types.
const (
	DocumentDriversLicense DocumentType = "Driver's license"
	DocumentNationalID     DocumentType = "National Identity card"
	DocumentPassport       DocumentType = "Passport"
	DocumentVotersCard     DocumentType = "Voter's card"
)

// DefaultDocumentType is preselected in the form.
const DefaultDocumentType = DocumentDriversLicense

// AllDocumentTypes returns the selectable document types in display order.
func AllDocumentTypes() []DocumentType {
	return []DocumentType{DocumentDriversLicense, DocumentNationalID, DocumentPassport, DocumentVotersCard}
}

// IsValid returns true if the document type is recognised.
func (d DocumentType) IsValid() bool {
	switch d {
	case DocumentDriversLicense, DocumentNationalID, DocumentPassport, DocumentVotersCard:
		return true
	default:
		return false
	}
}

// String returns the wire value.
func (d DocumentType) String() string {
	return string(d)
}

// Alias returns the short command-line name.
func (d DocumentType) Alias() string {
	switch d {
	case DocumentDriversLicense:
		return "drivers-license"
	case DocumentNationalID:
		return "national-id"
	case DocumentPassport:
		return "passport"
	case DocumentVotersCard:
		return "voters-card"
	default:
		return ""
	}
}

// ParseDocumentType accepts either the wire value or the alias, case-insensitively.
func ParseDocumentType(s string) (DocumentType, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for _, d := range AllDocumentTypes() {
		if needle == strings.ToLower(string(d)) || needle == d.Alias() {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: unknown document type %q", ErrInvalidInput, s)
}
