package driving

import "github.com/custodia-labs/kycup/internal/core/domain"

// SettingsService manages upload settings.
type SettingsService interface {
	// Get retrieves current settings merged over defaults.
	Get() (*domain.UploadSettings, error)

	// Set validates and stores a single setting by key.
	Set(key, value string) error

	// Keys returns the configurable keys with descriptions.
	Keys() []SettingKey

	// SetToken stores the bearer token.
	SetToken(token string) error

	// GetDefaults returns default settings.
	GetDefaults() domain.UploadSettings
}

// SettingKey describes a configurable setting.
type SettingKey struct {
	// Key is the dot-notation config key.
	Key string

	// Description explains the setting.
	Description string
}
