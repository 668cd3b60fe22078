package services

import (
	"fmt"
	"net/url"
	"os"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/kycup/internal/core/domain"
	"github.com/custodia-labs/kycup/internal/core/ports/driven"
	"github.com/custodia-labs/kycup/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// EnvToken overrides the stored bearer token when set.
//
//nolint:gosec // G101: This is an environment variable name, not a credential.
const EnvToken = "KYCUP_TOKEN"

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyBaseURL        = "api.base_url"
	keyUploadEndpoint = "upload.endpoint"
	keyStatusEndpoint = "upload.status_endpoint"
	keyTimeout        = "upload.timeout_seconds"
	keyMaxAttempts    = "upload.max_attempts"
	keyRefreshDelay   = "upload.refresh_delay_ms"
	keyChunkSize      = "upload.chunk_kib"
	keyAllowedTypes   = "upload.allowed_types"
	keyMaxSize        = "compression.max_size_kib"
	keyMaxDimension   = "compression.max_dimension"
	keyQuality        = "compression.quality"
	keyToken          = "auth.token"
)

type settingKind int

const (
	kindURL settingKind = iota
	kindOptionalURL
	kindPositiveInt
	kindFraction
	kindSecret
	kindMIMEList
)

type settingDef struct {
	description string
	kind        settingKind
}

var settingDefs = map[string]settingDef{
	keyBaseURL:        {"Platform API base URL", kindURL},
	keyUploadEndpoint: {"Full upload URL, overrides base_url + " + domain.DefaultUploadPath, kindOptionalURL},
	keyStatusEndpoint: {"Full status URL, overrides base_url + " + domain.DefaultStatusPath, kindOptionalURL},
	keyTimeout:        {"Upload timeout in seconds", kindPositiveInt},
	keyMaxAttempts:    {"Uploads allowed before files must be reselected", kindPositiveInt},
	keyRefreshDelay:   {"Delay before refreshing after a successful upload, in milliseconds", kindPositiveInt},
	keyChunkSize:      {"Upload body chunk size in KiB", kindPositiveInt},
	keyAllowedTypes:   {"Comma-separated accepted MIME types, a subset of JPEG, PNG and WebP", kindMIMEList},
	keyMaxSize:        {"Target compressed size in KiB", kindPositiveInt},
	keyMaxDimension:   {"Maximum image width or height in pixels", kindPositiveInt},
	keyQuality:        {"Initial JPEG quality between 0 and 1", kindFraction},
	keyToken:          {"Bearer token forwarded to the platform", kindSecret},
}

// SettingsService manages upload settings.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		getenv:      os.Getenv,
	}
}

// Get retrieves current settings merged over defaults.
func (s *SettingsService) Get() (*domain.UploadSettings, error) {
	settings := domain.DefaultUploadSettings()

	settings.BaseURL = s.getString(keyBaseURL, settings.BaseURL)
	settings.UploadEndpoint = s.configStore.GetString(keyUploadEndpoint)
	settings.StatusEndpoint = s.configStore.GetString(keyStatusEndpoint)
	settings.Timeout = time.Duration(s.getInt(keyTimeout, int(settings.Timeout/time.Second))) * time.Second
	settings.MaxAttempts = s.getInt(keyMaxAttempts, settings.MaxAttempts)
	settings.RefreshDelay = time.Duration(s.getInt(keyRefreshDelay, int(settings.RefreshDelay/time.Millisecond))) * time.Millisecond
	settings.ChunkSize = s.getInt(keyChunkSize, settings.ChunkSize/1024) * 1024
	if types := s.configStore.GetStringSlice(keyAllowedTypes); len(types) > 0 {
		settings.AllowedTypes = types
	}
	settings.Compression.MaxBytes = int64(s.getInt(keyMaxSize, int(settings.Compression.MaxBytes/1024))) * 1024
	settings.Compression.MaxDimension = s.getInt(keyMaxDimension, settings.Compression.MaxDimension)
	settings.Compression.Quality = s.getFloat(keyQuality, settings.Compression.Quality)

	settings.Token = s.configStore.GetString(keyToken)
	if token := strings.TrimSpace(s.getenv(EnvToken)); token != "" {
		settings.Token = token
	}

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("settings from %s: %w", s.configStore.Path(), err)
	}
	return &settings, nil
}

// Set validates and stores a single setting by key.
func (s *SettingsService) Set(key, value string) error {
	def, ok := settingDefs[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	value = strings.TrimSpace(value)

	var stored any
	switch def.kind {
	case kindURL, kindOptionalURL:
		if value == "" && def.kind == kindOptionalURL {
			stored = ""
			break
		}
		u, err := url.Parse(value)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: %s must be an http(s) URL", domain.ErrInvalidInput, key)
		}
		stored = strings.TrimRight(value, "/")
	case kindPositiveInt:
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("%w: %s must be a positive integer", domain.ErrInvalidInput, key)
		}
		stored = n
	case kindFraction:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f <= 0 || f > 1 {
			return fmt.Errorf("%w: %s must be in (0, 1]", domain.ErrInvalidInput, key)
		}
		stored = f
	case kindSecret:
		stored = value
	case kindMIMEList:
		types, err := parseMIMEList(value)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, key, err)
		}
		stored = types
	}

	if err := s.configStore.Set(key, stored); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// SetToken stores the bearer token.
func (s *SettingsService) SetToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("%w: token is empty", domain.ErrInvalidInput)
	}
	return s.Set(keyToken, token)
}

// Keys returns the configurable keys with descriptions, sorted by key.
func (s *SettingsService) Keys() []driving.SettingKey {
	keys := make([]driving.SettingKey, 0, len(settingDefs))
	for k, def := range settingDefs {
		keys = append(keys, driving.SettingKey{Key: k, Description: def.description})
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Key < keys[j].Key })
	return keys
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.UploadSettings {
	return domain.DefaultUploadSettings()
}

// parseMIMEList splits a comma-separated list and keeps only supported types.
// An empty list restores the defaults.
func parseMIMEList(value string) ([]string, error) {
	if value == "" {
		return []string{}, nil
	}
	supported := domain.DefaultAllowedTypes()
	var types []string
	for _, part := range strings.Split(value, ",") {
		t := strings.ToLower(strings.TrimSpace(part))
		if t == "" {
			continue
		}
		if !slices.Contains(supported, t) {
			return nil, fmt.Errorf("unsupported type %q", t)
		}
		if !slices.Contains(types, t) {
			types = append(types, t)
		}
	}
	return types, nil
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val := s.configStore.GetFloat(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}
