package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Default endpoint paths relative to the API base URL.
const (
	DefaultBaseURL       = "http://localhost:8080"
	DefaultUploadPath    = "/api/kyc/upload"
	DefaultStatusPath    = "/api/user"
	DefaultUploadTimeout = 60 * time.Second
	DefaultRefreshDelay  = 2 * time.Second
	DefaultChunkSize     = 32 * 1024
)

// UploadSettings configures the upload pipeline and its adapters.
type UploadSettings struct {
	// BaseURL is the platform API root.
	BaseURL string

	// UploadEndpoint overrides BaseURL + DefaultUploadPath when set.
	UploadEndpoint string

	// StatusEndpoint overrides BaseURL + DefaultStatusPath when set.
	StatusEndpoint string

	// Timeout aborts an upload that has not completed.
	Timeout time.Duration

	// MaxAttempts is the attempt ceiling before files must be reselected.
	MaxAttempts int

	// RefreshDelay is the pause between success and the refresh hook.
	RefreshDelay time.Duration

	// ChunkSize is the body write granularity driving progress events.
	ChunkSize int

	// MinFileSize rejects smaller inputs.
	MinFileSize int64

	// AllowedTypes lists accepted input MIME types.
	AllowedTypes []string

	// Compression bounds the compressed output.
	Compression CompressionOptions

	// Token is the bearer token forwarded to the endpoint.
	Token string
}

// DefaultUploadSettings returns the defaults used when nothing is configured.
func DefaultUploadSettings() UploadSettings {
	return UploadSettings{
		BaseURL:      DefaultBaseURL,
		Timeout:      DefaultUploadTimeout,
		MaxAttempts:  MaxAttempts,
		RefreshDelay: DefaultRefreshDelay,
		ChunkSize:    DefaultChunkSize,
		MinFileSize:  MinFileSize,
		AllowedTypes: DefaultAllowedTypes(),
		Compression:  DefaultCompressionOptions(),
	}
}

// UploadURL returns the resolved upload endpoint.
func (s UploadSettings) UploadURL() string {
	if s.UploadEndpoint != "" {
		return s.UploadEndpoint
	}
	return strings.TrimRight(s.BaseURL, "/") + DefaultUploadPath
}

// StatusURL returns the resolved status endpoint.
func (s UploadSettings) StatusURL() string {
	if s.StatusEndpoint != "" {
		return s.StatusEndpoint
	}
	return strings.TrimRight(s.BaseURL, "/") + DefaultStatusPath
}

// Validate checks the settings are usable.
func (s UploadSettings) Validate() error {
	for _, raw := range []string{s.UploadURL(), s.StatusURL()} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: endpoint %q", ErrInvalidInput, raw)
		}
	}
	if s.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidInput)
	}
	if s.MaxAttempts < 1 {
		return fmt.Errorf("%w: max attempts must be at least 1", ErrInvalidInput)
	}
	if s.Compression.Quality <= 0 || s.Compression.Quality > 1 {
		return fmt.Errorf("%w: quality must be in (0, 1]", ErrInvalidInput)
	}
	if s.Compression.MaxDimension <= 0 || s.Compression.MaxBytes <= 0 {
		return fmt.Errorf("%w: compression bounds must be positive", ErrInvalidInput)
	}
	return nil
}
