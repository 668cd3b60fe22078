package kycapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/kycup/internal/core/domain"
	"github.com/custodia-labs/kycup/internal/core/ports/driven"
	"github.com/custodia-labs/kycup/internal/logger"
)

// Ensure Client implements the interfaces.
var (
	_ driven.UploadTransport   = (*Client)(nil)
	_ driven.KycStatusProvider = (*Client)(nil)
)

// maxResponseBody bounds how much of a response is read.
const maxResponseBody = 1 << 20

// Client is an HTTP client for the KYC upload and status endpoints.
type Client struct {
	http      *http.Client
	uploadURL string
	statusURL string
	chunkSize int
}

// NewClient creates a client from settings.
// The client sets no timeout of its own; callers bound requests with the context.
func NewClient(settings domain.UploadSettings) *Client {
	hc := &http.Client{}
	if settings.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: settings.Token})
		hc = oauth2.NewClient(context.Background(), ts)
	}

	chunk := settings.ChunkSize
	if chunk <= 0 {
		chunk = domain.DefaultChunkSize
	}

	return &Client{
		http:      hc,
		uploadURL: settings.UploadURL(),
		statusURL: settings.StatusURL(),
		chunkSize: chunk,
	}
}

// Upload posts req and returns the raw response.
func (c *Client) Upload(ctx context.Context, req domain.UploadRequest, progress domain.ProgressFunc) (*domain.UploadResponse, error) {
	body, contentType, err := encodeMultipart(req)
	if err != nil {
		return nil, fmt.Errorf("encode upload: %w", err)
	}

	total := int64(len(body))
	reader := newProgressReader(body, c.chunkSize, progress)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, reader)
	if err != nil {
		return nil, fmt.Errorf("build upload request: %w", err)
	}
	httpReq.ContentLength = total
	// A 307/308 redirect resends the body from a fresh reader. Progress may
	// restart; the pipeline keeps the reported percentage from decreasing.
	httpReq.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(newProgressReader(body, c.chunkSize, progress)), nil
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")

	logger.Debug("POST %s (%d bytes)", c.uploadURL, total)
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		logger.Debug("read upload response: %v", err)
	}
	logger.Debug("upload response %d: %s", resp.StatusCode, truncate(data, 200))

	return &domain.UploadResponse{StatusCode: resp.StatusCode, Body: data}, nil
}

// userResponse is the status endpoint payload.
type userResponse struct {
	Username string `json:"username"`
	Kyc      *int   `json:"kyc"`
}

// Status reads the current user's KYC status.
func (c *Client) Status(ctx context.Context) (domain.KycStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.statusURL, nil)
	if err != nil {
		return domain.KycUnknown, fmt.Errorf("build status request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.KycUnknown, fmt.Errorf("%w: %w", domain.ErrConnectivityLost, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return domain.KycUnknown, domain.ErrAuthExpired
	case resp.StatusCode != http.StatusOK:
		return domain.KycUnknown, fmt.Errorf("status endpoint returned %d", resp.StatusCode)
	}

	var user userResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBody)).Decode(&user); err != nil {
		return domain.KycUnknown, fmt.Errorf("decode status: %w", err)
	}
	status := domain.KycStatusFromInt(user.Kyc)
	logger.Debug("user %q kyc=%s", user.Username, status)
	return status, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
