package domain

import (
	"errors"
	"fmt"
)

// Validation errors are raised locally before any network call.
// The user corrects the input; no retry is offered.
var (
	// ErrUnsupportedType indicates the image MIME type is not JPEG, PNG or WebP.
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrFileTooSmall indicates the image is below the minimum size.
	ErrFileTooSmall = errors.New("file too small")

	// ErrIncompleteSubmission indicates a slot is empty or still compressing.
	ErrIncompleteSubmission = errors.New("incomplete submission")
)

// Upload errors are classified from the transport outcome.
// These are retryable up to the attempt ceiling.
var (
	// ErrConnectivityLost indicates the request never produced a response.
	ErrConnectivityLost = errors.New("connectivity lost")

	// ErrServerError indicates a 5xx response.
	ErrServerError = errors.New("server error")

	// ErrPayloadTooLarge indicates a 413 response.
	ErrPayloadTooLarge = errors.New("payload too large")

	// ErrAuthExpired indicates a 401 response.
	ErrAuthExpired = errors.New("authentication expired")

	// ErrUploadTimeout indicates the upload did not complete within the timeout.
	ErrUploadTimeout = errors.New("upload timeout")

	// ErrUnknownUploadFailure covers every other non-200 response.
	ErrUnknownUploadFailure = errors.New("upload failed")
)

// Pipeline guard errors.
var (
	// ErrUploadInProgress indicates an upload is already in flight.
	ErrUploadInProgress = errors.New("upload in progress")

	// ErrRetryExhausted indicates the attempt ceiling has been reached.
	// The user must reselect files to start over.
	ErrRetryExhausted = errors.New("retry limit reached")

	// ErrNothingToRetry indicates retry was requested without a failed attempt.
	ErrNothingToRetry = errors.New("no failed upload to retry")

	// ErrAlreadyVerified indicates the account KYC is verified and the form is read-only.
	ErrAlreadyVerified = errors.New("kyc already verified")

	// ErrPipelineCompleted indicates documents were already submitted successfully.
	ErrPipelineCompleted = errors.New("documents already submitted")

	// ErrPipelineClosed indicates the pipeline has been torn down.
	ErrPipelineClosed = errors.New("pipeline closed")
)

// Storage and configuration errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")
)

// User-facing messages for classified upload failures.
const (
	MsgConnectivityLost = "Network connection lost. Please check your internet connection."
	MsgServerError      = "Server error. Please try again later."
	MsgPayloadTooLarge  = "Request too large. Please try again."
	MsgAuthExpired      = "Authentication failed. Please sign in again and retry."
	MsgUploadTimeout    = "Upload timeout. Your internet connection may be slow. Please try again."
	MsgUploadFailed     = "Upload failed"
	MsgUploadFailedTry  = "Upload failed. Please try again."
)

// UploadFailure is a classified upload error carrying the message shown to the user.
type UploadFailure struct {
	// Kind is one of the upload error sentinels.
	Kind error

	// StatusCode is the HTTP status, 0 when no response was received.
	StatusCode int

	// Message is the human-readable reason.
	Message string
}

// NewUploadFailure creates a classified failure.
func NewUploadFailure(kind error, status int, message string) *UploadFailure {
	return &UploadFailure{Kind: kind, StatusCode: status, Message: message}
}

// Error returns the human-readable message.
func (f *UploadFailure) Error() string {
	if f.Message == "" {
		return f.Kind.Error()
	}
	return f.Message
}

// Unwrap exposes the kind for errors.Is.
func (f *UploadFailure) Unwrap() error {
	return f.Kind
}

// IsRetryable reports whether the user may retry after err.
func IsRetryable(err error) bool {
	for _, kind := range []error{
		ErrConnectivityLost, ErrServerError, ErrPayloadTooLarge,
		ErrAuthExpired, ErrUploadTimeout, ErrUnknownUploadFailure,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

// UserMessage returns the text shown in the error banner for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var failure *UploadFailure
	if errors.As(err, &failure) {
		return failure.Error()
	}
	switch {
	case errors.Is(err, ErrUnsupportedType):
		return "File must be JPEG, PNG, or WebP"
	case errors.Is(err, ErrFileTooSmall):
		return fmt.Sprintf("File is too small (minimum %d bytes)", MinFileSize)
	case errors.Is(err, ErrIncompleteSubmission):
		return "Please select all required files"
	case errors.Is(err, ErrAlreadyVerified):
		return "Your KYC has been verified."
	}
	return err.Error()
}
