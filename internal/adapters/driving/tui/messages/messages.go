// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/kycup/internal/core/domain"
	"github.com/custodia-labs/kycup/internal/core/ports/driving"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewKYCForm is the document upload form.
	ViewKYCForm
	// ViewHistory lists recorded submission attempts.
	ViewHistory
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewKYCForm:
		return "kyc_form"
	case ViewHistory:
		return "history"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// PipelineChanged carries a snapshot published by the upload pipeline.
type PipelineChanged struct {
	Snapshot domain.PipelineSnapshot
}

// FileSelected reports the result of loading and selecting a file.
type FileSelected struct {
	Slot domain.Slot
	Path string
	Err  error
}

// UploadStarted carries the task of a submitted or retried upload.
type UploadStarted struct {
	Task driving.UploadTask
	Err  error
}

// UploadProgress carries one progress value of a running task.
type UploadProgress struct {
	Task    driving.UploadTask
	Percent int
}

// UploadFinished signals that a task reached a terminal outcome.
type UploadFinished struct {
	Attempt domain.SubmissionAttempt
	Err     error
}

// StatusRefreshed carries the account KYC status.
type StatusRefreshed struct {
	Status domain.KycStatus
	Err    error
}

// RefreshRequested is sent by the pipeline's refresh hook after a successful upload.
type RefreshRequested struct{}

// HistoryLoaded carries recorded submission attempts.
type HistoryLoaded struct {
	Attempts []domain.SubmissionAttempt
	Err      error
}
