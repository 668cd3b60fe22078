package domain

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Multipart field names expected by the upload endpoint.
const (
	FieldDocumentType = "documentType"
)

// UploadRequest is one multipart submission.
type UploadRequest struct {
	// DocumentType is sent as the documentType field.
	DocumentType DocumentType

	// Files holds the compressed file for each slot.
	Files [SlotCount]ImageFile
}

// File returns the file for a slot.
func (r UploadRequest) File(slot Slot) ImageFile {
	return r.Files[slot]
}

// TotalBytes returns the sum of the file sizes.
func (r UploadRequest) TotalBytes() int64 {
	var total int64
	for _, f := range r.Files {
		total += f.Size()
	}
	return total
}

// UploadResponse is the raw endpoint answer.
type UploadResponse struct {
	StatusCode int
	Body       []byte
}

// Progress reports bytes sent of the whole request body.
type Progress struct {
	Sent  int64
	Total int64
}

// Percent returns the rounded completion percentage in [0, 100].
func (p Progress) Percent() int {
	if p.Total <= 0 || p.Sent <= 0 {
		return 0
	}
	if p.Sent >= p.Total {
		return 100
	}
	return int((p.Sent*100 + p.Total/2) / p.Total)
}

// ProgressFunc receives transport progress events.
type ProgressFunc func(Progress)

// ClassifyUploadResponse maps an endpoint answer to nil or a classified UploadFailure.
// Status 0 means no response was received.
func ClassifyUploadResponse(status int, body []byte) error {
	switch {
	case status == http.StatusOK:
		return nil
	case status == 0:
		return NewUploadFailure(ErrConnectivityLost, status, MsgConnectivityLost)
	case status >= http.StatusInternalServerError:
		return NewUploadFailure(ErrServerError, status, MsgServerError)
	case status == http.StatusRequestEntityTooLarge:
		return NewUploadFailure(ErrPayloadTooLarge, status, MsgPayloadTooLarge)
	case status == http.StatusUnauthorized:
		return NewUploadFailure(ErrAuthExpired, status, MsgAuthExpired)
	}

	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return NewUploadFailure(ErrUnknownUploadFailure, status, MsgUploadFailedTry)
	}
	msg := strings.TrimSpace(payload.Error)
	if msg == "" {
		msg = MsgUploadFailed
	}
	return NewUploadFailure(ErrUnknownUploadFailure, status, msg)
}
