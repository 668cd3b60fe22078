package domain

import (
	"fmt"
	"strings"
)

// MinFileSize is the smallest accepted input image in bytes.
const MinFileSize = 1024

// Accepted input MIME types. image/jpg is not registered but browsers and
// some phones still declare it.
const (
	MIMEJPEG    = "image/jpeg"
	MIMEJPGAlt  = "image/jpg"
	MIMEPNG     = "image/png"
	MIMEWebP    = "image/webp"
	MIMEDefault = "application/octet-stream"
)

// DefaultAllowedTypes returns the accepted input MIME types.
func DefaultAllowedTypes() []string {
	return []string{MIMEJPEG, MIMEJPGAlt, MIMEPNG, MIMEWebP}
}

// ImageFile is an image held in memory together with its declared type.
type ImageFile struct {
	// Name is the file name without directories.
	Name string

	// MIMEType is the declared content type.
	MIMEType string

	// Data is the file content.
	Data []byte
}

// Size returns the file size in bytes.
func (f ImageFile) Size() int64 {
	return int64(len(f.Data))
}

// IsZero returns true if the file holds no data.
func (f ImageFile) IsZero() bool {
	return len(f.Data) == 0 && f.Name == ""
}

// ValidateImage checks the declared type and minimum size.
// Maximum input size is deliberately not checked: compression bounds the output.
func ValidateImage(file ImageFile, allowed []string, minSize int64) error {
	if len(allowed) == 0 {
		allowed = DefaultAllowedTypes()
	}
	mimeType := strings.ToLower(strings.TrimSpace(file.MIMEType))
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}

	supported := false
	for _, t := range allowed {
		if mimeType == t {
			supported = true
			break
		}
	}
	if !supported {
		return fmt.Errorf("%w: %q", ErrUnsupportedType, file.MIMEType)
	}
	if file.Size() < minSize {
		return fmt.Errorf("%w: %d bytes", ErrFileTooSmall, file.Size())
	}
	return nil
}

// CompressionOptions bounds the output of the image compressor.
type CompressionOptions struct {
	// MaxBytes is the target upper bound for the output size.
	MaxBytes int64

	// MaxDimension bounds both width and height in pixels.
	MaxDimension int

	// Format is the output MIME type.
	Format string

	// Quality is the initial encoder quality in (0, 1].
	Quality float64

	// MaxIterations bounds the quality/size search.
	MaxIterations int
}

// DefaultCompressionOptions returns ~2MB JPEG output at most 1920px, quality 0.8.
func DefaultCompressionOptions() CompressionOptions {
	return CompressionOptions{
		MaxBytes:      2 * 1024 * 1024,
		MaxDimension:  1920,
		Format:        MIMEJPEG,
		Quality:       0.8,
		MaxIterations: 10,
	}
}

// PreviewHandle is an opaque reference to a preview resource owned by a slot.
type PreviewHandle string

// UploadCandidate is a validated selection occupying a slot.
type UploadCandidate struct {
	// Slot is the role the file fills.
	Slot Slot

	// Raw is the file as selected.
	Raw ImageFile

	// Compressed is the file that will be uploaded.
	Compressed ImageFile

	// Preview references the local preview of Compressed.
	Preview PreviewHandle

	// Degraded is true when compression failed and Raw is uploaded as is.
	Degraded bool
}

// SlotState is a read-only view of one slot.
type SlotState struct {
	Slot         Slot
	Status       SlotStatus
	FileName     string
	Size         int64
	OriginalSize int64
	Preview      PreviewHandle
	Degraded     bool
}
