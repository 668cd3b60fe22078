// Package localfs reads identity document images from the local filesystem.
package localfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/custodia-labs/kycup/internal/core/domain"
	"github.com/custodia-labs/kycup/internal/core/ports/driven"
)

// Ensure Loader implements the interface.
var _ driven.ImageLoader = (*Loader)(nil)

// DefaultMaxFileSize caps how much of a file is read into memory.
const DefaultMaxFileSize = 64 << 20

// Loader reads a file and detects its MIME type from content.
type Loader struct {
	maxSize int64
}

// NewLoader creates a loader. maxSize <= 0 uses DefaultMaxFileSize.
func NewLoader(maxSize int64) *Loader {
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	return &Loader{maxSize: maxSize}
}

// Load reads path. The declared type comes from the file content, not the
// extension, so a renamed PDF is still rejected by validation.
func (l *Loader) Load(ctx context.Context, path string) (domain.ImageFile, error) {
	if err := ctx.Err(); err != nil {
		return domain.ImageFile{}, err
	}

	resolved, err := ResolvePath(path)
	if err != nil {
		return domain.ImageFile{}, err
	}

	f, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.ImageFile{}, fmt.Errorf("%w: %s", domain.ErrNotFound, resolved)
		}
		return domain.ImageFile{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return domain.ImageFile{}, err
	}
	if info.IsDir() {
		return domain.ImageFile{}, fmt.Errorf("%w: %s is a directory", domain.ErrInvalidInput, resolved)
	}
	if info.Size() > l.maxSize {
		return domain.ImageFile{}, fmt.Errorf("%w: %s exceeds %d bytes", domain.ErrInvalidInput, resolved, l.maxSize)
	}

	data, err := io.ReadAll(io.LimitReader(f, l.maxSize+1))
	if err != nil {
		return domain.ImageFile{}, fmt.Errorf("read %s: %w", resolved, err)
	}
	if int64(len(data)) > l.maxSize {
		return domain.ImageFile{}, fmt.Errorf("%w: %s exceeds %d bytes", domain.ErrInvalidInput, resolved, l.maxSize)
	}

	return domain.ImageFile{
		Name:     filepath.Base(resolved),
		MIMEType: mimetype.Detect(data).String(),
		Data:     data,
	}, nil
}

// ResolvePath converts a file:// URI or ~-prefixed path to a local path.
func ResolvePath(path string) (string, error) {
	path = strings.TrimSpace(path)
	path = strings.TrimPrefix(path, "file://")
	if path == "" {
		return "", fmt.Errorf("%w: empty path", domain.ErrInvalidInput)
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return filepath.Clean(path), nil
}
