// Package preview stores image previews as files so that terminals and
// external viewers can open them by path.
package preview

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/kycup/internal/core/domain"
	"github.com/custodia-labs/kycup/internal/core/ports/driven"
)

// Ensure TempDirStore implements the interface.
var _ driven.PreviewStore = (*TempDirStore)(nil)

// TempDirStore writes previews into a private temporary directory.
// The handle is the preview's file path.
type TempDirStore struct {
	mu   sync.Mutex
	dir  string
	live map[domain.PreviewHandle]struct{}
}

// NewTempDirStore creates a store under parent, or the system temp dir if parent is empty.
func NewTempDirStore(parent string) (*TempDirStore, error) {
	dir, err := os.MkdirTemp(parent, "kycup-preview-")
	if err != nil {
		return nil, fmt.Errorf("create preview dir: %w", err)
	}
	return &TempDirStore{
		dir:  dir,
		live: make(map[domain.PreviewHandle]struct{}),
	}, nil
}

// Dir returns the directory holding the previews.
func (s *TempDirStore) Dir() string {
	return s.dir
}

// Create writes file to a new preview file.
func (s *TempDirStore) Create(ctx context.Context, slot domain.Slot, file domain.ImageFile) (domain.PreviewHandle, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext := filepath.Ext(file.Name)
	if ext == "" {
		ext = ".jpg"
	}
	f, err := os.CreateTemp(s.dir, slot.String()+"-*"+strings.ToLower(ext))
	if err != nil {
		return "", fmt.Errorf("create preview: %w", err)
	}
	if _, err := f.Write(file.Data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write preview: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close preview: %w", err)
	}

	handle := domain.PreviewHandle(f.Name())
	s.mu.Lock()
	s.live[handle] = struct{}{}
	s.mu.Unlock()
	return handle, nil
}

// Release deletes the preview file.
func (s *TempDirStore) Release(handle domain.PreviewHandle) error {
	s.mu.Lock()
	_, ok := s.live[handle]
	delete(s.live, handle)
	s.mu.Unlock()

	if !ok {
		return domain.ErrNotFound
	}
	if err := os.Remove(string(handle)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove preview: %w", err)
	}
	return nil
}

// Close removes the directory and every preview still in it.
func (s *TempDirStore) Close() error {
	s.mu.Lock()
	s.live = make(map[domain.PreviewHandle]struct{})
	s.mu.Unlock()
	return os.RemoveAll(s.dir)
}
