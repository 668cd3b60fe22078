package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/kycup/internal/core/domain"
	"github.com/custodia-labs/kycup/internal/core/ports/driven"
)

// Ensure PreviewStore implements the interface.
var _ driven.PreviewStore = (*PreviewStore)(nil)

// PreviewStore keeps previews in memory and counts their lifecycle.
// The TUI uses it to render thumbnails without touching disk.
type PreviewStore struct {
	mu       sync.RWMutex
	next     int
	previews map[domain.PreviewHandle]domain.ImageFile
	created  int
	released int
}

// NewPreviewStore creates a new in-memory preview store.
func NewPreviewStore() *PreviewStore {
	return &PreviewStore{
		previews: make(map[domain.PreviewHandle]domain.ImageFile),
	}
}

// Create stores a copy of file and returns its handle.
func (s *PreviewStore) Create(_ context.Context, slot domain.Slot, file domain.ImageFile) (domain.PreviewHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.created++
	handle := domain.PreviewHandle(fmt.Sprintf("mem://%s/%d", slot, s.next))
	data := make([]byte, len(file.Data))
	copy(data, file.Data)
	file.Data = data
	s.previews[handle] = file
	return handle, nil
}

// Release frees the preview.
func (s *PreviewStore) Release(handle domain.PreviewHandle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.previews[handle]; !ok {
		return domain.ErrNotFound
	}
	delete(s.previews, handle)
	s.released++
	return nil
}

// Open returns the stored preview.
func (s *PreviewStore) Open(handle domain.PreviewHandle) (domain.ImageFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	file, ok := s.previews[handle]
	if !ok {
		return domain.ImageFile{}, domain.ErrNotFound
	}
	return file, nil
}

// Live returns the number of unreleased previews.
func (s *PreviewStore) Live() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.previews)
}

// Stats returns how many previews were created and released.
func (s *PreviewStore) Stats() (created, released int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.created, s.released
}
