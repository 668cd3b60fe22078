package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kycup/internal/core/domain"
)

func TestPreviewStore_Lifecycle(t *testing.T) {
	store := NewPreviewStore()
	ctx := context.Background()
	file := domain.ImageFile{Name: "front.jpg", MIMEType: domain.MIMEJPEG, Data: []byte{1, 2, 3}}

	h1, err := store.Create(ctx, domain.SlotFront, file)
	require.NoError(t, err)
	h2, err := store.Create(ctx, domain.SlotFront, file)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
	assert.Equal(t, 2, store.Live())

	// Stored data is a copy.
	file.Data[0] = 9
	got, err := store.Open(h1)
	require.NoError(t, err)
	assert.Equal(t, byte(1), got.Data[0])

	require.NoError(t, store.Release(h1))
	assert.ErrorIs(t, store.Release(h1), domain.ErrNotFound)
	_, err = store.Open(h1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	created, released := store.Stats()
	assert.Equal(t, 2, created)
	assert.Equal(t, 1, released)
	assert.Equal(t, 1, store.Live())
}

func TestPreviewStore_ReleaseUnknown(t *testing.T) {
	store := NewPreviewStore()

	assert.ErrorIs(t, store.Release("mem://front/42"), domain.ErrNotFound)
}
