package localfs

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kycup/internal/core/domain"
)

func writePNG(t *testing.T, dir, name string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for x := 0; x < 32; x++ {
		img.Set(x, x, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0600))
	return path
}

func TestLoader_Load_DetectsPNG(t *testing.T) {
	path := writePNG(t, t.TempDir(), "front.dat")

	file, err := NewLoader(0).Load(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, "front.dat", file.Name)
	assert.Equal(t, domain.MIMEPNG, file.MIMEType)
	assert.NotEmpty(t, file.Data)
}

func TestLoader_Load_FileURI(t *testing.T) {
	path := writePNG(t, t.TempDir(), "back.png")

	file, err := NewLoader(0).Load(context.Background(), "file://"+path)

	require.NoError(t, err)
	assert.Equal(t, "back.png", file.Name)
}

func TestLoader_Load_TextIsNotAnImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "selfie.jpg")
	require.NoError(t, os.WriteFile(path, []byte("definitely not a photo"), 0600))

	file, err := NewLoader(0).Load(context.Background(), path)

	require.NoError(t, err)
	assert.ErrorIs(t, domain.ValidateImage(file, nil, 1), domain.ErrUnsupportedType)
}

func TestLoader_Load_Errors(t *testing.T) {
	dir := t.TempDir()
	big := filepath.Join(dir, "big.png")
	require.NoError(t, os.WriteFile(big, make([]byte, 2048), 0600))

	tests := []struct {
		name string
		path string
		want error
	}{
		{"missing file", filepath.Join(dir, "nope.png"), domain.ErrNotFound},
		{"directory", dir, domain.ErrInvalidInput},
		{"empty path", "  ", domain.ErrInvalidInput},
		{"over limit", big, domain.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader(1024).Load(context.Background(), tt.path)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoader_Load_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLoader(0).Load(ctx, "/does/not/matter")

	assert.ErrorIs(t, err, context.Canceled)
}

func TestResolvePath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"file URI", "file:///tmp/id/front.jpg", "/tmp/id/front.jpg"},
		{"bare path", "/tmp/id/back.jpg", "/tmp/id/back.jpg"},
		{"relative path", "id/selfie.jpg", "id/selfie.jpg"},
		{"home", "~/id/front.jpg", filepath.Join(home, "id/front.jpg")},
		{"cleans", "/tmp/id/../id/front.jpg", "/tmp/id/front.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolvePath(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
