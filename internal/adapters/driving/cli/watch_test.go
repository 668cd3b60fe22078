package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kycup/internal/core/domain"
)

func writeInbox(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("image"), 0o600))
	}
	return dir
}

func TestWatchCmd_SubmitsWhenFilled(t *testing.T) {
	env, cleanup := setupTestServices()
	defer cleanup()
	old := refreshWait
	refreshWait = time.Second
	defer func() { refreshWait = old }()

	dir := writeInbox(t, "front.jpg", "back.jpg", "selfie.png", "notes.txt")

	out, err := execute("watch", dir, "--submit", "--settle", "10ms", "--type", "national-id")

	require.NoError(t, err)
	assert.Equal(t, 3, env.pipeline.selects)
	assert.Equal(t, 1, env.pipeline.submits)
	assert.Equal(t, domain.DocumentNationalID, env.pipeline.Snapshot().DocumentType)
	assert.Contains(t, out, "Watching "+dir)
	assert.Contains(t, out, filepath.Join(dir, "selfie.png"))
	assert.NotContains(t, out, "notes.txt")
	assert.Contains(t, out, "Documents uploaded successfully (attempt 1).")
}

func TestWatchCmd_Verified(t *testing.T) {
	env, cleanup := setupTestServices()
	defer cleanup()
	env.pipeline.status = domain.KycVerified

	out, err := execute("watch", t.TempDir())

	require.NoError(t, err)
	assert.Contains(t, out, "Your KYC has been verified.")
	assert.Zero(t, env.pipeline.selects)
}

func TestWatchCmd_MissingDir(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("watch", filepath.Join(t.TempDir(), "nope"))

	assert.ErrorContains(t, err, "inbox dir")
}

func TestSlotsFilled(t *testing.T) {
	var snap domain.PipelineSnapshot
	assert.False(t, slotsFilled(snap))

	for _, slot := range domain.AllSlots() {
		snap.Slots[slot] = domain.SlotState{Slot: slot, Status: domain.SlotCompressing}
	}
	assert.True(t, slotsFilled(snap))
}
