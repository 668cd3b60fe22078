package status

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kycup/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/kycup/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/kycup/internal/core/domain"
)

func TestNewBar(t *testing.T) {
	bar := NewBar(styles.DefaultStyles(), keymap.DefaultKeyMap())

	require.NotNil(t, bar)
	assert.Equal(t, StateReady, bar.State())
	assert.Empty(t, bar.Message())
	assert.Equal(t, 80, bar.Width())
}

func TestNewBar_NilStyles(t *testing.T) {
	bar := NewBar(nil, nil)

	require.NotNil(t, bar)
	assert.NotNil(t, bar.styles)
	assert.NotNil(t, bar.keymap)
}

func TestBar_InitAndUpdate(t *testing.T) {
	bar := NewBar(nil, nil)

	assert.Nil(t, bar.Init())
	updated, cmd := bar.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Same(t, bar, updated)
	assert.Nil(t, cmd)
}

func snapshotWith(phase domain.UploadPhase, statuses ...domain.SlotStatus) domain.PipelineSnapshot {
	snap := domain.PipelineSnapshot{Phase: phase, KycStatus: domain.KycUnverified, MaxAttempts: domain.MaxAttempts}
	for i, st := range statuses {
		snap.Slots[i].Status = st
	}
	return snap
}

func TestBar_SetSnapshot(t *testing.T) {
	verified := snapshotWith(domain.PhaseIdle)
	verified.KycStatus = domain.KycVerified

	failed := snapshotWith(domain.PhaseFailed, domain.SlotReady, domain.SlotReady, domain.SlotReady)
	failed.Err = domain.NewUploadFailure(domain.ErrServerError, 502, domain.MsgServerError)

	uploading := snapshotWith(domain.PhaseUploading)
	uploading.Progress = 42

	tests := []struct {
		name     string
		snap     domain.PipelineSnapshot
		state    State
		contains string
	}{
		{"empty form", snapshotWith(domain.PhaseIdle), StateReady, "0/3 ready"},
		{"partly ready", snapshotWith(domain.PhaseIdle, domain.SlotReady, domain.SlotEmpty, domain.SlotReady), StateReady, "2/3 ready"},
		{"compressing", snapshotWith(domain.PhaseIdle, domain.SlotCompressing), StateCompressing, "Compressing"},
		{"uploading", uploading, StateUploading, "42%"},
		{"failed", failed, StateFailed, domain.MsgServerError},
		{"submitted", snapshotWith(domain.PhaseSucceeded), StateSubmitted, "submitted"},
		{"verified", verified, StateVerified, "Verified"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := NewBar(nil, nil)
			bar.SetWidth(200)
			bar.SetSnapshot(tt.snap)

			assert.Equal(t, tt.state, bar.State())
			assert.Contains(t, bar.View(), tt.contains)
		})
	}
}

func TestBar_FailedShowsRetryHint(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(200)
	bar.SetState(StateFailed)

	assert.Contains(t, bar.View(), "retry")
}

func TestBar_History(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(200)
	bar.SetState(StateHistory)
	bar.SetCount(7)

	view := bar.View()
	assert.Contains(t, view, "7 attempts")
	assert.Contains(t, view, "refresh")
}

func TestBar_Clear(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetState(StateFailed)
	bar.SetMessage("boom")
	bar.SetCount(3)

	bar.Clear()

	assert.Equal(t, StateReady, bar.State())
	assert.Empty(t, bar.Message())
}

func TestBar_NarrowWidth(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(10)

	assert.NotEmpty(t, bar.View())
}
