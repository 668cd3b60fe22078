package kycform

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kycup/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/kycup/internal/core/domain"
	"github.com/custodia-labs/kycup/internal/core/ports/driving"
)

type mockPipeline struct {
	snap       domain.PipelineSnapshot
	selected   []domain.Slot
	removed    []domain.Slot
	docTypes   []domain.DocumentType
	submits    int
	retries    int
	resets     int
	task       driving.UploadTask
	submitErr  error
	status     domain.KycStatus
	statusErr  error
	subscriber func(domain.PipelineSnapshot)
}

func (m *mockPipeline) SelectFile(_ context.Context, slot domain.Slot, _ domain.ImageFile) error {
	m.selected = append(m.selected, slot)
	return nil
}

func (m *mockPipeline) RemoveFile(slot domain.Slot) error {
	m.removed = append(m.removed, slot)
	return nil
}

func (m *mockPipeline) SetDocumentType(docType domain.DocumentType) error {
	m.docTypes = append(m.docTypes, docType)
	return nil
}

func (m *mockPipeline) SetKycStatus(status domain.KycStatus) {
	m.snap.KycStatus = status
}

func (m *mockPipeline) RefreshStatus(context.Context) (domain.KycStatus, error) {
	return m.status, m.statusErr
}

func (m *mockPipeline) AwaitCompression(context.Context) error {
	return nil
}

func (m *mockPipeline) Submit(context.Context) (driving.UploadTask, error) {
	m.submits++
	return m.task, m.submitErr
}

func (m *mockPipeline) Retry(context.Context) (driving.UploadTask, error) {
	m.retries++
	return m.task, m.submitErr
}

func (m *mockPipeline) Snapshot() domain.PipelineSnapshot {
	return m.snap
}

func (m *mockPipeline) Subscribe(fn func(domain.PipelineSnapshot)) func() {
	m.subscriber = fn
	return func() { m.subscriber = nil }
}

func (m *mockPipeline) Reset() error {
	m.resets++
	return nil
}

func (m *mockPipeline) Close() error {
	return nil
}

type mockLoader struct {
	paths []string
	err   error
}

func (m *mockLoader) Load(_ context.Context, path string) (domain.ImageFile, error) {
	m.paths = append(m.paths, path)
	if m.err != nil {
		return domain.ImageFile{}, m.err
	}
	return domain.ImageFile{Name: path, MIMEType: domain.MIMEPNG, Data: make([]byte, 2048)}, nil
}

type fakeTask struct {
	progress chan int
	done     chan struct{}
	attempt  domain.SubmissionAttempt
	err      error
}

func newFakeTask(values ...int) *fakeTask {
	t := &fakeTask{progress: make(chan int, len(values)), done: make(chan struct{})}
	for _, v := range values {
		t.progress <- v
	}
	close(t.progress)
	close(t.done)
	return t
}

func (t *fakeTask) Attempt() int { return t.attempt.Number }

func (t *fakeTask) Progress() <-chan int { return t.progress }

func (t *fakeTask) Done() <-chan struct{} { return t.done }

func (t *fakeTask) Wait(context.Context) (domain.SubmissionAttempt, error) {
	return t.attempt, t.err
}

func idleSnapshot() domain.PipelineSnapshot {
	return domain.PipelineSnapshot{
		Phase:        domain.PhaseIdle,
		DocumentType: domain.DefaultDocumentType,
		KycStatus:    domain.KycUnverified,
		MaxAttempts:  domain.MaxAttempts,
	}
}

func readySnapshot() domain.PipelineSnapshot {
	snap := idleSnapshot()
	for _, slot := range domain.AllSlots() {
		snap.Slots[slot] = domain.SlotState{
			Slot:         slot,
			Status:       domain.SlotReady,
			FileName:     slot.String() + ".jpg",
			Size:         1500,
			OriginalSize: 4000,
		}
	}
	return snap
}

func newTestView(p *mockPipeline, l *mockLoader) *View {
	v := NewView(nil, nil, p, l, nil)
	v.SetDimensions(100, 40)
	return v
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	case "ctrl+d":
		return tea.KeyMsg{Type: tea.KeyCtrlD}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewView_AppliesInitialSnapshot(t *testing.T) {
	p := &mockPipeline{snap: idleSnapshot()}
	v := newTestView(p, &mockLoader{})

	assert.Equal(t, domain.DefaultDocumentType, v.Snapshot().DocumentType)
	assert.Equal(t, 0, v.Focus())
	for _, slot := range domain.AllSlots() {
		assert.False(t, v.Input(slot).Disabled())
	}
}

func TestView_NotReadyBeforeSize(t *testing.T) {
	v := NewView(nil, nil, &mockPipeline{snap: idleSnapshot()}, &mockLoader{}, nil)
	assert.Equal(t, "Initialising...", v.View())
}

func TestView_VerifiedLocksForm(t *testing.T) {
	snap := idleSnapshot()
	snap.KycStatus = domain.KycVerified
	p := &mockPipeline{snap: snap}
	v := newTestView(p, &mockLoader{})

	for _, slot := range domain.AllSlots() {
		assert.True(t, v.Input(slot).Disabled())
	}
	assert.Contains(t, v.View(), "Your KYC has been verified.")

	v, _ = v.Update(key("right"))
	assert.Empty(t, p.docTypes)

	v, cmd := v.Update(key("ctrl+s"))
	assert.Nil(t, cmd)
	assert.Zero(t, p.submits)
	assert.NoError(t, v.Err())
}

func TestView_FocusCycles(t *testing.T) {
	v := newTestView(&mockPipeline{snap: idleSnapshot()}, &mockLoader{})

	v, _ = v.Update(key("tab"))
	assert.Equal(t, 1, v.Focus())
	assert.True(t, v.Input(domain.SlotFront).Focused())

	v, _ = v.Update(key("tab"))
	v, _ = v.Update(key("tab"))
	v, _ = v.Update(key("tab"))
	assert.Equal(t, 0, v.Focus())

	v, _ = v.Update(key("shift+tab"))
	assert.Equal(t, 3, v.Focus())
	assert.True(t, v.Input(domain.SlotSelfie).Focused())
	assert.False(t, v.Input(domain.SlotFront).Focused())
}

func TestView_CycleDocumentType(t *testing.T) {
	p := &mockPipeline{snap: idleSnapshot()}
	v := newTestView(p, &mockLoader{})

	v, _ = v.Update(key("right"))
	v, _ = v.Update(key("left"))
	v, _ = v.Update(key("left"))

	assert.Equal(t, []domain.DocumentType{
		domain.DocumentNationalID,
		domain.DocumentDriversLicense,
		domain.DocumentVotersCard,
	}, p.docTypes)
	assert.Equal(t, domain.DocumentVotersCard, v.Snapshot().DocumentType)
}

func TestView_SelectEmptyPath(t *testing.T) {
	p := &mockPipeline{snap: idleSnapshot()}
	v := newTestView(p, &mockLoader{})

	v, _ = v.Update(key("tab"))
	v, cmd := v.Update(key("enter"))

	assert.Nil(t, cmd)
	assert.ErrorIs(t, v.SlotErr(domain.SlotFront), domain.ErrInvalidInput)
	assert.Empty(t, p.selected)
}

func TestView_SelectFileLoadsAndSelects(t *testing.T) {
	p := &mockPipeline{snap: idleSnapshot()}
	l := &mockLoader{}
	v := newTestView(p, l)

	v, _ = v.Update(key("tab"))
	v, _ = v.Update(key("tab"))
	v.Input(domain.SlotBack).SetValue(" /tmp/back.png ")

	v, cmd := v.Update(key("enter"))
	require.NotNil(t, cmd)

	msg, ok := cmd().(messages.FileSelected)
	require.True(t, ok)
	assert.Equal(t, domain.SlotBack, msg.Slot)
	assert.NoError(t, msg.Err)
	assert.Equal(t, []string{"/tmp/back.png"}, l.paths)
	assert.Equal(t, []domain.Slot{domain.SlotBack}, p.selected)

	v, _ = v.Update(msg)
	assert.NoError(t, v.SlotErr(domain.SlotBack))
}

func TestView_SelectFileLoadError(t *testing.T) {
	p := &mockPipeline{snap: idleSnapshot()}
	l := &mockLoader{err: domain.ErrUnsupportedType}
	v := newTestView(p, l)

	v, _ = v.Update(key("tab"))
	v.Input(domain.SlotFront).SetValue("notes.txt")
	_, cmd := v.Update(key("enter"))
	require.NotNil(t, cmd)

	msg := cmd().(messages.FileSelected)
	assert.ErrorIs(t, msg.Err, domain.ErrUnsupportedType)
	assert.Empty(t, p.selected)

	v, _ = v.Update(msg)
	assert.Contains(t, v.View(), "File must be JPEG, PNG, or WebP")
}

func TestView_RemoveFile(t *testing.T) {
	p := &mockPipeline{snap: readySnapshot()}
	v := newTestView(p, &mockLoader{})

	v, _ = v.Update(key("tab"))
	v.Input(domain.SlotFront).SetValue("/tmp/front.jpg")
	v, _ = v.Update(key("ctrl+d"))

	assert.Equal(t, []domain.Slot{domain.SlotFront}, p.removed)
	assert.Empty(t, v.Input(domain.SlotFront).Value())
}

func TestView_SubmitIncomplete(t *testing.T) {
	p := &mockPipeline{snap: idleSnapshot()}
	v := newTestView(p, &mockLoader{})

	v, cmd := v.Update(key("ctrl+s"))
	assert.Nil(t, cmd)
	assert.ErrorIs(t, v.Err(), domain.ErrIncompleteSubmission)
	assert.Contains(t, v.View(), "Please select all required files")
}

func TestView_SubmitAndProgress(t *testing.T) {
	task := newFakeTask(10, 60, 100)
	task.attempt = domain.SubmissionAttempt{Number: 1, Outcome: domain.OutcomeSucceeded, StatusCode: 200}
	p := &mockPipeline{snap: readySnapshot(), task: task}
	v := newTestView(p, &mockLoader{})

	assert.Contains(t, v.View(), "4.0 kB → 1.5 kB")

	_, cmd := v.Update(key("ctrl+s"))
	require.NotNil(t, cmd)
	started := cmd().(messages.UploadStarted)
	require.NoError(t, started.Err)
	assert.Equal(t, 1, p.submits)

	v, cmd = v.Update(started)
	for {
		require.NotNil(t, cmd)
		msg := cmd()
		if finished, ok := msg.(messages.UploadFinished); ok {
			v, _ = v.Update(finished)
			break
		}
		v, cmd = v.Update(msg)
	}

	assert.Equal(t, 100, v.Percent())
	require.NotNil(t, v.LastAttempt())
	assert.Equal(t, domain.OutcomeSucceeded, v.LastAttempt().Outcome)
}

func TestView_ProgressNeverDecreases(t *testing.T) {
	task := newFakeTask()
	v := newTestView(&mockPipeline{snap: readySnapshot()}, &mockLoader{})
	v, _ = v.Update(messages.UploadStarted{Task: task})

	v, _ = v.Update(messages.UploadProgress{Task: task, Percent: 70})
	v, _ = v.Update(messages.UploadProgress{Task: task, Percent: 40})
	assert.Equal(t, 70, v.Percent())

	v, _ = v.Update(messages.UploadProgress{Task: newFakeTask(), Percent: 90})
	assert.Equal(t, 70, v.Percent())
}

func TestView_SubmitError(t *testing.T) {
	p := &mockPipeline{snap: readySnapshot(), submitErr: domain.ErrUploadInProgress}
	v := newTestView(p, &mockLoader{})

	_, cmd := v.Update(key("ctrl+s"))
	v, _ = v.Update(cmd())
	assert.ErrorIs(t, v.Err(), domain.ErrUploadInProgress)
}

func TestView_FailedBanner(t *testing.T) {
	tests := []struct {
		name      string
		attempt   int
		retry     bool
		contains  string
		excludes  string
		retryCall bool
	}{
		{
			name:      "first failure offers retry",
			attempt:   1,
			retry:     true,
			contains:  "Retry Upload (2/3)",
			retryCall: true,
		},
		{
			name:      "second failure offers last retry",
			attempt:   2,
			retry:     true,
			contains:  "Retry Upload (3/3)",
			retryCall: true,
		},
		{
			name:     "exhausted",
			attempt:  3,
			retry:    false,
			contains: "Retry limit reached",
			excludes: "Retry Upload",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := readySnapshot()
			snap.Phase = domain.PhaseFailed
			snap.Attempt = tt.attempt
			snap.RetryAvailable = tt.retry
			snap.Err = domain.NewUploadFailure(domain.ErrServerError, 502, domain.MsgServerError)
			p := &mockPipeline{snap: snap, task: newFakeTask()}
			v := newTestView(p, &mockLoader{})

			out := v.View()
			assert.Contains(t, out, tt.contains)
			assert.Contains(t, out, domain.MsgServerError)
			if tt.excludes != "" {
				assert.NotContains(t, out, tt.excludes)
			}

			_, cmd := v.Update(key("ctrl+r"))
			if tt.retryCall {
				require.NotNil(t, cmd)
				_ = cmd()
				assert.Equal(t, 1, p.retries)
			} else {
				assert.Nil(t, cmd)
			}
		})
	}
}

func TestView_PipelineChangedUpdatesState(t *testing.T) {
	p := &mockPipeline{snap: idleSnapshot()}
	v := newTestView(p, &mockLoader{})

	snap := readySnapshot()
	snap.Phase = domain.PhaseUploading
	snap.Progress = 35
	v, cmd := v.Update(messages.PipelineChanged{Snapshot: snap})

	assert.NotNil(t, cmd)
	assert.Equal(t, 35, v.Percent())
	assert.True(t, v.Input(domain.SlotFront).Disabled())
	assert.Contains(t, v.View(), "Uploading please wait... 35%")
}

func TestView_SuccessAndBack(t *testing.T) {
	snap := idleSnapshot()
	snap.Phase = domain.PhaseSucceeded
	snap.Attempt = 1
	p := &mockPipeline{snap: snap}
	v := newTestView(p, &mockLoader{})

	assert.Contains(t, v.View(), "Documents uploaded successfully!")

	_, cmd := v.Update(key("esc"))
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewMenu}, cmd())
	assert.Equal(t, 1, p.resets)
}

func TestView_RefreshRequested(t *testing.T) {
	refreshes := make(chan struct{}, 1)
	p := &mockPipeline{snap: idleSnapshot(), status: domain.KycPending}
	v := NewView(nil, nil, p, &mockLoader{}, refreshes)
	v.SetDimensions(100, 40)

	refreshes <- struct{}{}
	msg := v.waitForRefresh()()
	assert.Equal(t, messages.RefreshRequested{}, msg)

	_, cmd := v.Update(msg)
	assert.NotNil(t, cmd)

	st := v.refreshStatus()().(messages.StatusRefreshed)
	assert.Equal(t, domain.KycPending, st.Status)
}

func TestView_StatusRefreshError(t *testing.T) {
	p := &mockPipeline{snap: idleSnapshot(), statusErr: errors.New("offline")}
	v := newTestView(p, &mockLoader{})

	v, _ = v.Update(v.refreshStatus()())
	assert.EqualError(t, v.Err(), "offline")
}

func TestView_InitSubscribesOnce(t *testing.T) {
	p := &mockPipeline{snap: idleSnapshot()}
	v := newTestView(p, &mockLoader{})

	assert.NotNil(t, v.Init())
	require.NotNil(t, p.subscriber)
	assert.True(t, v.listening)

	assert.NotNil(t, v.Init())
	assert.NotNil(t, p.subscriber)

	v.Close()
	assert.Nil(t, p.subscriber)
}

func TestView_DeliverKeepsLatest(t *testing.T) {
	v := newTestView(&mockPipeline{snap: idleSnapshot()}, &mockLoader{})

	first := idleSnapshot()
	first.Progress = 10
	second := idleSnapshot()
	second.Progress = 20
	v.deliver(first)
	v.deliver(second)

	msg := v.waitForSnapshot()().(messages.PipelineChanged)
	assert.Equal(t, 20, msg.Snapshot.Progress)
}

func TestView_WaitForSnapshotStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	v := newTestView(&mockPipeline{snap: idleSnapshot()}, &mockLoader{}).WithContext(ctx)
	cancel()

	assert.Nil(t, v.waitForSnapshot()())
}
