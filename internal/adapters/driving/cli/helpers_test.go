package cli

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/kycup/internal/core/domain"
	"github.com/custodia-labs/kycup/internal/core/ports/driving"
)

// mockPipeline plays back one scripted outcome per upload attempt.
type mockPipeline struct {
	mu        sync.Mutex
	snap      domain.PipelineSnapshot
	status    domain.KycStatus
	statusErr error
	outcomes  []error
	submits   int
	retries   int
	selects   int
	refresh   func()
	closed    bool
}

func newMockPipeline() *mockPipeline {
	return &mockPipeline{
		snap: domain.PipelineSnapshot{
			DocumentType: domain.DefaultDocumentType,
			KycStatus:    domain.KycUnverified,
			MaxAttempts:  domain.MaxAttempts,
		},
		status: domain.KycUnverified,
	}
}

func (m *mockPipeline) SelectFile(_ context.Context, slot domain.Slot, file domain.ImageFile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snap.KycStatus.IsVerified() {
		return domain.ErrAlreadyVerified
	}
	m.selects++
	m.snap.Slots[slot] = domain.SlotState{
		Slot:         slot,
		Status:       domain.SlotReady,
		FileName:     file.Name,
		Size:         file.Size() / 2,
		OriginalSize: file.Size(),
	}
	m.snap.Attempt = 0
	m.snap.Phase = domain.PhaseIdle
	m.snap.RetryAvailable = false
	return nil
}

func (m *mockPipeline) RemoveFile(slot domain.Slot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap.Slots[slot] = domain.SlotState{Slot: slot}
	return nil
}

func (m *mockPipeline) SetDocumentType(docType domain.DocumentType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap.DocumentType = docType
	return nil
}

func (m *mockPipeline) SetKycStatus(status domain.KycStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap.KycStatus = status
}

func (m *mockPipeline) RefreshStatus(context.Context) (domain.KycStatus, error) {
	if m.statusErr != nil {
		return domain.KycUnknown, m.statusErr
	}
	m.SetKycStatus(m.status)
	return m.status, nil
}

func (m *mockPipeline) AwaitCompression(context.Context) error {
	return nil
}

func (m *mockPipeline) Submit(ctx context.Context) (driving.UploadTask, error) {
	m.mu.Lock()
	m.submits++
	m.mu.Unlock()
	return m.start()
}

func (m *mockPipeline) Retry(ctx context.Context) (driving.UploadTask, error) {
	m.mu.Lock()
	if !m.snap.RetryAvailable {
		m.mu.Unlock()
		return nil, domain.ErrNothingToRetry
	}
	m.retries++
	m.mu.Unlock()
	return m.start()
}

func (m *mockPipeline) start() (driving.UploadTask, error) {
	m.mu.Lock()
	if m.snap.Attempt >= m.snap.MaxAttempts {
		m.mu.Unlock()
		return nil, domain.ErrRetryExhausted
	}
	m.snap.Attempt++
	number := m.snap.Attempt

	var outcome error
	if number <= len(m.outcomes) {
		outcome = m.outcomes[number-1]
	}

	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	attempt := domain.SubmissionAttempt{
		ID:           "attempt",
		DocumentType: m.snap.DocumentType,
		Number:       number,
		Progress:     100,
		Outcome:      domain.OutcomeSucceeded,
		StatusCode:   200,
		BytesTotal:   3 * 1024,
		StartedAt:    start,
		FinishedAt:   start.Add(1500 * time.Millisecond),
	}
	if outcome != nil {
		attempt.Outcome = domain.OutcomeFailed
		attempt.Reason = domain.UserMessage(outcome)
		m.snap.Phase = domain.PhaseFailed
		m.snap.Err = outcome
		m.snap.RetryAvailable = number < m.snap.MaxAttempts
	} else {
		m.snap.Phase = domain.PhaseSucceeded
		m.snap.RetryAvailable = false
	}
	refresh := m.refresh
	m.mu.Unlock()

	if outcome == nil && refresh != nil {
		refresh()
	}
	return newFakeTask(attempt, outcome, 0, 40, 80, 100), nil
}

func (m *mockPipeline) Snapshot() domain.PipelineSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap
}

func (m *mockPipeline) Subscribe(func(domain.PipelineSnapshot)) func() {
	return func() {}
}

func (m *mockPipeline) Reset() error {
	return nil
}

func (m *mockPipeline) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

type fakeTask struct {
	attempt  domain.SubmissionAttempt
	err      error
	progress chan int
	done     chan struct{}
}

func newFakeTask(attempt domain.SubmissionAttempt, err error, values ...int) *fakeTask {
	t := &fakeTask{
		attempt:  attempt,
		err:      err,
		progress: make(chan int, len(values)),
		done:     make(chan struct{}),
	}
	for _, v := range values {
		t.progress <- v
	}
	close(t.progress)
	close(t.done)
	return t
}

func (t *fakeTask) Attempt() int {
	return t.attempt.Number
}

func (t *fakeTask) Progress() <-chan int {
	return t.progress
}

func (t *fakeTask) Done() <-chan struct{} {
	return t.done
}

func (t *fakeTask) Wait(context.Context) (domain.SubmissionAttempt, error) {
	return t.attempt, t.err
}

// mockLoader returns a fake JPEG for any path except missing.jpg.
type mockLoader struct {
	mu    sync.Mutex
	paths []string
}

func (m *mockLoader) Load(_ context.Context, path string) (domain.ImageFile, error) {
	m.mu.Lock()
	m.paths = append(m.paths, path)
	m.mu.Unlock()
	if path == "missing.jpg" {
		return domain.ImageFile{}, domain.ErrNotFound
	}
	return domain.ImageFile{Name: path, MIMEType: domain.MIMEJPEG, Data: make([]byte, 4096)}, nil
}

type mockSettingsService struct {
	settings domain.UploadSettings
	values   map[string]string
	token    string
	setErr   error
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{
		settings: domain.DefaultUploadSettings(),
		values:   make(map[string]string),
	}
}

func (m *mockSettingsService) Get() (*domain.UploadSettings, error) {
	s := m.settings
	s.Token = m.token
	return &s, nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *mockSettingsService) Keys() []driving.SettingKey {
	return []driving.SettingKey{
		{Key: "api.base_url", Description: "Platform API base URL"},
		{Key: "upload.timeout_seconds", Description: "Upload timeout in seconds"},
	}
}

func (m *mockSettingsService) SetToken(token string) error {
	if token == "" {
		return domain.ErrInvalidInput
	}
	m.token = token
	return nil
}

func (m *mockSettingsService) GetDefaults() domain.UploadSettings {
	return domain.DefaultUploadSettings()
}

type mockHistoryService struct {
	attempts []domain.SubmissionAttempt
	pruned   int
	keep     int
}

func (m *mockHistoryService) List(_ context.Context, limit int) ([]domain.SubmissionAttempt, error) {
	if limit > 0 && limit < len(m.attempts) {
		return m.attempts[:limit], nil
	}
	return m.attempts, nil
}

func (m *mockHistoryService) Get(_ context.Context, id string) (*domain.SubmissionAttempt, error) {
	for i := range m.attempts {
		if m.attempts[i].ID == id {
			return &m.attempts[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockHistoryService) Prune(_ context.Context, keep int) (int, error) {
	m.keep = keep
	return m.pruned, nil
}

// testEnv exposes the mocks installed by setupTestServices.
type testEnv struct {
	pipeline *mockPipeline
	loader   *mockLoader
	settings *mockSettingsService
	history  *mockHistoryService
}

// setupTestServices installs mock services and resets command flags.
// The returned function restores the previous services.
func setupTestServices() (*testEnv, func()) {
	env := &testEnv{
		pipeline: newMockPipeline(),
		loader:   &mockLoader{},
		settings: newMockSettingsService(),
		history:  &mockHistoryService{},
	}

	oldBootstrap := bootstrap
	oldSettings, oldHistory, oldLoader, oldPipeline, oldClose :=
		settingsService, historyService, imageLoader, newPipeline, closeServices

	bootstrap = nil
	SetServices(&Services{
		Settings: env.settings,
		History:  env.history,
		Loader:   env.loader,
		NewPipeline: func(refresh func()) (driving.DocumentUploadPipeline, error) {
			env.pipeline.refresh = refresh
			return env.pipeline, nil
		},
	})
	resetFlags(rootCmd)

	return env, func() {
		bootstrap = oldBootstrap
		settingsService, historyService, imageLoader, newPipeline, closeServices =
			oldSettings, oldHistory, oldLoader, oldPipeline, oldClose
		resetFlags(rootCmd)
	}
}

// resetFlags restores every flag of cmd and its subcommands to its default.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// execute runs the root command with args and returns its output.
func execute(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}
