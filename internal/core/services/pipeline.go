package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/kycup/internal/core/domain"
	"github.com/custodia-labs/kycup/internal/core/ports/driven"
	"github.com/custodia-labs/kycup/internal/core/ports/driving"
	"github.com/custodia-labs/kycup/internal/logger"
)

// Ensure UploadPipeline implements the interface.
var _ driving.DocumentUploadPipeline = (*UploadPipeline)(nil)

// Dependency errors returned by PipelineDeps.Validate.
var (
	ErrMissingCompressor = errors.New("pipeline: image compressor is required")
	ErrMissingTransport  = errors.New("pipeline: upload transport is required")
	ErrMissingPreviews   = errors.New("pipeline: preview store is required")
	ErrMissingRefresh    = errors.New("pipeline: refresh hook is required")
)

// PipelineDeps holds the adapters the pipeline drives.
type PipelineDeps struct {
	Compressor driven.ImageCompressor
	Transport  driven.UploadTransport
	Previews   driven.PreviewStore

	// Status is optional. Without it RefreshStatus returns the last known status.
	Status driven.KycStatusProvider

	// Attempts is optional. Without it attempts are not recorded.
	Attempts driven.AttemptStore

	// Refresh is invoked once, RefreshDelay after a successful upload.
	Refresh func()
}

// Validate checks that all required dependencies are set.
func (d PipelineDeps) Validate() error {
	switch {
	case d.Compressor == nil:
		return ErrMissingCompressor
	case d.Transport == nil:
		return ErrMissingTransport
	case d.Previews == nil:
		return ErrMissingPreviews
	case d.Refresh == nil:
		return ErrMissingRefresh
	}
	return nil
}

// PipelineOption configures an UploadPipeline.
type PipelineOption func(*UploadPipeline)

// WithClock sets the time source used for attempt timestamps.
func WithClock(now func() time.Time) PipelineOption {
	return func(p *UploadPipeline) {
		p.now = now
	}
}

// WithIDGenerator sets the attempt ID generator.
func WithIDGenerator(newID func() string) PipelineOption {
	return func(p *UploadPipeline) {
		p.newID = newID
	}
}

// slotEntry is the mutable state behind one slot.
// token identifies the selection currently owning the slot; a compression
// result whose token no longer matches is discarded.
type slotEntry struct {
	status    domain.SlotStatus
	token     uint64
	candidate *domain.UploadCandidate
	pending   string
}

// UploadPipeline validates, compresses and uploads the three KYC images.
type UploadPipeline struct {
	deps     PipelineDeps
	settings domain.UploadSettings
	now      func() time.Time
	newID    func() string

	mu          sync.Mutex
	slots       [domain.SlotCount]slotEntry
	tokens      uint64
	docType     domain.DocumentType
	kyc         domain.KycStatus
	phase       domain.UploadPhase
	attempt     int
	progress    int
	lastErr     error
	closed      bool
	refresh     *time.Timer
	changed     chan struct{}
	subscribers map[int]func(domain.PipelineSnapshot)
	nextSubID   int

	// pubMu orders publishes so subscribers see snapshots in state order.
	// published is the last snapshot delivered to every subscriber.
	pubMu     sync.Mutex
	published domain.PipelineSnapshot
}

// NewUploadPipeline creates a pipeline in the idle state with empty slots.
func NewUploadPipeline(
	deps PipelineDeps,
	settings domain.UploadSettings,
	opts ...PipelineOption,
) (*UploadPipeline, error) {
	if err := deps.Validate(); err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline settings: %w", err)
	}

	p := &UploadPipeline{
		deps:        deps,
		settings:    settings,
		now:         time.Now,
		newID:       uuid.NewString,
		docType:     domain.DefaultDocumentType,
		kyc:         domain.KycUnknown,
		changed:     make(chan struct{}),
		subscribers: make(map[int]func(domain.PipelineSnapshot)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// SelectFile validates file and starts compressing it into slot.
func (p *UploadPipeline) SelectFile(ctx context.Context, slot domain.Slot, file domain.ImageFile) error {
	if !slot.IsValid() {
		return fmt.Errorf("%w: slot %d", domain.ErrInvalidInput, slot)
	}

	p.mu.Lock()
	if err := p.guardEditLocked(); err != nil {
		p.mu.Unlock()
		return err
	}
	if err := domain.ValidateImage(file, p.settings.AllowedTypes, p.settings.MinFileSize); err != nil {
		p.lastErr = err
		p.mu.Unlock()
		p.publish()
		return err
	}

	p.tokens++
	token := p.tokens
	entry := &p.slots[slot]
	entry.status = domain.SlotCompressing
	entry.token = token
	entry.pending = file.Name

	// A new selection starts a fresh submission.
	p.attempt = 0
	p.lastErr = nil
	if p.phase == domain.PhaseFailed {
		p.phase = domain.PhaseIdle
	}
	p.mu.Unlock()

	logger.Debug("selected %s for %s slot (%d bytes)", file.Name, slot, file.Size())
	p.publish()

	go p.compress(ctx, slot, token, file)
	return nil
}

// compress runs off the caller's goroutine and commits only if the
// selection that started it still owns the slot.
func (p *UploadPipeline) compress(ctx context.Context, slot domain.Slot, token uint64, file domain.ImageFile) {
	start := time.Now()
	compressed, err := p.deps.Compressor.Compress(ctx, file, p.settings.Compression)
	degraded := false
	if err != nil {
		logger.Warn("compression failed for %s slot (%s): %v, uploading original", slot, file.Name, err)
		compressed = file
		degraded = true
	} else {
		logger.Elapsed(fmt.Sprintf("compress %s (%d -> %d bytes)", slot, file.Size(), compressed.Size()), start)
	}

	if !p.owns(slot, token) {
		logger.Debug("discarding stale compression for %s slot", slot)
		return
	}

	handle, err := p.deps.Previews.Create(ctx, slot, compressed)
	if err != nil {
		logger.Warn("preview for %s slot: %v", slot, err)
		handle = ""
	}

	p.mu.Lock()
	if !p.ownsLocked(slot, token) {
		p.mu.Unlock()
		logger.Debug("discarding stale compression for %s slot", slot)
		p.release(handle)
		return
	}
	entry := &p.slots[slot]
	var previous domain.PreviewHandle
	if entry.candidate != nil {
		previous = entry.candidate.Preview
	}
	entry.candidate = &domain.UploadCandidate{
		Slot:       slot,
		Raw:        file,
		Compressed: compressed,
		Preview:    handle,
		Degraded:   degraded,
	}
	entry.status = domain.SlotReady
	entry.pending = ""
	p.mu.Unlock()

	p.release(previous)
	p.publish()
}

func (p *UploadPipeline) owns(slot domain.Slot, token uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ownsLocked(slot, token)
}

func (p *UploadPipeline) ownsLocked(slot domain.Slot, token uint64) bool {
	return !p.closed && p.slots[slot].token == token && p.slots[slot].status == domain.SlotCompressing
}

// RemoveFile clears slot and releases its preview.
func (p *UploadPipeline) RemoveFile(slot domain.Slot) error {
	if !slot.IsValid() {
		return fmt.Errorf("%w: slot %d", domain.ErrInvalidInput, slot)
	}

	p.mu.Lock()
	if err := p.guardEditLocked(); err != nil {
		p.mu.Unlock()
		return err
	}
	handle := p.clearSlotLocked(slot)
	p.mu.Unlock()

	p.release(handle)
	p.publish()
	return nil
}

// clearSlotLocked empties slot, invalidates pending compression and
// returns the preview the caller must release.
func (p *UploadPipeline) clearSlotLocked(slot domain.Slot) domain.PreviewHandle {
	entry := &p.slots[slot]
	var handle domain.PreviewHandle
	if entry.candidate != nil {
		handle = entry.candidate.Preview
	}
	p.tokens++
	*entry = slotEntry{status: domain.SlotEmpty, token: p.tokens}
	return handle
}

func (p *UploadPipeline) clearAllLocked() []domain.PreviewHandle {
	handles := make([]domain.PreviewHandle, 0, domain.SlotCount)
	for _, slot := range domain.AllSlots() {
		if h := p.clearSlotLocked(slot); h != "" {
			handles = append(handles, h)
		}
	}
	return handles
}

// SetDocumentType selects the document being submitted.
func (p *UploadPipeline) SetDocumentType(docType domain.DocumentType) error {
	if !docType.IsValid() {
		return fmt.Errorf("%w: document type %q", domain.ErrInvalidInput, string(docType))
	}

	p.mu.Lock()
	if err := p.guardEditLocked(); err != nil {
		p.mu.Unlock()
		return err
	}
	p.docType = docType
	p.mu.Unlock()

	p.publish()
	return nil
}

// SetKycStatus records the account status supplied by the caller.
func (p *UploadPipeline) SetKycStatus(status domain.KycStatus) {
	p.mu.Lock()
	p.kyc = status
	p.mu.Unlock()
	p.publish()
}

// RefreshStatus pulls the account status from the configured provider.
func (p *UploadPipeline) RefreshStatus(ctx context.Context) (domain.KycStatus, error) {
	if p.deps.Status == nil {
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.kyc, nil
	}

	status, err := p.deps.Status.Status(ctx)
	if err != nil {
		return domain.KycUnknown, fmt.Errorf("refresh kyc status: %w", err)
	}
	logger.Debug("kyc status: %s", status)
	p.SetKycStatus(status)
	return status, nil
}

// AwaitCompression blocks until no slot is compressing.
func (p *UploadPipeline) AwaitCompression(ctx context.Context) error {
	for {
		p.mu.Lock()
		busy := p.published.Compressing()
		changed := p.changed
		closed := p.closed
		p.mu.Unlock()

		if closed {
			return domain.ErrPipelineClosed
		}
		if !busy {
			return nil
		}

		select {
		case <-changed:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Submit starts an upload of the three compressed slots.
func (p *UploadPipeline) Submit(ctx context.Context) (driving.UploadTask, error) {
	p.mu.Lock()
	if err := p.guardSubmitLocked(); err != nil {
		p.mu.Unlock()
		return nil, err
	}
	if missing := p.missingSlotsLocked(); len(missing) > 0 {
		err := fmt.Errorf("%w: %s", domain.ErrIncompleteSubmission, strings.Join(missing, ", "))
		p.lastErr = err
		p.mu.Unlock()
		p.publish()
		return nil, err
	}
	task := p.startLocked(ctx)
	p.mu.Unlock()

	p.publish()
	return task, nil
}

// Retry re-runs a failed upload with the retained files.
func (p *UploadPipeline) Retry(ctx context.Context) (driving.UploadTask, error) {
	p.mu.Lock()
	if err := p.guardSubmitLocked(); err != nil {
		p.mu.Unlock()
		return nil, err
	}
	if p.phase != domain.PhaseFailed {
		p.mu.Unlock()
		return nil, domain.ErrNothingToRetry
	}
	if missing := p.missingSlotsLocked(); len(missing) > 0 {
		p.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", domain.ErrIncompleteSubmission, strings.Join(missing, ", "))
	}
	logger.Info("retrying upload (attempt %d of %d)", p.attempt+1, p.settings.MaxAttempts)
	task := p.startLocked(ctx)
	p.mu.Unlock()

	p.publish()
	return task, nil
}

func (p *UploadPipeline) guardEditLocked() error {
	switch {
	case p.closed:
		return domain.ErrPipelineClosed
	case p.kyc.IsVerified():
		return domain.ErrAlreadyVerified
	case p.phase == domain.PhaseUploading:
		return domain.ErrUploadInProgress
	case p.phase == domain.PhaseSucceeded:
		return domain.ErrPipelineCompleted
	}
	return nil
}

func (p *UploadPipeline) guardSubmitLocked() error {
	if err := p.guardEditLocked(); err != nil {
		return err
	}
	if p.attempt >= p.settings.MaxAttempts {
		return domain.ErrRetryExhausted
	}
	return nil
}

func (p *UploadPipeline) missingSlotsLocked() []string {
	var missing []string
	for _, slot := range domain.AllSlots() {
		if p.slots[slot].status != domain.SlotReady {
			missing = append(missing, slot.String())
		}
	}
	return missing
}

// startLocked moves to uploading and launches the attempt.
func (p *UploadPipeline) startLocked(ctx context.Context) *uploadTask {
	p.attempt++
	p.phase = domain.PhaseUploading
	p.progress = 0
	p.lastErr = nil

	req := domain.UploadRequest{DocumentType: p.docType}
	for _, slot := range domain.AllSlots() {
		req.Files[slot] = p.slots[slot].candidate.Compressed
	}

	attempt := domain.SubmissionAttempt{
		ID:           p.newID(),
		DocumentType: p.docType,
		Number:       p.attempt,
		Outcome:      domain.OutcomeInFlight,
		BytesTotal:   req.TotalBytes(),
		StartedAt:    p.now(),
	}
	task := newUploadTask(attempt.Number)

	go p.run(ctx, req, attempt, task)
	return task
}

// run performs one upload attempt and commits its outcome.
func (p *UploadPipeline) run(ctx context.Context, req domain.UploadRequest, attempt domain.SubmissionAttempt, task *uploadTask) {
	logger.Section(fmt.Sprintf("Upload attempt %d", attempt.Number))
	logger.Info("uploading %s (%d bytes) to %s", req.DocumentType, attempt.BytesTotal, p.settings.UploadURL())
	p.record(ctx, attempt)

	uploadCtx, cancel := context.WithTimeout(ctx, p.settings.Timeout)
	defer cancel()

	resp, err := p.deps.Transport.Upload(uploadCtx, req, func(progress domain.Progress) {
		p.reportProgress(task, progress.Percent())
	})
	outcome := classifyOutcome(uploadCtx, resp, err)

	p.finish(ctx, attempt, task, outcome)
}

// classifyOutcome maps a transport result to nil or a classified failure.
func classifyOutcome(ctx context.Context, resp *domain.UploadResponse, err error) error {
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return domain.NewUploadFailure(domain.ErrUploadTimeout, 0, domain.MsgUploadTimeout)
		}
		var failure *domain.UploadFailure
		if errors.As(err, &failure) {
			return failure
		}
		logger.Debug("transport error: %v", err)
		return domain.NewUploadFailure(domain.ErrConnectivityLost, 0, domain.MsgConnectivityLost)
	}
	if resp == nil {
		return domain.NewUploadFailure(domain.ErrConnectivityLost, 0, domain.MsgConnectivityLost)
	}
	return domain.ClassifyUploadResponse(resp.StatusCode, resp.Body)
}

func (p *UploadPipeline) reportProgress(task *uploadTask, percent int) {
	p.mu.Lock()
	if p.phase != domain.PhaseUploading || percent <= p.progress {
		p.mu.Unlock()
		return
	}
	p.progress = percent
	p.mu.Unlock()

	task.push(percent)
	p.publish()
}

func (p *UploadPipeline) finish(ctx context.Context, attempt domain.SubmissionAttempt, task *uploadTask, outcome error) {
	var released []domain.PreviewHandle

	p.mu.Lock()
	attempt.FinishedAt = p.now()
	if outcome == nil {
		p.phase = domain.PhaseSucceeded
		p.progress = 100
		p.lastErr = nil
		released = p.clearAllLocked()
		if !p.closed {
			p.refresh = time.AfterFunc(p.settings.RefreshDelay, p.deps.Refresh)
		}
		attempt.Outcome = domain.OutcomeSucceeded
		attempt.StatusCode = 200
	} else {
		p.phase = domain.PhaseFailed
		p.lastErr = outcome
		attempt.Outcome = domain.OutcomeFailed
		attempt.Reason = domain.UserMessage(outcome)
		var failure *domain.UploadFailure
		if errors.As(outcome, &failure) {
			attempt.StatusCode = failure.StatusCode
		}
	}
	attempt.Progress = p.progress
	p.mu.Unlock()

	if outcome == nil {
		logger.Info("upload attempt %d succeeded", attempt.Number)
		task.push(100)
	} else {
		logger.Warn("upload attempt %d failed: %v", attempt.Number, outcome)
	}

	for _, h := range released {
		p.release(h)
	}
	p.record(context.WithoutCancel(ctx), attempt)
	p.publish()
	task.finish(attempt, outcome)
}

func (p *UploadPipeline) record(ctx context.Context, attempt domain.SubmissionAttempt) {
	if p.deps.Attempts == nil {
		return
	}
	if err := p.deps.Attempts.Save(ctx, attempt); err != nil {
		logger.Warn("record attempt %s: %v", attempt.ID, err)
	}
}

func (p *UploadPipeline) release(handle domain.PreviewHandle) {
	if handle == "" {
		return
	}
	if err := p.deps.Previews.Release(handle); err != nil {
		logger.Warn("release preview %s: %v", handle, err)
	}
}

// Snapshot returns a consistent copy of the pipeline state.
func (p *UploadPipeline) Snapshot() domain.PipelineSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

func (p *UploadPipeline) snapshotLocked() domain.PipelineSnapshot {
	snap := domain.PipelineSnapshot{
		Phase:        p.phase,
		DocumentType: p.docType,
		KycStatus:    p.kyc,
		Attempt:      p.attempt,
		MaxAttempts:  p.settings.MaxAttempts,
		Progress:     p.progress,
		Err:          p.lastErr,
	}
	snap.RetryAvailable = p.phase == domain.PhaseFailed &&
		p.attempt < p.settings.MaxAttempts &&
		!p.kyc.IsVerified()

	for _, slot := range domain.AllSlots() {
		entry := p.slots[slot]
		state := domain.SlotState{Slot: slot, Status: entry.status}
		if entry.candidate != nil {
			state.FileName = entry.candidate.Raw.Name
			state.Size = entry.candidate.Compressed.Size()
			state.OriginalSize = entry.candidate.Raw.Size()
			state.Preview = entry.candidate.Preview
			state.Degraded = entry.candidate.Degraded
		}
		if entry.status == domain.SlotCompressing {
			state.FileName = entry.pending
		}
		snap.Slots[slot] = state
	}
	return snap
}

// Subscribe registers fn to receive a snapshot after every state change.
func (p *UploadPipeline) Subscribe(fn func(domain.PipelineSnapshot)) func() {
	p.mu.Lock()
	id := p.nextSubID
	p.nextSubID++
	p.subscribers[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.subscribers, id)
		p.mu.Unlock()
	}
}

// publish notifies subscribers, then wakes AwaitCompression waiters.
// Publishes are serialised, so a later state is never delivered before an
// earlier one. It must be called without holding mu, and subscribers must
// not call methods that change pipeline state.
func (p *UploadPipeline) publish() {
	p.pubMu.Lock()
	defer p.pubMu.Unlock()

	p.mu.Lock()
	snap := p.snapshotLocked()
	subs := make([]func(domain.PipelineSnapshot), 0, len(p.subscribers))
	for _, fn := range p.subscribers {
		subs = append(subs, fn)
	}
	p.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}

	p.mu.Lock()
	p.published = snap
	close(p.changed)
	p.changed = make(chan struct{})
	p.mu.Unlock()
}

// Reset returns a succeeded or failed pipeline to idle with empty slots.
func (p *UploadPipeline) Reset() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return domain.ErrPipelineClosed
	}
	if p.phase == domain.PhaseUploading {
		p.mu.Unlock()
		return domain.ErrUploadInProgress
	}
	released := p.clearAllLocked()
	p.phase = domain.PhaseIdle
	p.attempt = 0
	p.progress = 0
	p.lastErr = nil
	p.stopRefreshLocked()
	p.mu.Unlock()

	for _, h := range released {
		p.release(h)
	}
	p.publish()
	return nil
}

// Close releases every preview and stops the pending refresh.
// An in-flight upload still completes but no longer schedules a refresh.
func (p *UploadPipeline) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	released := p.clearAllLocked()
	p.closed = true
	p.stopRefreshLocked()
	p.mu.Unlock()

	for _, h := range released {
		p.release(h)
	}
	p.publish()
	return nil
}

func (p *UploadPipeline) stopRefreshLocked() {
	if p.refresh != nil {
		p.refresh.Stop()
		p.refresh = nil
	}
}

// uploadTask implements driving.UploadTask.
type uploadTask struct {
	number   int
	progress chan int
	done     chan struct{}

	mu       sync.Mutex
	last     int
	finished bool
	attempt  domain.SubmissionAttempt
	err      error
}

var _ driving.UploadTask = (*uploadTask)(nil)

func newUploadTask(number int) *uploadTask {
	return &uploadTask{
		number:   number,
		progress: make(chan int, 16),
		done:     make(chan struct{}),
	}
}

func (t *uploadTask) Attempt() int {
	return t.number
}

func (t *uploadTask) Progress() <-chan int {
	return t.progress
}

func (t *uploadTask) Done() <-chan struct{} {
	return t.done
}

func (t *uploadTask) Wait(ctx context.Context) (domain.SubmissionAttempt, error) {
	select {
	case <-t.done:
		t.mu.Lock()
		defer t.mu.Unlock()
		return t.attempt, t.err
	case <-ctx.Done():
		return domain.SubmissionAttempt{}, ctx.Err()
	}
}

// push never blocks. When the buffer is full the oldest value is dropped,
// so a slow reader still sees the latest percentage.
func (t *uploadTask) push(percent int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.finished || percent <= t.last {
		return
	}
	t.last = percent
	for {
		select {
		case t.progress <- percent:
			return
		default:
			select {
			case <-t.progress:
			default:
			}
		}
	}
}

func (t *uploadTask) finish(attempt domain.SubmissionAttempt, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.finished {
		return
	}
	t.finished = true
	t.attempt = attempt
	t.err = err
	close(t.progress)
	close(t.done)
}
