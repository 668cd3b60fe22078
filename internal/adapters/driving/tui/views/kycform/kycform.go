// Package kycform provides the KYC document upload view for the TUI.
package kycform

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/custodia-labs/kycup/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/kycup/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/kycup/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/kycup/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/kycup/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/kycup/internal/core/domain"
	"github.com/custodia-labs/kycup/internal/core/ports/driven"
	"github.com/custodia-labs/kycup/internal/core/ports/driving"
)

// focusDocType is the focus index of the document type selector.
// Slot inputs follow at 1..SlotCount.
const focusDocType = 0

// View is the document upload form.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	statusbar *status.Bar
	inputs    [domain.SlotCount]*input.PathInput
	progress  progress.Model
	spinner   spinner.Model

	pipeline  driving.DocumentUploadPipeline
	loader    driven.ImageLoader
	refreshes <-chan struct{}
	ctx       context.Context

	snapshots   chan domain.PipelineSnapshot
	unsubscribe func()
	listening   bool

	snap     domain.PipelineSnapshot
	focus    int
	task     driving.UploadTask
	percent  int
	slotErrs [domain.SlotCount]error
	err      error
	last     *domain.SubmissionAttempt

	width  int
	height int
	ready  bool
}

// NewView creates a new upload form bound to pipeline.
// refreshes may be nil when no refresh hook is wired to the TUI.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	pipeline driving.DocumentUploadPipeline,
	loader driven.ImageLoader,
	refreshes <-chan struct{},
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	theme := s.Theme()
	bar := progress.New(progress.WithGradient(theme.ProgressStart, theme.ProgressEnd))
	bar.Width = 50

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = s.Warning

	v := &View{
		styles:    s,
		keymap:    km,
		statusbar: status.NewBar(s, km),
		progress:  bar,
		spinner:   spin,
		pipeline:  pipeline,
		loader:    loader,
		refreshes: refreshes,
		ctx:       context.Background(),
		snapshots: make(chan domain.PipelineSnapshot, 1),
		width:     80,
		height:    24,
	}
	for _, slot := range domain.AllSlots() {
		v.inputs[slot] = input.NewPathInput(s, slot)
	}
	if pipeline != nil {
		v.applySnapshot(pipeline.Snapshot())
	}
	return v
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init subscribes to the pipeline on first use and refreshes the KYC status.
func (v *View) Init() tea.Cmd {
	cmds := []tea.Cmd{v.spinner.Tick, v.refreshStatus()}
	if !v.listening && v.pipeline != nil {
		v.listening = true
		v.unsubscribe = v.pipeline.Subscribe(v.deliver)
		cmds = append(cmds, v.waitForSnapshot())
		if v.refreshes != nil {
			cmds = append(cmds, v.waitForRefresh())
		}
	}
	cmds = append(cmds, v.setFocus(v.focus))
	return tea.Batch(cmds...)
}

// Close removes the pipeline subscription.
func (v *View) Close() {
	if v.unsubscribe != nil {
		v.unsubscribe()
		v.unsubscribe = nil
	}
}

// deliver keeps only the latest snapshot in the buffer.
func (v *View) deliver(snap domain.PipelineSnapshot) {
	for {
		select {
		case v.snapshots <- snap:
			return
		default:
		}
		select {
		case <-v.snapshots:
		default:
		}
	}
}

func (v *View) waitForSnapshot() tea.Cmd {
	ch := v.snapshots
	ctx := v.ctx
	return func() tea.Msg {
		select {
		case snap := <-ch:
			return messages.PipelineChanged{Snapshot: snap}
		case <-ctx.Done():
			return nil
		}
	}
}

func (v *View) waitForRefresh() tea.Cmd {
	ch := v.refreshes
	ctx := v.ctx
	return func() tea.Msg {
		select {
		case _, ok := <-ch:
			if !ok {
				return nil
			}
			return messages.RefreshRequested{}
		case <-ctx.Done():
			return nil
		}
	}
}

func (v *View) waitForProgress(task driving.UploadTask) tea.Cmd {
	ctx := v.ctx
	return func() tea.Msg {
		if percent, ok := <-task.Progress(); ok {
			return messages.UploadProgress{Task: task, Percent: percent}
		}
		attempt, err := task.Wait(ctx)
		return messages.UploadFinished{Attempt: attempt, Err: err}
	}
}

func (v *View) refreshStatus() tea.Cmd {
	if v.pipeline == nil {
		return nil
	}
	pipeline := v.pipeline
	ctx := v.ctx
	return func() tea.Msg {
		st, err := pipeline.RefreshStatus(ctx)
		return messages.StatusRefreshed{Status: st, Err: err}
	}
}

func (v *View) selectFile(slot domain.Slot, path string) tea.Cmd {
	loader := v.loader
	pipeline := v.pipeline
	ctx := v.ctx
	return func() tea.Msg {
		file, err := loader.Load(ctx, path)
		if err == nil {
			err = pipeline.SelectFile(ctx, slot, file)
		}
		return messages.FileSelected{Slot: slot, Path: path, Err: err}
	}
}

func (v *View) submit(retry bool) tea.Cmd {
	pipeline := v.pipeline
	ctx := v.ctx
	return func() tea.Msg {
		var (
			task driving.UploadTask
			err  error
		)
		if retry {
			task, err = pipeline.Retry(ctx)
		} else {
			task, err = pipeline.Submit(ctx)
		}
		return messages.UploadStarted{Task: task, Err: err}
	}
}

// Update handles messages for the form.
//
//nolint:gocyclo // central message handler
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.PipelineChanged:
		v.applySnapshot(msg.Snapshot)
		return v, v.waitForSnapshot()

	case messages.FileSelected:
		v.slotErrs[msg.Slot] = msg.Err
		if msg.Err == nil {
			v.err = nil
		}
		return v, nil

	case messages.UploadStarted:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.last = nil
		v.task = msg.Task
		v.percent = 0
		return v, v.waitForProgress(msg.Task)

	case messages.UploadProgress:
		if msg.Task != v.task {
			return v, nil
		}
		if msg.Percent > v.percent {
			v.percent = msg.Percent
		}
		return v, v.waitForProgress(msg.Task)

	case messages.UploadFinished:
		v.task = nil
		attempt := msg.Attempt
		v.last = &attempt
		return v, nil

	case messages.RefreshRequested:
		return v, tea.Batch(v.refreshStatus(), v.waitForRefresh())

	case messages.StatusRefreshed:
		if msg.Err != nil {
			v.err = msg.Err
		}
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd
	}

	return v, v.forwardToInput(msg)
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	keyStr := msg.String()

	switch {
	case keymap.Matches(keyStr, v.keymap.Back):
		if v.snap.Phase == domain.PhaseSucceeded {
			_ = v.pipeline.Reset()
		}
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}

	case keymap.Matches(keyStr, v.keymap.Down):
		return v, v.setFocus((v.focus + 1) % (domain.SlotCount + 1))

	case keymap.Matches(keyStr, v.keymap.Up):
		return v, v.setFocus((v.focus + domain.SlotCount) % (domain.SlotCount + 1))

	case keymap.Matches(keyStr, v.keymap.Refresh):
		return v, v.refreshStatus()

	case keymap.Matches(keyStr, v.keymap.Submit):
		if !v.snap.CanSubmit() {
			if !v.snap.Locked() && !v.snap.AllReady() {
				v.err = domain.ErrIncompleteSubmission
			}
			return v, nil
		}
		return v, v.submit(false)

	case keymap.Matches(keyStr, v.keymap.Retry):
		if !v.snap.RetryAvailable || v.snap.Compressing() {
			return v, nil
		}
		return v, v.submit(true)
	}

	if v.snap.Locked() {
		return v, nil
	}

	if v.focus == focusDocType {
		switch {
		case keymap.Matches(keyStr, v.keymap.PrevType):
			v.cycleDocumentType(-1)
		case keymap.Matches(keyStr, v.keymap.NextType):
			v.cycleDocumentType(1)
		}
		return v, nil
	}

	slot := domain.Slot(v.focus - 1)
	switch {
	case keymap.Matches(keyStr, v.keymap.Select):
		path := strings.TrimSpace(v.inputs[slot].Value())
		if path == "" {
			v.slotErrs[slot] = fmt.Errorf("%w: enter a file path", domain.ErrInvalidInput)
			return v, nil
		}
		v.slotErrs[slot] = nil
		return v, v.selectFile(slot, path)

	case keymap.Matches(keyStr, v.keymap.Remove):
		if err := v.pipeline.RemoveFile(slot); err != nil {
			v.err = err
			return v, nil
		}
		v.inputs[slot].Reset()
		v.slotErrs[slot] = nil
		return v, nil
	}

	return v, v.forwardToInput(msg)
}

func (v *View) forwardToInput(msg tea.Msg) tea.Cmd {
	if v.focus == focusDocType {
		return nil
	}
	var cmd tea.Cmd
	slot := domain.Slot(v.focus - 1)
	v.inputs[slot], cmd = v.inputs[slot].Update(msg)
	return cmd
}

func (v *View) cycleDocumentType(step int) {
	types := domain.AllDocumentTypes()
	current := 0
	for i, d := range types {
		if d == v.snap.DocumentType {
			current = i
			break
		}
	}
	next := types[(current+step+len(types))%len(types)]
	if err := v.pipeline.SetDocumentType(next); err != nil {
		v.err = err
		return
	}
	v.snap.DocumentType = next
}

func (v *View) setFocus(focus int) tea.Cmd {
	v.focus = focus
	var cmd tea.Cmd
	for i, in := range v.inputs {
		if i+1 == focus {
			cmd = in.Focus()
		} else {
			in.Blur()
		}
	}
	return cmd
}

func (v *View) applySnapshot(snap domain.PipelineSnapshot) {
	v.snap = snap
	if snap.Progress > v.percent || snap.Phase != domain.PhaseUploading {
		v.percent = snap.Progress
	}
	locked := snap.Locked()
	for _, in := range v.inputs {
		in.SetDisabled(locked)
	}
	if !locked {
		for i, in := range v.inputs {
			if i+1 == v.focus {
				_ = in.Focus()
			}
		}
	}
	for _, slot := range domain.AllSlots() {
		if snap.Slot(slot).Status == domain.SlotEmpty && snap.Phase == domain.PhaseSucceeded {
			v.inputs[slot].Reset()
		}
	}
	v.statusbar.SetSnapshot(snap)
}

// View renders the form.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder

	b.WriteString(v.styles.Title.Render("KYC Verification"))
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render("Upload your identification documents to verify your account"))
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render("Status: " + v.snap.KycStatus.Description()))
	b.WriteString("\n\n")

	if v.snap.KycStatus.IsVerified() {
		b.WriteString(v.styles.Confirmation.Render("✓ Your KYC has been verified."))
		b.WriteString("\n\n")
	}

	b.WriteString(v.renderDocumentType())
	b.WriteString("\n\n")

	for _, slot := range domain.AllSlots() {
		b.WriteString(v.inputs[slot].View())
		b.WriteString("\n")
		if line := v.renderSlotState(slot); line != "" {
			b.WriteString("  " + line + "\n")
		}
	}
	b.WriteString("\n")

	if v.snap.Compressing() {
		b.WriteString(v.spinner.View() + " " +
			v.styles.Warning.Render("Compressing images... This improves upload speed."))
		b.WriteString("\n\n")
	}

	if v.snap.Phase == domain.PhaseUploading {
		b.WriteString(v.styles.Normal.Render(fmt.Sprintf("Uploading please wait... %d%%", v.percent)))
		b.WriteString("\n")
		b.WriteString(v.progress.ViewAs(float64(v.percent) / 100))
		b.WriteString("\n\n")
	}

	b.WriteString(v.renderSubmit())
	b.WriteString("\n")

	if banner := v.renderBanner(); banner != "" {
		b.WriteString("\n")
		b.WriteString(banner)
		b.WriteString("\n")
	}

	if v.snap.Phase == domain.PhaseSucceeded {
		b.WriteString("\n")
		b.WriteString(v.styles.Confirmation.Render("✓ Documents uploaded successfully! Updating..."))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.statusbar.View())

	return b.String()
}

func (v *View) renderDocumentType() string {
	label := v.styles.Subtitle.Render("Document type")
	value := fmt.Sprintf("‹ %s ›", v.snap.DocumentType)
	switch {
	case v.snap.Locked():
		value = v.styles.Disabled.Render(value)
	case v.focus == focusDocType:
		value = v.styles.Selected.Render(value)
	default:
		value = v.styles.Normal.Render(value)
	}
	return lipgloss.JoinVertical(lipgloss.Left, label, value)
}

func (v *View) renderSlotState(slot domain.Slot) string {
	if err := v.slotErrs[slot]; err != nil {
		return v.styles.Error.Render("✗ " + domain.UserMessage(err))
	}

	st := v.snap.Slot(slot)
	switch st.Status {
	case domain.SlotCompressing:
		return v.spinner.View() + " " + v.styles.Warning.Render("compressing "+st.FileName)
	case domain.SlotReady:
		sizes := humanize.Bytes(uint64(st.Size))
		if st.OriginalSize > 0 && st.OriginalSize != st.Size {
			sizes = humanize.Bytes(uint64(st.OriginalSize)) + " → " + sizes
		}
		line := v.styles.Success.Render(fmt.Sprintf("✓ %s (%s)", st.FileName, sizes))
		if st.Degraded {
			line += " " + v.styles.Warning.Render("uncompressed")
		}
		return line
	case domain.SlotEmpty:
	}
	return ""
}

func (v *View) renderSubmit() string {
	label := "[ctrl+s] Upload Documents"
	switch {
	case v.snap.Phase == domain.PhaseUploading:
		label = v.spinner.View() + " Uploading..."
	case v.snap.Compressing():
		label = v.spinner.View() + " Compressing Images..."
	}
	if v.snap.CanSubmit() {
		return v.styles.Success.Render(label)
	}
	return v.styles.Disabled.Render(label)
}

func (v *View) renderBanner() string {
	if v.snap.Phase == domain.PhaseFailed {
		lines := []string{"✗ " + domain.UserMessage(v.snap.Err)}
		switch {
		case v.snap.RetryAvailable && !v.snap.Compressing():
			lines = append(lines, fmt.Sprintf("[ctrl+r] Retry Upload (%d/%d)", v.snap.Attempt+1, v.snap.MaxAttempts))
		case !v.snap.RetryAvailable:
			lines = append(lines, "Retry limit reached. Select your files again to start over.")
		}
		return v.styles.Banner.Render(strings.Join(lines, "\n"))
	}
	if v.err != nil {
		return v.styles.Banner.Render("✗ " + domain.UserMessage(v.err))
	}
	return ""
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	for _, in := range v.inputs {
		in.SetWidth(width - 4)
	}
	barWidth := width - 4
	if barWidth > 60 {
		barWidth = 60
	}
	if barWidth < 10 {
		barWidth = 10
	}
	v.progress.Width = barWidth
	v.statusbar.SetWidth(width)
}

// Snapshot returns the last snapshot the form rendered.
func (v *View) Snapshot() domain.PipelineSnapshot {
	return v.snap
}

// Focus returns the focused field index, 0 being the document type.
func (v *View) Focus() int {
	return v.focus
}

// Input returns the path input of slot.
func (v *View) Input(slot domain.Slot) *input.PathInput {
	return v.inputs[slot]
}

// SlotErr returns the last selection error of slot.
func (v *View) SlotErr(slot domain.Slot) error {
	return v.slotErrs[slot]
}

// Err returns the last form-level error.
func (v *View) Err() error {
	return v.err
}

// Percent returns the displayed upload progress.
func (v *View) Percent() int {
	return v.percent
}

// LastAttempt returns the most recently finished attempt, if any.
func (v *View) LastAttempt() *domain.SubmissionAttempt {
	return v.last
}
