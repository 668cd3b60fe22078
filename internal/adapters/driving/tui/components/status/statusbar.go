// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/kycup/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/kycup/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/kycup/internal/core/domain"
)

// State represents the current form state for display.
type State string

const (
	StateReady       State = "ready"
	StateCompressing State = "compressing"
	StateUploading   State = "uploading"
	StateFailed      State = "failed"
	StateSubmitted   State = "submitted"
	StateVerified    State = "verified"
	StateHistory     State = "history"
)

// Bar displays the form state and keybinding hints.
type Bar struct {
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	state    State
	message  string
	ready    int
	progress int
	count    int
	width    int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		width:  80,
	}
}

// Init initialises the status bar.
func (s *Bar) Init() tea.Cmd {
	return nil
}

// Update handles status bar messages.
func (s *Bar) Update(msg tea.Msg) (*Bar, tea.Cmd) {
	// Bar is passive, updated via Set methods
	return s, nil
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	padding := s.width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

func (s *Bar) renderLeft() string {
	switch s.state {
	case StateCompressing:
		return s.styles.Warning.Render("Compressing images...")
	case StateUploading:
		return s.styles.Normal.Render(fmt.Sprintf("Uploading... %d%%", s.progress))
	case StateFailed:
		if s.message != "" {
			return s.styles.Error.Render("Error: " + s.message)
		}
		return s.styles.Error.Render("Upload failed")
	case StateSubmitted:
		return s.styles.Success.Render("Documents submitted")
	case StateVerified:
		return s.styles.Success.Render("Verified")
	case StateHistory:
		return s.styles.Normal.Render(fmt.Sprintf("%d attempts", s.count))
	case StateReady:
		return s.styles.Muted.Render(fmt.Sprintf("%d/%d ready", s.ready, domain.SlotCount))
	}
	return s.styles.Muted.Render("Ready")
}

func (s *Bar) renderRight() string {
	var bindings []key.Binding
	switch s.state {
	case StateFailed:
		bindings = s.keymap.FailedHelp()
	case StateHistory:
		bindings = s.keymap.HistoryHelp()
	case StateReady, StateCompressing:
		bindings = s.keymap.FormHelp()
	default:
		bindings = s.keymap.ShortHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetSnapshot derives the state from a pipeline snapshot.
func (s *Bar) SetSnapshot(snap domain.PipelineSnapshot) {
	s.message = ""
	s.progress = snap.Progress
	s.ready = 0
	for _, st := range snap.Slots {
		if st.Status == domain.SlotReady {
			s.ready++
		}
	}

	switch {
	case snap.KycStatus.IsVerified():
		s.state = StateVerified
	case snap.Phase == domain.PhaseUploading:
		s.state = StateUploading
	case snap.Phase == domain.PhaseSucceeded:
		s.state = StateSubmitted
	case snap.Phase == domain.PhaseFailed:
		s.state = StateFailed
		s.message = domain.UserMessage(snap.Err)
	case snap.Compressing():
		s.state = StateCompressing
	default:
		s.state = StateReady
	}
}

// SetState sets the current state.
func (s *Bar) SetState(state State) {
	s.state = state
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// SetMessage sets a custom message.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetCount sets the number of history entries.
func (s *Bar) SetCount(count int) {
	s.count = count
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}

// Clear resets the status bar to default state.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
	s.ready = 0
	s.progress = 0
	s.count = 0
}
