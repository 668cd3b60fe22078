// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/custodia-labs/kycup/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/kycup/internal/core/domain"
)

// AttemptList displays submission attempts in a navigable list.
type AttemptList struct {
	attempts []domain.SubmissionAttempt
	selected int
	styles   *styles.Styles
	now      func() time.Time
	width    int
	height   int
}

// NewAttemptList creates a new attempt list component.
func NewAttemptList(s *styles.Styles) *AttemptList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &AttemptList{
		styles: s,
		now:    time.Now,
		width:  80,
		height: 10,
	}
}

// Init initialises the list.
func (r *AttemptList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (r *AttemptList) Update(msg tea.Msg) (*AttemptList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			r.MoveUp()
		case "down", "j":
			r.MoveDown()
		}
	}
	return r, nil
}

// View renders the list.
func (r *AttemptList) View() string {
	if len(r.attempts) == 0 {
		return r.styles.Muted.Render("No submissions yet")
	}

	lines := make([]string, 0, len(r.attempts)*2+2)
	lines = append(lines, r.styles.Subtitle.Render(fmt.Sprintf("Submissions (%d)", len(r.attempts))), "")

	// Each attempt takes two lines
	visibleCount := (r.height - 4) / 2
	if visibleCount < 1 {
		visibleCount = 1
	}

	start := 0
	if r.selected >= visibleCount {
		start = r.selected - visibleCount + 1
	}
	end := start + visibleCount
	if end > len(r.attempts) {
		end = len(r.attempts)
	}

	for i := start; i < end; i++ {
		lines = append(lines, r.renderAttempt(i, &r.attempts[i]))
	}

	return strings.Join(lines, "\n")
}

func (r *AttemptList) renderAttempt(index int, a *domain.SubmissionAttempt) string {
	indicator := "  "
	if index == r.selected {
		indicator = "> "
	}

	title := fmt.Sprintf("%s%-24s attempt %d  %s", indicator, a.DocumentType, a.Number, humanize.RelTime(a.StartedAt, r.now(), "ago", "from now"))

	var outcome string
	switch a.Outcome {
	case domain.OutcomeSucceeded:
		outcome = r.styles.Success.Render("accepted")
	case domain.OutcomeFailed:
		outcome = r.styles.Error.Render("failed: " + a.Reason)
	default:
		outcome = r.styles.Warning.Render(fmt.Sprintf("in flight %d%%", a.Progress))
	}

	detail := fmt.Sprintf("    %s", humanize.Bytes(uint64(a.BytesTotal)))
	if a.StatusCode != 0 {
		detail += fmt.Sprintf("  HTTP %d", a.StatusCode)
	}
	if d := a.Duration(); d > 0 {
		detail += "  " + d.Round(time.Millisecond).String()
	}

	if index == r.selected {
		title = r.styles.Selected.Render(title)
	} else {
		title = r.styles.Normal.Render(title)
	}
	return title + "\n" + r.styles.Muted.Render(detail) + "  " + outcome
}

// SetAttempts updates the list.
func (r *AttemptList) SetAttempts(attempts []domain.SubmissionAttempt) {
	r.attempts = attempts
	r.selected = 0
}

// Attempts returns the current attempts.
func (r *AttemptList) Attempts() []domain.SubmissionAttempt {
	return r.attempts
}

// Selected returns the index of the selected attempt.
func (r *AttemptList) Selected() int {
	return r.selected
}

// SelectedAttempt returns the currently selected attempt, or nil if none.
func (r *AttemptList) SelectedAttempt() *domain.SubmissionAttempt {
	if len(r.attempts) == 0 || r.selected < 0 || r.selected >= len(r.attempts) {
		return nil
	}
	return &r.attempts[r.selected]
}

// MoveUp moves selection up.
func (r *AttemptList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown moves selection down.
func (r *AttemptList) MoveDown() {
	if r.selected < len(r.attempts)-1 {
		r.selected++
	}
}

// SetDimensions sets the component dimensions.
func (r *AttemptList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Count returns the number of attempts.
func (r *AttemptList) Count() int {
	return len(r.attempts)
}
