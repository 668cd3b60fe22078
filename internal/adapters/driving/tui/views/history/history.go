// Package history provides the submission history view for the TUI.
package history

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/kycup/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/kycup/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/kycup/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/kycup/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/kycup/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/kycup/internal/core/ports/driving"
)

// DefaultLimit is the number of attempts loaded at once.
const DefaultLimit = 50

// View lists recorded submission attempts.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	list      *list.AttemptList
	statusbar *status.Bar

	history driving.HistoryService
	ctx     context.Context

	loading bool
	err     error
	width   int
	height  int
	ready   bool
}

// NewView creates a new history view. history may be nil when no store is configured.
func NewView(s *styles.Styles, km *keymap.KeyMap, history driving.HistoryService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	bar := status.NewBar(s, km)
	bar.SetState(status.StateHistory)

	return &View{
		styles:    s,
		keymap:    km,
		list:      list.NewAttemptList(s),
		statusbar: bar,
		history:   history,
		ctx:       context.Background(),
		width:     80,
		height:    24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the attempts.
func (v *View) Init() tea.Cmd {
	return v.load()
}

func (v *View) load() tea.Cmd {
	if v.history == nil {
		return nil
	}
	v.loading = true
	history := v.history
	ctx := v.ctx
	return func() tea.Msg {
		attempts, err := history.List(ctx, DefaultLimit)
		return messages.HistoryLoaded{Attempts: attempts, Err: err}
	}
}

// Update handles messages for the history view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.HistoryLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.list.SetAttempts(msg.Attempts)
		}
		v.statusbar.SetCount(v.list.Count())
		return v, nil

	case tea.KeyMsg:
		keyStr := msg.String()
		switch {
		case keymap.Matches(keyStr, v.keymap.Back):
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewMenu}
			}
		case keymap.Matches(keyStr, v.keymap.Refresh):
			return v, v.load()
		case keymap.Matches(keyStr, v.keymap.Up):
			v.list.MoveUp()
		case keymap.Matches(keyStr, v.keymap.Down):
			v.list.MoveDown()
		}
		return v, nil
	}

	return v, nil
}

// View renders the history view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Submission history"))
	b.WriteString("\n\n")

	switch {
	case v.history == nil:
		b.WriteString(v.styles.Muted.Render("History is not available"))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading..."))
	default:
		b.WriteString(v.list.View())
	}

	b.WriteString("\n\n")
	b.WriteString(v.statusbar.View())
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.list.SetDimensions(width, height-4)
	v.statusbar.SetWidth(width)
}

// List returns the attempt list component.
func (v *View) List() *list.AttemptList {
	return v.list
}

// Err returns the last load error.
func (v *View) Err() error {
	return v.err
}
