// Package input provides text input components for the TUI.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/kycup/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/kycup/internal/core/domain"
)

// PathInput wraps a bubbles textinput for one document slot.
type PathInput struct {
	slot      domain.Slot
	textinput textinput.Model
	styles    *styles.Styles
	disabled  bool
	width     int
}

// NewPathInput creates a path input for slot.
func NewPathInput(s *styles.Styles, slot domain.Slot) *PathInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = "path to " + slot.String() + " image (jpeg, png, webp)"
	ti.CharLimit = 1024
	ti.Width = 50

	return &PathInput{
		slot:      slot,
		textinput: ti,
		styles:    s,
		width:     50,
	}
}

// Init initialises the input.
func (p *PathInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages. Disabled inputs ignore them.
func (p *PathInput) Update(msg tea.Msg) (*PathInput, tea.Cmd) {
	if p.disabled {
		return p, nil
	}
	var cmd tea.Cmd
	p.textinput, cmd = p.textinput.Update(msg)
	return p, cmd
}

// View renders the label and input.
func (p *PathInput) View() string {
	label := p.styles.Subtitle.Render(p.slot.Label())
	if p.disabled {
		label = p.styles.Disabled.Render(p.slot.Label())
		value := p.textinput.Value()
		if value == "" {
			value = p.textinput.Placeholder
		}
		return lipgloss.JoinVertical(lipgloss.Left, label, p.styles.InputField.Render(p.styles.Disabled.Render(value)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, label, p.styles.InputField.Render(p.textinput.View()))
}

// Slot returns the slot this input fills.
func (p *PathInput) Slot() domain.Slot {
	return p.slot
}

// Value returns the current input value.
func (p *PathInput) Value() string {
	return p.textinput.Value()
}

// SetValue sets the input value.
func (p *PathInput) SetValue(value string) {
	p.textinput.SetValue(value)
}

// Focus sets focus on the input.
func (p *PathInput) Focus() tea.Cmd {
	if p.disabled {
		return nil
	}
	return p.textinput.Focus()
}

// Blur removes focus from the input.
func (p *PathInput) Blur() {
	p.textinput.Blur()
}

// Focused returns whether the input is focused.
func (p *PathInput) Focused() bool {
	return p.textinput.Focused()
}

// SetDisabled locks or unlocks the input. Locking also removes focus.
func (p *PathInput) SetDisabled(disabled bool) {
	p.disabled = disabled
	if disabled {
		p.textinput.Blur()
	}
}

// Disabled returns whether the input is locked.
func (p *PathInput) Disabled() bool {
	return p.disabled
}

// SetWidth sets the width of the input.
func (p *PathInput) SetWidth(width int) {
	p.width = width
	// Account for border and padding
	inputWidth := width - 6
	if inputWidth < 20 {
		inputWidth = 20
	}
	p.textinput.Width = inputWidth
}

// Width returns the current width.
func (p *PathInput) Width() int {
	return p.width
}

// Reset clears the input.
func (p *PathInput) Reset() {
	p.textinput.Reset()
}
