// Package styles provides colour themes and styling for the TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the colour palette for the TUI.
type Theme struct {
	// Primary is the main accent colour.
	Primary lipgloss.Color

	// Secondary is used for slot labels and headers.
	Secondary lipgloss.Color

	// Foreground is the default text colour.
	Foreground lipgloss.Color

	// Muted is for hints and disabled inputs.
	Muted lipgloss.Color

	// Success marks ready slots and accepted uploads.
	Success lipgloss.Color

	// Warning marks compression in progress and degraded files.
	Warning lipgloss.Color

	// Error marks the failure banner.
	Error lipgloss.Color

	// Border is the border colour.
	Border lipgloss.Color

	// ProgressStart and ProgressEnd bound the upload bar gradient.
	ProgressStart string
	ProgressEnd   string
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:       lipgloss.Color("#2563EB"), // Blue
		Secondary:     lipgloss.Color("#06B6D4"), // Cyan
		Foreground:    lipgloss.Color("#E5E7EB"), // Light gray
		Muted:         lipgloss.Color("#6B7280"), // Medium gray
		Success:       lipgloss.Color("#22C55E"), // Green
		Warning:       lipgloss.Color("#EAB308"), // Yellow
		Error:         lipgloss.Color("#EF4444"), // Red
		Border:        lipgloss.Color("#374151"), // Border gray
		ProgressStart: "#2563EB",
		ProgressEnd:   "#22C55E",
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	theme *Theme

	// Title style for headers.
	Title lipgloss.Style

	// Subtitle style for slot labels.
	Subtitle lipgloss.Style

	// Normal style for regular text.
	Normal lipgloss.Style

	// Muted style for hints.
	Muted lipgloss.Style

	// Disabled style for locked inputs.
	Disabled lipgloss.Style

	// Selected style for the focused field.
	Selected lipgloss.Style

	// Error style for inline errors.
	Error lipgloss.Style

	// Success style for ready slots.
	Success lipgloss.Style

	// Warning style for compressing slots.
	Warning lipgloss.Style

	// Banner style for the upload failure banner.
	Banner lipgloss.Style

	// Confirmation style for the verified and submitted notices.
	Confirmation lipgloss.Style

	// InputField style for path inputs.
	InputField lipgloss.Style

	// StatusBar style for the status bar.
	StatusBar lipgloss.Style

	// Help style for help text.
	Help lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	return &Styles{
		theme: theme,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Primary),

		Subtitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Secondary),

		Normal: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Disabled: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Faint(true),

		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Foreground).
			Background(theme.Primary),

		Error: lipgloss.NewStyle().
			Foreground(theme.Error),

		Success: lipgloss.NewStyle().
			Foreground(theme.Success),

		Warning: lipgloss.NewStyle().
			Foreground(theme.Warning),

		Banner: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Error).
			Foreground(theme.Error).
			Padding(0, 1),

		Confirmation: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Success).
			Foreground(theme.Success).
			Padding(0, 1),

		InputField: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		StatusBar: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Background(lipgloss.Color("#111827")).
			Padding(0, 1),

		Help: lipgloss.NewStyle().
			Foreground(theme.Muted),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}
