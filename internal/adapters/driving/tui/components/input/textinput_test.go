package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kycup/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/kycup/internal/core/domain"
)

func TestNewPathInput(t *testing.T) {
	p := NewPathInput(styles.DefaultStyles(), domain.SlotBack)

	require.NotNil(t, p)
	assert.Equal(t, domain.SlotBack, p.Slot())
	assert.Empty(t, p.Value())
	assert.False(t, p.Focused())
	assert.False(t, p.Disabled())
	assert.Equal(t, 50, p.Width())
}

func TestNewPathInput_NilStyles(t *testing.T) {
	p := NewPathInput(nil, domain.SlotFront)

	require.NotNil(t, p)
	assert.NotNil(t, p.styles)
}

func TestPathInput_Init(t *testing.T) {
	p := NewPathInput(nil, domain.SlotFront)

	assert.NotNil(t, p.Init())
}

func TestPathInput_TypingWhenFocused(t *testing.T) {
	p := NewPathInput(nil, domain.SlotFront)
	p.Focus()

	for _, r := range "/tmp/a.jpg" {
		p, _ = p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	assert.Equal(t, "/tmp/a.jpg", p.Value())
}

func TestPathInput_DisabledIgnoresInput(t *testing.T) {
	p := NewPathInput(nil, domain.SlotSelfie)
	p.SetValue("selfie.jpg")
	p.Focus()

	p.SetDisabled(true)
	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})

	assert.True(t, p.Disabled())
	assert.False(t, p.Focused())
	assert.Nil(t, p.Focus())
	assert.Equal(t, "selfie.jpg", p.Value())
	assert.Contains(t, p.View(), "selfie.jpg")
}

func TestPathInput_ViewShowsLabel(t *testing.T) {
	p := NewPathInput(nil, domain.SlotSelfie)

	assert.Contains(t, p.View(), domain.SlotSelfie.Label())
}

func TestPathInput_SetWidth(t *testing.T) {
	p := NewPathInput(nil, domain.SlotFront)

	p.SetWidth(100)
	assert.Equal(t, 100, p.Width())
	assert.Equal(t, 94, p.textinput.Width)

	p.SetWidth(10)
	assert.Equal(t, 20, p.textinput.Width)
}

func TestPathInput_Reset(t *testing.T) {
	p := NewPathInput(nil, domain.SlotFront)
	p.SetValue("front.png")

	p.Reset()

	assert.Empty(t, p.Value())
}
