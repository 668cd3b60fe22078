package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kycup/internal/adapters/driving/tui"
	"github.com/custodia-labs/kycup/internal/adapters/driving/tui/messages"
)

func stubRunApp(t *testing.T, run func(*tui.App) error) {
	t.Helper()
	old := runApp
	runApp = run
	t.Cleanup(func() { runApp = old })
}

func TestTUICmd_RunsApp(t *testing.T) {
	env, cleanup := setupTestServices()
	defer cleanup()

	var started *tui.App
	stubRunApp(t, func(app *tui.App) error {
		started = app
		return nil
	})

	_, err := execute("tui")

	require.NoError(t, err)
	require.NotNil(t, started)
	assert.Equal(t, messages.ViewMenu, started.CurrentView())
	assert.True(t, env.pipeline.closed)
}

func TestTUICmd_RunError(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	stubRunApp(t, func(*tui.App) error { return errors.New("no tty") })

	_, err := execute("tui")

	assert.EqualError(t, err, "TUI error: no tty")
}

func TestTUICmd_NoLoader(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	imageLoader = nil
	stubRunApp(t, func(*tui.App) error {
		t.Fatal("app should not start")
		return nil
	})

	_, err := execute("tui")

	assert.EqualError(t, err, "image loader not configured")
}

func TestTUICmd_NoPipeline(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	newPipeline = nil

	_, err := execute("tui")

	assert.EqualError(t, err, "upload pipeline not configured")
}
