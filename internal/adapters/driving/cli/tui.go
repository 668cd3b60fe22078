package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/kycup/internal/adapters/driving/tui"
)

// runApp runs the TUI program. Replaced in tests.
var runApp = func(app *tui.App) error {
	return app.Run()
}

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for kycup.

The form shows each document slot with its compression state, a live
upload progress bar and a retry action after a failed upload.

Controls:
  tab/shift+tab  - Move between fields
  ←/→            - Change document type
  enter          - Select the typed file path
  ctrl+d         - Remove the focused file
  ctrl+s         - Upload
  ctrl+r         - Retry a failed upload
  esc            - Back
  ctrl+c         - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	if imageLoader == nil {
		return errors.New("image loader not configured")
	}

	pipeline, refreshed, err := openPipeline()
	if err != nil {
		return err
	}
	defer pipeline.Close()

	ports := tui.NewPorts(pipeline, imageLoader)
	ports.History = historyService
	ports.Refreshes = refreshed

	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())

	if err := runApp(app); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
