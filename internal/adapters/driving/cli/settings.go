package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage upload settings",
	Long: `View and configure the platform endpoint, upload limits and compression.

Settings are stored in config.toml inside the configuration directory.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change a setting",
	Long: `Change a single setting. Run 'kycup settings keys' to list the keys.

Pass an empty value to clear an endpoint override.`,
	Example: `  kycup settings set api.base_url https://app.example.com
  kycup settings set upload.timeout_seconds 90`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List configurable keys",
	Args:  cobra.NoArgs,
	RunE:  runSettingsKeys,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Endpoint]")
	cmd.Printf("  Base URL: %s\n", settings.BaseURL)
	cmd.Printf("  Upload: %s\n", settings.UploadURL())
	cmd.Printf("  Status: %s\n", settings.StatusURL())
	if settings.Token != "" {
		cmd.Printf("  Token: %s\n", maskAPIKey(settings.Token))
	} else {
		cmd.Printf("  Token: (not set)\n")
	}
	cmd.Println()

	cmd.Println("[Upload]")
	cmd.Printf("  Timeout: %s\n", settings.Timeout)
	cmd.Printf("  Max attempts: %d\n", settings.MaxAttempts)
	cmd.Printf("  Refresh delay: %s\n", settings.RefreshDelay)
	cmd.Printf("  Chunk size: %s\n", humanize.IBytes(uint64(settings.ChunkSize)))
	cmd.Printf("  Accepted types: %s\n", strings.Join(settings.AllowedTypes, ", "))
	cmd.Println()

	cmd.Println("[Compression]")
	cmd.Printf("  Target size: %s\n", humanize.IBytes(uint64(settings.Compression.MaxBytes)))
	cmd.Printf("  Max dimension: %dpx\n", settings.Compression.MaxDimension)
	cmd.Printf("  Quality: %.2f\n", settings.Compression.Quality)
	cmd.Printf("  Format: %s\n", settings.Compression.Format)

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.Set(args[0], args[1]); err != nil {
		return err
	}
	cmd.Printf("Set %s.\n", args[0])
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	for _, k := range settingsService.Keys() {
		cmd.Printf("  %-28s %s\n", k.Key, k.Description)
	}
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	return readLine(bufio.NewReader(os.Stdin))
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
