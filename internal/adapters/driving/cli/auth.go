package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
)

// promptToken reads a token interactively. Replaced in tests.
var promptToken = readPassword

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the platform bearer token",
	Long: `Manage the bearer token forwarded with every request.

The KYCUP_TOKEN environment variable overrides the stored token.`,
}

var authTokenCmd = &cobra.Command{
	Use:   "token [token]",
	Short: "Store the bearer token",
	Long:  `Store the bearer token. When no argument is given it is read from the terminal without echo.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAuthToken,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a token is configured",
	Args:  cobra.NoArgs,
	RunE:  runAuthStatus,
}

func init() {
	authCmd.AddCommand(authTokenCmd)
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthToken(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	var token string
	if len(args) == 1 {
		token = args[0]
	} else {
		cmd.Print("Bearer token: ")
		token = promptToken()
		cmd.Println()
	}

	if err := settingsService.SetToken(strings.TrimSpace(token)); err != nil {
		return err
	}
	cmd.Println("Token saved.")
	return nil
}

func runAuthStatus(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return err
	}
	if settings.Token == "" {
		cmd.Println("No token configured. Run 'kycup auth token' to set one.")
		return nil
	}
	cmd.Printf("Token configured: %s\n", maskAPIKey(settings.Token))
	return nil
}
