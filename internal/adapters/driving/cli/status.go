package cli

import (
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the account KYC status",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	pipeline, _, err := openPipeline()
	if err != nil {
		return err
	}
	defer pipeline.Close()

	status, err := pipeline.RefreshStatus(cmd.Context())
	if err != nil {
		return err
	}

	cmd.Printf("KYC status: %s\n", status)
	cmd.Println(status.Description())
	return nil
}
