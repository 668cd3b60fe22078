package cli

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/kycup/internal/core/domain"
)

var (
	historyLimit int
	historyKeep  int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded submission attempts",
	Long:  `List upload attempts recorded on this machine, most recent first.`,
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show one submission attempt",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old submission attempts",
	Args:  cobra.NoArgs,
	RunE:  runHistoryPrune,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of attempts")
	historyPruneCmd.Flags().IntVar(&historyKeep, "keep", 50, "number of recent attempts to keep")
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyPruneCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}

	attempts, err := historyService.List(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	if len(attempts) == 0 {
		cmd.Println("No submissions recorded.")
		return nil
	}

	cmd.Printf("%-8s  %-14s  %-22s  %-7s  %-9s  %s\n", "ID", "WHEN", "DOCUMENT", "ATTEMPT", "OUTCOME", "DETAIL")
	for i := range attempts {
		a := &attempts[i]
		cmd.Printf("%-8s  %-14s  %-22s  %-7s  %-9s  %s\n",
			shortID(a.ID),
			humanize.Time(a.StartedAt),
			a.DocumentType,
			strconv.Itoa(a.Number),
			outcomeLabel(a.Outcome),
			attemptDetail(a),
		)
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}

	a, err := historyService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get attempt: %w", err)
	}

	cmd.Printf("ID:            %s\n", a.ID)
	cmd.Printf("Document type: %s\n", a.DocumentType)
	cmd.Printf("Attempt:       %d\n", a.Number)
	cmd.Printf("Outcome:       %s\n", outcomeLabel(a.Outcome))
	if a.StatusCode != 0 {
		cmd.Printf("HTTP status:   %d\n", a.StatusCode)
	}
	if a.Reason != "" {
		cmd.Printf("Reason:        %s\n", a.Reason)
	}
	cmd.Printf("Progress:      %d%%\n", a.Progress)
	cmd.Printf("Size:          %s\n", humanize.Bytes(uint64(a.BytesTotal)))
	cmd.Printf("Started:       %s (%s)\n", a.StartedAt.Local().Format(time.RFC3339), humanize.Time(a.StartedAt))
	if d := a.Duration(); d > 0 {
		cmd.Printf("Duration:      %s\n", d.Round(time.Millisecond))
	}
	return nil
}

func runHistoryPrune(cmd *cobra.Command, _ []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}

	removed, err := historyService.Prune(cmd.Context(), historyKeep)
	if err != nil {
		return fmt.Errorf("failed to prune history: %w", err)
	}
	cmd.Printf("Removed %d attempt(s), kept the %d most recent.\n", removed, historyKeep)
	return nil
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func outcomeLabel(o domain.AttemptOutcome) string {
	switch o {
	case domain.OutcomeSucceeded:
		return "accepted"
	case domain.OutcomeFailed:
		return "failed"
	case domain.OutcomeInFlight:
		return "in flight"
	default:
		return string(o)
	}
}

func attemptDetail(a *domain.SubmissionAttempt) string {
	detail := humanize.Bytes(uint64(a.BytesTotal))
	if a.StatusCode != 0 {
		detail += fmt.Sprintf(", HTTP %d", a.StatusCode)
	}
	if a.Reason != "" {
		detail += ", " + a.Reason
	}
	return detail
}
