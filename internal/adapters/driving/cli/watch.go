package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/kycup/internal/adapters/driving/inbox"
	"github.com/custodia-labs/kycup/internal/core/domain"
)

var (
	watchType   string
	watchSubmit bool
	watchSettle time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Select documents dropped into a folder",
	Long: `Watch a folder and select the files named front.*, back.* and selfie.*
into their slots as they appear. Files already in the folder are selected first.

With --submit the documents are uploaded once all three slots are filled.
Dropping a replacement file selects it again and resets the attempt count.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchType, "type", "t", domain.DefaultDocumentType.Alias(), "document type")
	watchCmd.Flags().BoolVar(&watchSubmit, "submit", false, "upload once every slot is filled")
	watchCmd.Flags().DurationVar(&watchSettle, "settle", inbox.DefaultSettle, "wait after the last write before selecting a file")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if imageLoader == nil {
		return errors.New("image loader not configured")
	}
	docType, err := domain.ParseDocumentType(watchType)
	if err != nil {
		return err
	}

	pipeline, refreshed, err := openPipeline()
	if err != nil {
		return err
	}
	defer pipeline.Close()

	ctx := cmd.Context()
	if status, err := pipeline.RefreshStatus(ctx); err == nil && status.IsVerified() {
		cmd.Println(status.Description())
		return nil
	}
	if err := pipeline.SetDocumentType(docType); err != nil {
		return err
	}

	watcher := inbox.New(args[0], imageLoader, pipeline, watchSettle)
	defer watcher.Close()

	selections, err := watcher.Watch(ctx)
	if err != nil {
		return err
	}
	cmd.Printf("Watching %s for front.*, back.* and selfie.* (ctrl+c to stop)\n", args[0])

	for sel := range selections {
		if sel.Err != nil {
			cmd.Printf("  %-7s %s: %s\n", sel.Slot, sel.Path, domain.UserMessage(sel.Err))
			continue
		}
		cmd.Printf("  %-7s %s\n", sel.Slot, sel.Path)

		if !watchSubmit || !slotsFilled(pipeline.Snapshot()) {
			continue
		}
		if err := pipeline.AwaitCompression(ctx); err != nil {
			return fmt.Errorf("compression: %w", err)
		}
		printSlots(cmd, pipeline.Snapshot())

		task, err := pipeline.Submit(ctx)
		if err != nil {
			cmd.Printf("Cannot submit: %s\n", domain.UserMessage(err))
			continue
		}
		attempt, err := submitWithRetries(cmd, pipeline, task, true)
		if err != nil {
			cmd.Println("Drop new files into the folder to try again.")
			continue
		}
		cmd.Printf("Documents uploaded successfully (attempt %d).\n", attempt.Number)
		awaitRefresh(cmd, pipeline, refreshed)
		return nil
	}
	return nil
}

func slotsFilled(snap domain.PipelineSnapshot) bool {
	for _, st := range snap.Slots {
		if st.Status == domain.SlotEmpty {
			return false
		}
	}
	return true
}
