package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/kycup/internal/core/domain"
	"github.com/custodia-labs/kycup/internal/core/ports/driving"
)

var (
	uploadType      string
	uploadFront     string
	uploadBack      string
	uploadSelfie    string
	uploadPlain     bool
	uploadAutoRetry bool
)

// refreshWait bounds how long upload waits for the post-success refresh.
var refreshWait = 10 * time.Second

// isTerminal reports whether w is an interactive terminal.
var isTerminal = func(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload KYC documents",
	Long: `Validate, compress and upload the three KYC images.

Accepted formats are JPEG, PNG and WebP. Each image is compressed locally
before the upload starts. If the account is already verified nothing is sent.

Document types:
  drivers-license, national-id, passport, voters-card`,
	Example: `  kycup upload --type passport --front front.jpg --back back.jpg --selfie me.png
  kycup upload --front f.jpg --back b.jpg --selfie s.jpg --auto-retry`,
	Args: cobra.NoArgs,
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringVarP(&uploadType, "type", "t", domain.DefaultDocumentType.Alias(), "document type")
	uploadCmd.Flags().StringVar(&uploadFront, "front", "", "front side image")
	uploadCmd.Flags().StringVar(&uploadBack, "back", "", "back side image")
	uploadCmd.Flags().StringVar(&uploadSelfie, "selfie", "", "selfie holding the document")
	uploadCmd.Flags().BoolVar(&uploadPlain, "plain", false, "print progress as lines instead of a live counter")
	uploadCmd.Flags().BoolVar(&uploadAutoRetry, "auto-retry", false, "retry failed uploads until the attempt limit")
	_ = uploadCmd.MarkFlagRequired("front")
	_ = uploadCmd.MarkFlagRequired("back")
	_ = uploadCmd.MarkFlagRequired("selfie")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, _ []string) error {
	if imageLoader == nil {
		return errors.New("image loader not configured")
	}
	docType, err := domain.ParseDocumentType(uploadType)
	if err != nil {
		return err
	}

	pipeline, refreshed, err := openPipeline()
	if err != nil {
		return err
	}
	defer pipeline.Close()

	ctx := cmd.Context()

	status, err := pipeline.RefreshStatus(ctx)
	if err != nil {
		cmd.PrintErrf("Warning: could not fetch KYC status: %v\n", err)
	}
	if status.IsVerified() {
		cmd.Println(status.Description())
		return nil
	}

	if err := pipeline.SetDocumentType(docType); err != nil {
		return err
	}

	paths := [domain.SlotCount]string{uploadFront, uploadBack, uploadSelfie}
	for _, slot := range domain.AllSlots() {
		if err := selectPath(ctx, pipeline, slot, paths[slot]); err != nil {
			return err
		}
	}

	cmd.Println("Compressing images...")
	if err := pipeline.AwaitCompression(ctx); err != nil {
		return fmt.Errorf("compression: %w", err)
	}
	printSlots(cmd, pipeline.Snapshot())

	task, err := pipeline.Submit(ctx)
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}

	attempt, err := submitWithRetries(cmd, pipeline, task, uploadAutoRetry)
	if err != nil {
		return err
	}

	cmd.Printf("Documents uploaded successfully (attempt %d, %s in %s).\n",
		attempt.Number, humanize.Bytes(uint64(attempt.BytesTotal)), attempt.Duration().Round(time.Millisecond))
	awaitRefresh(cmd, pipeline, refreshed)
	return nil
}

func selectPath(ctx context.Context, pipeline driving.DocumentUploadPipeline, slot domain.Slot, path string) error {
	file, err := imageLoader.Load(ctx, path)
	if err != nil {
		return fmt.Errorf("%s: %w", slot, err)
	}
	if err := pipeline.SelectFile(ctx, slot, file); err != nil {
		return fmt.Errorf("%s: %s: %w", slot, domain.UserMessage(err), err)
	}
	return nil
}

// submitWithRetries follows task and, when autoRetry is set, retries failures
// while the pipeline allows it.
func submitWithRetries(
	cmd *cobra.Command,
	pipeline driving.DocumentUploadPipeline,
	task driving.UploadTask,
	autoRetry bool,
) (domain.SubmissionAttempt, error) {
	ctx := cmd.Context()
	for {
		attempt, err := followUpload(cmd, task)
		if err == nil {
			return attempt, nil
		}

		snap := pipeline.Snapshot()
		cmd.Printf("Upload failed: %s\n", domain.UserMessage(err))

		if !snap.RetryAvailable || ctx.Err() != nil {
			if !snap.RetryAvailable && snap.Attempt >= snap.MaxAttempts {
				cmd.Println("Retry limit reached. Select your files again to start over.")
			}
			return attempt, fmt.Errorf("upload failed after %d attempt(s): %w", snap.Attempt, err)
		}
		if !autoRetry {
			cmd.Printf("Run again with --auto-retry to retry automatically (%d/%d used).\n",
				snap.Attempt, snap.MaxAttempts)
			return attempt, fmt.Errorf("upload failed: %w", err)
		}

		cmd.Printf("Retrying upload (%d/%d)...\n", snap.Attempt+1, snap.MaxAttempts)
		task, err = pipeline.Retry(ctx)
		if err != nil {
			return attempt, fmt.Errorf("retry: %w", err)
		}
	}
}

// followUpload prints progress for task and returns its outcome.
func followUpload(cmd *cobra.Command, task driving.UploadTask) (domain.SubmissionAttempt, error) {
	out := cmd.OutOrStdout()
	live := !uploadPlain && isTerminal(out)

	next := 0
	for percent := range task.Progress() {
		if live {
			cmd.Printf("\rUploading... %3d%%", percent)
			continue
		}
		if percent >= next {
			cmd.Printf("Uploading... %d%%\n", percent)
			next = (percent/25 + 1) * 25
		}
	}
	if live {
		cmd.Println()
	}
	return task.Wait(cmd.Context())
}

func printSlots(cmd *cobra.Command, snap domain.PipelineSnapshot) {
	for _, st := range snap.Slots {
		line := fmt.Sprintf("  %-7s %s  %s", st.Slot, st.FileName, humanize.Bytes(uint64(st.Size)))
		if st.OriginalSize > 0 && st.OriginalSize != st.Size {
			line = fmt.Sprintf("  %-7s %s  %s -> %s", st.Slot, st.FileName,
				humanize.Bytes(uint64(st.OriginalSize)), humanize.Bytes(uint64(st.Size)))
		}
		if st.Degraded {
			line += "  (uncompressed)"
		}
		cmd.Println(line)
	}
}

// awaitRefresh waits for the pipeline's refresh hook and reports the new status.
func awaitRefresh(cmd *cobra.Command, pipeline driving.DocumentUploadPipeline, refreshed <-chan struct{}) {
	ctx := cmd.Context()
	select {
	case <-refreshed:
	case <-time.After(refreshWait):
		return
	case <-ctx.Done():
		return
	}

	status, err := pipeline.RefreshStatus(ctx)
	if err != nil {
		cmd.PrintErrf("Warning: could not refresh KYC status: %v\n", err)
		return
	}
	cmd.Printf("KYC status: %s\n", status.Description())
}
