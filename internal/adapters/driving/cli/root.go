// Package cli provides the kycup command-line interface.
// It implements a driving adapter over the core services using cobra.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/kycup/internal/core/ports/driven"
	"github.com/custodia-labs/kycup/internal/core/ports/driving"
	"github.com/custodia-labs/kycup/internal/logger"
)

// PipelineFactory creates an upload pipeline from the current settings.
// refresh is called once after each successful upload.
type PipelineFactory func(refresh func()) (driving.DocumentUploadPipeline, error)

// Services holds the core services driven by the commands.
type Services struct {
	Settings    driving.SettingsService
	History     driving.HistoryService
	Loader      driven.ImageLoader
	NewPipeline PipelineFactory

	// Close releases stores opened by the bootstrap. Optional.
	Close func() error
}

// Bootstrap builds the services for a configuration directory.
// An empty configDir selects the default directory.
type Bootstrap func(configDir string) (*Services, error)

// noServices marks commands that run without the core services.
const noServices = "no-services"

var (
	version   = "dev"
	verbose   bool
	configDir string

	bootstrap       Bootstrap
	settingsService driving.SettingsService
	historyService  driving.HistoryService
	imageLoader     driven.ImageLoader
	newPipeline     PipelineFactory
	closeServices   func() error
)

var rootCmd = &cobra.Command{
	Use:   "kycup",
	Short: "Submit KYC identity documents",
	Long: `kycup validates, compresses and uploads the three images of a KYC
submission: the front and back of an identity document and a selfie holding it.

Images are compressed locally before upload. Failed uploads can be retried
up to the configured attempt limit before files must be selected again.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupServices,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.kycup)")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetBootstrap registers the function that builds services before a command runs.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetServices installs services directly, bypassing the bootstrap.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	settingsService = s.Settings
	historyService = s.History
	imageLoader = s.Loader
	newPipeline = s.NewPipeline
	closeServices = s.Close
}

// Execute runs the root command and releases the services afterwards.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if closeServices != nil {
		if cerr := closeServices(); cerr != nil {
			logger.Warn("closing services: %v", cerr)
		}
	}
	return err
}

func setupServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if _, skip := cmd.Annotations[noServices]; skip {
		return nil
	}
	if bootstrap == nil || settingsService != nil {
		return nil
	}

	services, err := bootstrap(configDir)
	if err != nil {
		return fmt.Errorf("initialise: %w", err)
	}
	SetServices(services)
	return nil
}

func requirePipeline() error {
	if newPipeline == nil {
		return errors.New("upload pipeline not configured")
	}
	return nil
}

// openPipeline creates a pipeline whose refresh hook signals the returned channel.
func openPipeline() (driving.DocumentUploadPipeline, <-chan struct{}, error) {
	if err := requirePipeline(); err != nil {
		return nil, nil, err
	}
	refreshed := make(chan struct{}, 1)
	pipeline, err := newPipeline(func() {
		select {
		case refreshed <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create pipeline: %w", err)
	}
	return pipeline, refreshed, nil
}
