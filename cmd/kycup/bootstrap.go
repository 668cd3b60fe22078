package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/kycup/internal/adapters/driven/compression/imaging"
	"github.com/custodia-labs/kycup/internal/adapters/driven/config/file"
	"github.com/custodia-labs/kycup/internal/adapters/driven/localfs"
	"github.com/custodia-labs/kycup/internal/adapters/driven/preview"
	"github.com/custodia-labs/kycup/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/kycup/internal/adapters/driven/transport/kycapi"
	"github.com/custodia-labs/kycup/internal/adapters/driving/cli"
	"github.com/custodia-labs/kycup/internal/core/ports/driving"
	"github.com/custodia-labs/kycup/internal/core/services"
	"github.com/custodia-labs/kycup/internal/logger"
)

// bootstrap wires the adapters for configDir into the core services.
func bootstrap(configDir string) (*cli.Services, error) {
	if configDir == "" {
		dir, err := file.DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("config dir: %w", err)
		}
		configDir = dir
	}

	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)

	store, err := sqlite.NewStore(filepath.Join(configDir, "data"))
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	attempts := store.AttemptStore()

	previews, err := preview.NewTempDirStore("")
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("preview dir: %w", err)
	}
	logger.Debug("config: %s, history: %s, previews: %s", configStore.Path(), store.Path(), previews.Dir())

	newPipeline := func(refresh func()) (driving.DocumentUploadPipeline, error) {
		settings, err := settingsService.Get()
		if err != nil {
			return nil, err
		}
		client := kycapi.NewClient(*settings)
		return services.NewUploadPipeline(services.PipelineDeps{
			Compressor: imaging.NewCompressor(),
			Transport:  client,
			Previews:   previews,
			Status:     client,
			Attempts:   attempts,
			Refresh:    refresh,
		}, *settings)
	}

	return &cli.Services{
		Settings:    settingsService,
		History:     services.NewHistoryService(attempts),
		Loader:      localfs.NewLoader(localfs.DefaultMaxFileSize),
		NewPipeline: newPipeline,
		Close: func() error {
			return errors.Join(previews.Close(), store.Close())
		},
	}, nil
}
