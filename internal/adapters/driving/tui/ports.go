// Package tui provides an interactive terminal user interface for kycup.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/kycup/internal/core/ports/driven"
	"github.com/custodia-labs/kycup/internal/core/ports/driving"
)

// Ports aggregates the ports required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Pipeline validates, compresses and uploads the documents.
	Pipeline driving.DocumentUploadPipeline

	// Loader reads the image files typed into the form.
	Loader driven.ImageLoader

	// History lists recorded submission attempts. Optional.
	History driving.HistoryService

	// Refreshes receives a value each time the pipeline's refresh hook fires. Optional.
	Refreshes <-chan struct{}
}

// NewPorts creates a new Ports aggregate with the required services.
func NewPorts(pipeline driving.DocumentUploadPipeline, loader driven.ImageLoader) *Ports {
	return &Ports{
		Pipeline: pipeline,
		Loader:   loader,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Pipeline == nil {
		return ErrMissingPipeline
	}
	if p.Loader == nil {
		return ErrMissingLoader
	}
	return nil
}
