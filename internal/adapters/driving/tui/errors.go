package tui

import "errors"

// ErrMissingPipeline is returned when the upload pipeline is not provided.
var ErrMissingPipeline = errors.New("tui: upload pipeline is required")

// ErrMissingLoader is returned when the image loader is not provided.
var ErrMissingLoader = errors.New("tui: image loader is required")

// ErrInvalidPorts is returned when ports validation fails.
var ErrInvalidPorts = errors.New("tui: invalid ports configuration")
