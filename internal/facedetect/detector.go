package facedetect

import (
	"image"
	"log/slog"

	"github.com/photovault/photovault/internal/config"
)

// Detector is the capability interface for a face detection backend.
type Detector interface {
	// Detect returns face bounding boxes found in the image.
	Detect(img image.Image) ([]Detection, error)
	// Available reports whether the backend can actually run.
	Available() bool
}

// NullDetector satisfies Detector when no backend is configured.
type NullDetector struct{}

func (NullDetector) Detect(image.Image) ([]Detection, error) { return nil, nil }
func (NullDetector) Available() bool                         { return false }

// Chain tries detectors in order and returns the first non-empty result.
// Backend errors are logged and treated as "found nothing" so that a broken
// or missing detector never blocks the rest of the pipeline.
type Chain struct {
	detectors []Detector
	logger    *slog.Logger
}

// NewChain builds a detection chain. Order matters: put the accurate
// detector first and the fast fallback after it.
func NewChain(detectors ...Detector) *Chain {
	return &Chain{detectors: detectors, logger: slog.Default()}
}

// FromConfig wires the configured backends: the remote DNN service when a
// URL is set, the pigo cascade when a cascade file is given, and nothing
// otherwise.
func FromConfig(cfg config.FacesConfig) *Chain {
	var detectors []Detector
	if cfg.RemoteURL != "" {
		detectors = append(detectors, NewRemoteDetector(cfg.RemoteURL, cfg.MinConfidence))
	}
	if cfg.CascadePath != "" {
		cascade, err := NewCascadeDetector(cfg.CascadePath)
		if err != nil {
			slog.Warn("cascade detector unavailable", "path", cfg.CascadePath, "error", err)
		} else {
			detectors = append(detectors, cascade)
		}
	}
	return NewChain(detectors...)
}

// Detect runs the chain. The result is already validated. An empty slice
// with a nil error means no faces (or no usable backend): backend errors
// are logged and swallowed, never propagated.
func (c *Chain) Detect(img image.Image) ([]Detection, error) {
	for _, d := range c.detectors {
		if !d.Available() {
			continue
		}
		faces, err := d.Detect(img)
		if err != nil {
			c.logger.Warn("face detection backend failed", "error", err)
			continue
		}
		if len(faces) > 0 {
			return Validate(faces), nil
		}
	}
	return nil, nil
}

// Available reports whether any backend in the chain can run.
func (c *Chain) Available() bool {
	for _, d := range c.detectors {
		if d.Available() {
			return true
		}
	}
	return false
}
