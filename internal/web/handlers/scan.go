package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/photovault/photovault/internal/rectdetect"
	"github.com/photovault/photovault/internal/storage"
)

// ScanHandler detects and extracts sub-photos from scanned album pages.
type ScanHandler struct {
	detector *rectdetect.Detector
	store    storage.Storage
}

// NewScanHandler creates a new scan handler.
func NewScanHandler(detector *rectdetect.Detector, store storage.Storage) *ScanHandler {
	return &ScanHandler{detector: detector, store: store}
}

// Detect finds candidate sub-photo regions on an uploaded scan. Oversized
// images are reported as zero candidates with a rejection flag, matching
// the pipeline's treat-as-empty contract.
func (h *ScanHandler) Detect(w http.ResponseWriter, r *http.Request) {
	img := readUploadedImage(w, r)
	if img == nil {
		return
	}

	candidates, err := h.detector.Detect(img)
	if err != nil {
		if errors.Is(err, rectdetect.ErrTooLarge) {
			respondJSON(w, http.StatusOK, map[string]any{
				"candidates": []rectdetect.Candidate{},
				"rejected":   "image too large for detection",
			})
			return
		}
		respondError(w, http.StatusInternalServerError, "detection failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"candidates": candidates})
}

type extractedPhoto struct {
	Path       string  `json:"path"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Confidence float64 `json:"confidence"`
}

// Extract detects sub-photos on the uploaded scan, crops each candidate
// and stores the crops as standalone JPEGs, responding with their storage
// paths.
func (h *ScanHandler) Extract(w http.ResponseWriter, r *http.Request) {
	img := readUploadedImage(w, r)
	if img == nil {
		return
	}

	candidates, err := h.detector.Detect(img)
	if err != nil && !errors.Is(err, rectdetect.ErrTooLarge) {
		respondError(w, http.StatusInternalServerError, "detection failed")
		return
	}

	extracted, err := h.detector.Extract(img, candidates)
	if err != nil {
		if errors.Is(err, rectdetect.ErrTooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "image too large for extraction")
			return
		}
		respondError(w, http.StatusInternalServerError, "extraction failed")
		return
	}

	batch := uuid.New().String()[:8]
	photos := make([]extractedPhoto, 0, len(extracted))
	for i, e := range extracted {
		path := fmt.Sprintf("extracted/%s_photo_%02d.jpg", batch, i+1)
		if err := h.store.Save(path, e.Data); err != nil {
			respondError(w, http.StatusInternalServerError, "failed to store extracted photo")
			return
		}
		photos = append(photos, extractedPhoto{
			Path:       path,
			Width:      e.Width,
			Height:     e.Height,
			Confidence: e.Confidence,
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"extracted": photos,
		"count":     len(photos),
	})
}
