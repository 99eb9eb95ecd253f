package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/photovault/photovault/internal/facedetect"
	"github.com/photovault/photovault/internal/facerecog"
)

// FacesHandler handles face detection and recognition endpoints.
type FacesHandler struct {
	detector      facedetect.Detector
	gallery       *facerecog.Gallery
	minConfidence float64
}

// NewFacesHandler creates a new faces handler.
func NewFacesHandler(detector facedetect.Detector, gallery *facerecog.Gallery, minConfidence float64) *FacesHandler {
	return &FacesHandler{
		detector:      detector,
		gallery:       gallery,
		minConfidence: minConfidence,
	}
}

// Detect runs face detection on an uploaded image. Detector backend
// failures are advisory: the endpoint reports zero faces rather than an
// error, because detection augments the archive instead of gating it.
func (h *FacesHandler) Detect(w http.ResponseWriter, r *http.Request) {
	img := readUploadedImage(w, r)
	if img == nil {
		return
	}

	detections, err := h.detector.Detect(img)
	if err != nil {
		detections = nil
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"faces_count": len(detections),
		"faces":       detections,
	})
}

type recognizeResponse struct {
	Detection facedetect.Detection `json:"detection"`
	Match     *facerecog.Match     `json:"match"`
}

// Recognize detects faces on an uploaded image and matches each one
// against the person gallery. An optional "threshold" form value
// overrides the default recognition confidence.
func (h *FacesHandler) Recognize(w http.ResponseWriter, r *http.Request) {
	img := readUploadedImage(w, r)
	if img == nil {
		return
	}

	threshold := facerecog.DefaultRecognitionThreshold
	if raw := r.FormValue("threshold"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 || parsed > 1 {
			respondError(w, http.StatusBadRequest, "threshold must be a number in (0, 1]")
			return
		}
		threshold = parsed
	}

	detections, err := h.detector.Detect(img)
	if err != nil {
		detections = nil
	}

	results := make([]recognizeResponse, 0, len(detections))
	for _, det := range detections {
		results = append(results, recognizeResponse{
			Detection: det,
			Match:     h.gallery.Recognize(img, det, threshold),
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"faces_count": len(results),
		"results":     results,
	})
}

// detectionFromForm parses face box coordinates from form values.
func detectionFromForm(r *http.Request) (facedetect.Detection, error) {
	var det facedetect.Detection
	for _, field := range []struct {
		name string
		dst  *int
	}{
		{"x", &det.X}, {"y", &det.Y}, {"width", &det.Width}, {"height", &det.Height},
	} {
		v, err := strconv.Atoi(r.FormValue(field.name))
		if err != nil {
			return det, errors.New("x, y, width and height are required integers")
		}
		*field.dst = v
	}
	if det.Width <= 0 || det.Height <= 0 {
		return det, errors.New("width and height must be positive")
	}
	return det, nil
}
