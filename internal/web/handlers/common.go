// Package handlers implements the JSON API endpoints for the photo
// pipeline: face detection and recognition, the person gallery,
// enhancement, scanned-page extraction, and montages.
package handlers

import (
	"encoding/json"
	"errors"
	"image"
	"io"
	"net/http"
	"strings"

	"github.com/photovault/photovault/internal/constants"
	"github.com/photovault/photovault/internal/imageio"
)

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondJPEG sends encoded JPEG bytes.
func respondJPEG(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "image/jpeg")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// readUploadedImage decodes the "image" field of a multipart upload,
// applying EXIF orientation correction so downstream coordinates refer to
// the upright image, and strips metadata so nothing embedded in the upload
// survives into stored outputs. Returns nil and writes the error response
// when the upload is unusable.
func readUploadedImage(w http.ResponseWriter, r *http.Request) image.Image {
	if err := r.ParseMultipartForm(constants.MaxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return nil
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		respondError(w, http.StatusBadRequest, "image file is required")
		return nil
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read image upload")
		return nil
	}

	img, _, err := imageio.Decode(data)
	if err != nil {
		if errors.Is(err, imageio.ErrDecode) {
			respondError(w, http.StatusUnprocessableEntity, "could not decode image")
		} else {
			respondError(w, http.StatusInternalServerError, "failed to process image")
		}
		return nil
	}
	img = imageio.CorrectOrientation(img, imageio.Orientation(data))
	return imageio.StripMetadata(img)
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
