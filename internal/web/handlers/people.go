package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/photovault/photovault/internal/facerecog"
)

// PeopleHandler manages the person face gallery.
type PeopleHandler struct {
	gallery *facerecog.Gallery
}

// NewPeopleHandler creates a new people handler.
func NewPeopleHandler(gallery *facerecog.Gallery) *PeopleHandler {
	return &PeopleHandler{gallery: gallery}
}

// List returns everyone with stored encodings.
func (h *PeopleHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"people": h.gallery.People(),
		"count":  h.gallery.Count(),
	})
}

// AddEncoding extracts a face encoding from an uploaded image and stores
// it for the person. The face box comes from x/y/width/height form
// values, the display name from "name".
func (h *PeopleHandler) AddEncoding(w http.ResponseWriter, r *http.Request) {
	personID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid person id")
		return
	}

	img := readUploadedImage(w, r)
	if img == nil {
		return
	}

	name := r.FormValue("name")
	if name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	det, err := detectionFromForm(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	source := r.FormValue("source_path")
	if err := h.gallery.AddPersonEncoding(personID, name, img, det, source); err != nil {
		if errors.Is(err, facerecog.ErrNoEncoding) {
			respondError(w, http.StatusUnprocessableEntity, "face region yields no usable encoding")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to store encoding")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{
		"person_id": personID,
		"name":      name,
	})
}

// RemoveEncodings deletes every stored encoding for a person.
func (h *PeopleHandler) RemoveEncodings(w http.ResponseWriter, r *http.Request) {
	personID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid person id")
		return
	}

	if err := h.gallery.RemovePersonEncodings(personID); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to remove encodings")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"person_id": personID})
}
