package handlers

import (
	"errors"
	"image"
	"io"
	"net/http"
	"strconv"

	"github.com/photovault/photovault/internal/constants"
	"github.com/photovault/photovault/internal/imageio"
	"github.com/photovault/photovault/internal/montage"
)

// MontageHandler composes uploaded photos into a grid image.
type MontageHandler struct {
	composer *montage.Composer
}

// NewMontageHandler creates a new montage handler.
func NewMontageHandler(composer *montage.Composer) *MontageHandler {
	return &MontageHandler{composer: composer}
}

// Compose builds a montage from the "images" multipart files and responds
// with the composed JPEG. Grid geometry and the title come from form
// values; unset values keep the defaults. Unreadable uploads are skipped,
// matching the per-image isolation of batch operations.
func (h *MontageHandler) Compose(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(constants.MaxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}
	if r.MultipartForm == nil || len(r.MultipartForm.File["images"]) == 0 {
		respondError(w, http.StatusBadRequest, "at least one images file is required")
		return
	}
	files := r.MultipartForm.File["images"]
	if len(files) > constants.MaxMontageUploads {
		respondError(w, http.StatusBadRequest, "too many images")
		return
	}

	images := make([]image.Image, 0, len(files))
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			images = append(images, nil)
			continue
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			images = append(images, nil)
			continue
		}
		img, _, err := imageio.Decode(data)
		if err != nil {
			images = append(images, nil)
			continue
		}
		images = append(images, imageio.CorrectOrientation(img, imageio.Orientation(data)))
	}

	spec, ok := montageSpecFromForm(w, r)
	if !ok {
		return
	}

	composed, _, err := h.composer.Compose(images, spec)
	if err != nil {
		if errors.Is(err, montage.ErrInsufficientImages) {
			respondError(w, http.StatusBadRequest, "at least 2 readable images are required")
			return
		}
		respondError(w, http.StatusInternalServerError, "montage composition failed")
		return
	}

	data, err := imageio.Encode(composed, "jpeg", constants.MontageJPEGQuality)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to encode montage")
		return
	}
	respondJPEG(w, data)
}

// montageSpecFromForm reads optional grid parameters, writing the error
// response and returning false on malformed input.
func montageSpecFromForm(w http.ResponseWriter, r *http.Request) (montage.Spec, bool) {
	spec := montage.DefaultSpec()
	for _, field := range []struct {
		name string
		dst  *int
	}{
		{"rows", &spec.Rows},
		{"cols", &spec.Cols},
		{"spacing", &spec.Spacing},
		{"border_width", &spec.BorderWidth},
		{"title_height", &spec.TitleHeight},
	} {
		raw := r.FormValue(field.name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			respondError(w, http.StatusBadRequest, field.name+" must be a non-negative integer")
			return spec, false
		}
		*field.dst = v
	}
	spec.Title = r.FormValue("title")
	if raw := r.FormValue("maintain_aspect"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "maintain_aspect must be a boolean")
			return spec, false
		}
		spec.MaintainAspect = v
	}
	return spec, true
}
