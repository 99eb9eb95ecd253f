package handlers

import (
	"net/http"
	"strconv"

	"github.com/photovault/photovault/internal/config"
	"github.com/photovault/photovault/internal/enhance"
	"github.com/photovault/photovault/internal/imageio"
)

// EnhanceHandler exposes the restoration pipeline.
type EnhanceHandler struct {
	config   *config.Config
	enhancer *enhance.Enhancer
}

// NewEnhanceHandler creates a new enhancement handler.
func NewEnhanceHandler(cfg *config.Config, enhancer *enhance.Enhancer) *EnhanceHandler {
	return &EnhanceHandler{config: cfg, enhancer: enhancer}
}

// Enhance runs the restoration pipeline on an uploaded image and responds
// with the enhanced JPEG. Settings come from a named preset ("preset"
// form value) and per-field form overrides on top of it; with neither,
// the defaults apply. Pass "auto=1" to start from suggested settings
// instead.
func (h *EnhanceHandler) Enhance(w http.ResponseWriter, r *http.Request) {
	img := readUploadedImage(w, r)
	if img == nil {
		return
	}

	settings := enhance.DefaultSettings()
	if r.FormValue("auto") == "1" {
		settings = h.enhancer.SuggestSettings(img)
	}

	if name := r.FormValue("preset"); name != "" {
		preset, ok := h.config.GetPreset(name)
		if !ok {
			respondError(w, http.StatusBadRequest, "unknown preset: "+sanitizeForLog(name))
			return
		}
		settings = preset.Apply(settings)
	}

	if !applyFormOverrides(w, r, &settings) {
		return
	}

	enhanced, applied := h.enhancer.AutoEnhance(img, &settings)
	data, err := imageio.EncodeJPEG(enhanced)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to encode enhanced image")
		return
	}

	w.Header().Set("X-Applied-Settings", encodeSettingsHeader(applied))
	respondJPEG(w, data)
}

// Suggest analyzes an uploaded image and returns suggested settings.
func (h *EnhanceHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	img := readUploadedImage(w, r)
	if img == nil {
		return
	}
	respondJSON(w, http.StatusOK, h.enhancer.SuggestSettings(img))
}

// applyFormOverrides mutates settings from optional form values, writing
// the error response and returning false on malformed input.
func applyFormOverrides(w http.ResponseWriter, r *http.Request, settings *enhance.Settings) bool {
	for _, field := range []struct {
		name string
		dst  *float64
	}{
		{"brightness", &settings.Brightness},
		{"contrast", &settings.Contrast},
		{"sharpness", &settings.Sharpness},
		{"color", &settings.Color},
	} {
		raw := r.FormValue(field.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			respondError(w, http.StatusBadRequest, field.name+" must be a non-negative number")
			return false
		}
		*field.dst = v
	}

	for _, field := range []struct {
		name string
		dst  *bool
	}{
		{"denoise", &settings.Denoise},
		{"clahe", &settings.CLAHE},
		{"auto_levels", &settings.AutoLevels},
		{"colorize", &settings.Colorize},
	} {
		raw := r.FormValue(field.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, field.name+" must be a boolean")
			return false
		}
		*field.dst = v
	}
	return true
}

func encodeSettingsHeader(s enhance.Settings) string {
	return "brightness=" + strconv.FormatFloat(s.Brightness, 'g', -1, 64) +
		";contrast=" + strconv.FormatFloat(s.Contrast, 'g', -1, 64) +
		";sharpness=" + strconv.FormatFloat(s.Sharpness, 'g', -1, 64) +
		";color=" + strconv.FormatFloat(s.Color, 'g', -1, 64)
}
