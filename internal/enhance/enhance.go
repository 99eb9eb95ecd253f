// Package enhance restores scanned and digitized photographs: denoising,
// local contrast equalization, dynamic-range stretching, optional sepia
// colorization of grayscale prints, and fine multiplicative adjustments.
// Every step degrades gracefully — a step that cannot apply leaves the
// image untouched and the pipeline continues.
package enhance

import (
	"image"
	"log/slog"

	"github.com/disintegration/imaging"
)

// Settings configures one enhancement run. Factors are multiplicative
// with 1.0 as a no-op; booleans toggle whole pipeline steps.
type Settings struct {
	Brightness float64 `json:"brightness"`
	Contrast   float64 `json:"contrast"`
	Sharpness  float64 `json:"sharpness"`
	Color      float64 `json:"color"`
	Denoise    bool    `json:"denoise"`
	CLAHE      bool    `json:"clahe_enabled"`
	AutoLevels bool    `json:"auto_levels"`
	Colorize   bool    `json:"colorize"`
}

// DefaultSettings are tuned for typical digitized prints: structural
// restoration on, fine adjustments neutral, colorization off.
func DefaultSettings() Settings {
	return Settings{
		Brightness: 1.0,
		Contrast:   1.0,
		Sharpness:  1.0,
		Color:      1.0,
		Denoise:    true,
		CLAHE:      true,
		AutoLevels: true,
		Colorize:   false,
	}
}

const (
	bilateralDiameter   = 9
	bilateralSigmaColor = 75
	bilateralSigmaSpace = 75
)

// Enhancer runs the restoration pipeline. The zero value uses the default
// logger; construct with New to inject one.
type Enhancer struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Enhancer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Enhancer{logger: logger}
}

// AutoEnhance applies the restoration pipeline in a fixed order: colorize,
// denoise, CLAHE, auto-levels, then the brightness/contrast/color/sharpness
// adjustments. Passing nil settings uses DefaultSettings. The returned
// Settings are the ones actually applied.
func (e *Enhancer) AutoEnhance(img image.Image, settings *Settings) (image.Image, Settings) {
	applied := DefaultSettings()
	if settings != nil {
		applied = *settings
	}
	logger := e.loggerOrDefault()

	current := imaging.Clone(img)

	if applied.Colorize {
		if isEffectivelyGrayscale(current) {
			current = colorizeSepia(current)
		} else {
			logger.Info("skipping colorization, image already has color")
		}
	}

	if applied.Denoise {
		current = bilateralFilter(current, bilateralDiameter, bilateralSigmaColor, bilateralSigmaSpace)
	}

	if applied.CLAHE {
		current = claheLuminance(current)
	}

	if applied.AutoLevels {
		current = autoLevels(current)
	}

	// Fine adjustments, each skipped at its neutral factor. Negative
	// factors make no sense for blending and degrade to a no-op.
	if bad := firstInvalidFactor(applied); bad != "" {
		logger.Warn("ignoring negative enhancement factor", "factor", bad)
	}
	if applied.Brightness != 1.0 && applied.Brightness >= 0 {
		current = adjustBrightness(current, applied.Brightness)
	}
	if applied.Contrast != 1.0 && applied.Contrast >= 0 {
		current = adjustContrast(current, applied.Contrast)
	}
	if applied.Color != 1.0 && applied.Color >= 0 {
		current = adjustColor(current, applied.Color)
	}
	if applied.Sharpness != 1.0 && applied.Sharpness >= 0 {
		current = adjustSharpness(current, applied.Sharpness)
	}

	return current, applied
}

func firstInvalidFactor(s Settings) string {
	switch {
	case s.Brightness < 0:
		return "brightness"
	case s.Contrast < 0:
		return "contrast"
	case s.Color < 0:
		return "color"
	case s.Sharpness < 0:
		return "sharpness"
	}
	return ""
}

// Luminance breakpoints for suggesting settings.
const (
	darkLumaThreshold   = 0.3
	brightLumaThreshold = 0.8
	flatStdDevThreshold = 0.1
)

// SuggestSettings analyzes image statistics and proposes settings suited
// to old or faded prints: brightness compensation for under/overexposed
// scans, extra contrast for flat ones, and a mild sharpness and color
// boost across the board.
func (e *Enhancer) SuggestSettings(img image.Image) Settings {
	suggested := DefaultSettings()
	nrgba := imaging.Clone(img)

	luma := meanLuma(nrgba)
	spread := lumaStdDev(nrgba)

	if luma < darkLumaThreshold {
		suggested.Brightness = 1.3
		suggested.Contrast = 1.2
	} else if luma > brightLumaThreshold {
		suggested.Brightness = 0.8
		suggested.Contrast = 1.1
	}

	if spread < flatStdDevThreshold {
		suggested.Contrast = 1.5
		suggested.CLAHE = true
	}

	suggested.Sharpness = 1.2
	suggested.Color = 1.1

	e.loggerOrDefault().Info("suggested enhancement settings",
		"mean_luma", luma, "luma_stddev", spread,
		"brightness", suggested.Brightness, "contrast", suggested.Contrast)
	return suggested
}

func (e *Enhancer) loggerOrDefault() *slog.Logger {
	if e.logger == nil {
		return slog.Default()
	}
	return e.logger
}
