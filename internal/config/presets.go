package config

import "github.com/photovault/photovault/internal/enhance"

// Apply merges the preset's set fields onto base enhancement settings.
// Unset fields keep the base value.
func (p Preset) Apply(base enhance.Settings) enhance.Settings {
	if p.Brightness != nil {
		base.Brightness = *p.Brightness
	}
	if p.Contrast != nil {
		base.Contrast = *p.Contrast
	}
	if p.Sharpness != nil {
		base.Sharpness = *p.Sharpness
	}
	if p.Color != nil {
		base.Color = *p.Color
	}
	if p.Denoise != nil {
		base.Denoise = *p.Denoise
	}
	if p.CLAHE != nil {
		base.CLAHE = *p.CLAHE
	}
	if p.AutoLevels != nil {
		base.AutoLevels = *p.AutoLevels
	}
	if p.Colorize != nil {
		base.Colorize = *p.Colorize
	}
	return base
}
