package cmd

import (
	"fmt"
	"strings"

	"github.com/photovault/photovault/internal/config"
	"github.com/photovault/photovault/internal/enhance"
	"github.com/photovault/photovault/internal/imageio"
	"github.com/spf13/cobra"
)

var enhanceCmd = &cobra.Command{
	Use:   "enhance <input> <output>",
	Short: "Restore and enhance a photo",
	Long: `Run the restoration pipeline on a photo: optional colorization,
denoising, local contrast (CLAHE), auto-levels and fine adjustments.

Examples:
  # Default restoration
  photovault enhance scan.jpg restored.jpg

  # Apply a named preset (restore, faded, dark, sepia)
  photovault enhance --preset faded scan.jpg restored.jpg

  # Let the analyzer pick the settings
  photovault enhance --suggest dark.jpg fixed.jpg`,
	Args: cobra.ExactArgs(2),
	RunE: runEnhance,
}

func init() {
	rootCmd.AddCommand(enhanceCmd)

	enhanceCmd.Flags().String("preset", "", "Named enhancement preset")
	enhanceCmd.Flags().Bool("suggest", false, "Derive settings from image statistics")
	enhanceCmd.Flags().Float64("brightness", 1.0, "Brightness factor (1.0 = unchanged)")
	enhanceCmd.Flags().Float64("contrast", 1.0, "Contrast factor (1.0 = unchanged)")
	enhanceCmd.Flags().Float64("sharpness", 1.0, "Sharpness factor (1.0 = unchanged)")
	enhanceCmd.Flags().Float64("color", 1.0, "Color saturation factor (1.0 = unchanged)")
	enhanceCmd.Flags().Bool("denoise", true, "Apply edge-preserving denoising")
	enhanceCmd.Flags().Bool("clahe", true, "Apply local contrast enhancement")
	enhanceCmd.Flags().Bool("auto-levels", true, "Stretch channel levels")
	enhanceCmd.Flags().Bool("colorize", false, "Colorize grayscale photos")
}

// resolveEnhanceSettings layers settings: defaults, then suggestion or
// preset, then any explicitly set flags.
func resolveEnhanceSettings(cmd *cobra.Command, cfg *config.Config, enhancer *enhance.Enhancer, input string) (enhance.Settings, error) {
	settings := enhance.DefaultSettings()

	if mustGetBool(cmd, "suggest") {
		img, err := loadImage(input)
		if err != nil {
			return settings, err
		}
		settings = enhancer.SuggestSettings(img)
	} else if name := mustGetString(cmd, "preset"); name != "" {
		preset, ok := cfg.GetPreset(name)
		if !ok {
			names := make([]string, 0, len(cfg.Presets.Presets))
			for n := range cfg.Presets.Presets {
				names = append(names, n)
			}
			return settings, fmt.Errorf("unknown preset %q (available: %s)", name, strings.Join(names, ", "))
		}
		settings = preset.Apply(settings)
	}

	flags := cmd.Flags()
	if flags.Changed("brightness") {
		settings.Brightness = mustGetFloat64(cmd, "brightness")
	}
	if flags.Changed("contrast") {
		settings.Contrast = mustGetFloat64(cmd, "contrast")
	}
	if flags.Changed("sharpness") {
		settings.Sharpness = mustGetFloat64(cmd, "sharpness")
	}
	if flags.Changed("color") {
		settings.Color = mustGetFloat64(cmd, "color")
	}
	if flags.Changed("denoise") {
		settings.Denoise = mustGetBool(cmd, "denoise")
	}
	if flags.Changed("clahe") {
		settings.CLAHE = mustGetBool(cmd, "clahe")
	}
	if flags.Changed("auto-levels") {
		settings.AutoLevels = mustGetBool(cmd, "auto-levels")
	}
	if flags.Changed("colorize") {
		settings.Colorize = mustGetBool(cmd, "colorize")
	}
	return settings, nil
}

func runEnhance(cmd *cobra.Command, args []string) error {
	input, output := args[0], args[1]

	cfg := config.Load()
	enhancer := enhance.New(nil)

	settings, err := resolveEnhanceSettings(cmd, cfg, enhancer, input)
	if err != nil {
		return err
	}

	img, err := loadImage(input)
	if err != nil {
		return err
	}

	result, applied := enhancer.AutoEnhance(img, &settings)
	if err := saveImage(output, result, imageio.DefaultJPEGQuality); err != nil {
		return err
	}

	fmt.Printf("Enhanced %s -> %s\n", input, output)
	fmt.Printf("  brightness %.2f, contrast %.2f, sharpness %.2f, color %.2f\n",
		applied.Brightness, applied.Contrast, applied.Sharpness, applied.Color)
	fmt.Printf("  denoise %t, clahe %t, auto-levels %t, colorize %t\n",
		applied.Denoise, applied.CLAHE, applied.AutoLevels, applied.Colorize)
	return nil
}
