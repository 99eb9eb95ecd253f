package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/photovault/photovault/internal/config"
	"github.com/photovault/photovault/internal/rectdetect"
	"github.com/photovault/photovault/internal/storage"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan <image>...",
	Short: "Find individual photos on scanned album pages",
	Long: `Detect the individual photographs on a scanned album page or
multi-photo scan. With --extract each found photo is cropped and saved
to the configured storage backend as a standalone JPEG.

Examples:
  # Report candidate regions
  photovault scan page1.jpg

  # Cut the photos out and store them
  photovault scan --extract pages/*.jpg`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().Bool("extract", false, "Crop and store the detected photos")
}

func runScan(cmd *cobra.Command, args []string) error {
	extract := mustGetBool(cmd, "extract")

	cfg := config.Load()
	detector := rectdetect.New(cfg.Detect.MaxDetectPixels, cfg.Detect.MaxExtractPixels)

	var store storage.Storage
	if extract {
		var err error
		store, err = storage.FromConfig(cfg)
		if err != nil {
			return fmt.Errorf("initializing storage: %w", err)
		}
	}

	var bar *progressbar.ProgressBar
	if len(args) > 1 {
		bar = progressbar.NewOptions(len(args),
			progressbar.OptionSetDescription("Scanning pages"),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("pages"),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionFullWidth(),
		)
	}

	failed := 0
	for _, path := range args {
		if err := scanOne(detector, store, path, extract); err != nil {
			fmt.Fprintf(os.Stderr, "%s: skipped (%v)\n", path, err)
			failed++
		}
		if bar != nil {
			bar.Add(1)
		}
	}
	if bar != nil {
		fmt.Println()
	}

	if failed > 0 {
		fmt.Fprintf(os.Stderr, "Warning: %d of %d pages could not be processed\n", failed, len(args))
	}
	return nil
}

func scanOne(detector *rectdetect.Detector, store storage.Storage, path string, extract bool) error {
	img, err := loadImage(path)
	if err != nil {
		return err
	}

	candidates, err := detector.Detect(img)
	if err != nil {
		if errors.Is(err, rectdetect.ErrTooLarge) {
			fmt.Printf("%s: too large for detection, skipped\n", path)
			return nil
		}
		return fmt.Errorf("detecting photos: %w", err)
	}

	fmt.Printf("%s: %d photo(s)\n", path, len(candidates))
	for _, c := range candidates {
		fmt.Printf("  [%d,%d %dx%d] confidence %.2f aspect %.2f\n",
			c.X, c.Y, c.Width, c.Height, c.Confidence, c.AspectRatio)
	}

	if !extract || len(candidates) == 0 {
		return nil
	}

	extracted, err := detector.Extract(img, candidates)
	if err != nil {
		return fmt.Errorf("extracting photos: %w", err)
	}

	batch := uuid.New().String()[:8]
	for i, e := range extracted {
		out := fmt.Sprintf("extracted/%s_photo_%02d.jpg", batch, i+1)
		if err := store.Save(out, e.Data); err != nil {
			return fmt.Errorf("storing %s: %w", out, err)
		}
		fmt.Printf("  saved %s (%dx%d)\n", out, e.Width, e.Height)
	}
	return nil
}
