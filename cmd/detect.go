package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/photovault/photovault/internal/config"
	"github.com/photovault/photovault/internal/facedetect"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var detectCmd = &cobra.Command{
	Use:   "detect <image>...",
	Short: "Detect faces in one or more image files",
	Long: `Detect faces in the given image files and print their bounding
boxes. A file that cannot be read or decoded is reported and skipped;
it never aborts the rest of the batch.

Examples:
  # Detect faces in a single photo
  photovault detect family.jpg

  # Batch over a scanned archive, machine-readable output
  photovault detect --json scans/*.jpg`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)

	detectCmd.Flags().Bool("json", false, "Print results as JSON")
}

type detectResult struct {
	File  string                 `json:"file"`
	Faces []facedetect.Detection `json:"faces"`
	Error string                 `json:"error,omitempty"`
}

func runDetect(cmd *cobra.Command, args []string) error {
	asJSON := mustGetBool(cmd, "json")

	cfg := config.Load()
	detector := facedetect.FromConfig(cfg.Faces)
	if !detector.Available() {
		return fmt.Errorf("no face detection backend configured (set PHOTOVAULT_CASCADE_PATH or PHOTOVAULT_FACE_SERVICE_URL)")
	}

	var bar *progressbar.ProgressBar
	if !asJSON && len(args) > 1 {
		bar = progressbar.NewOptions(len(args),
			progressbar.OptionSetDescription("Detecting faces"),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("photos"),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionFullWidth(),
		)
	}

	results := make([]detectResult, 0, len(args))
	failed := 0
	for _, path := range args {
		res := detectResult{File: path}
		img, err := loadImage(path)
		if err != nil {
			res.Error = err.Error()
			failed++
		} else {
			res.Faces, _ = detector.Detect(img)
		}
		results = append(results, res)
		if bar != nil {
			bar.Add(1)
		}
	}
	if bar != nil {
		fmt.Println()
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return fmt.Errorf("encoding results: %w", err)
		}
	} else {
		for _, res := range results {
			if res.Error != "" {
				fmt.Printf("%s: skipped (%s)\n", res.File, res.Error)
				continue
			}
			fmt.Printf("%s: %d face(s)\n", res.File, len(res.Faces))
			for _, f := range res.Faces {
				fmt.Printf("  [%d,%d %dx%d] confidence %.2f (%s)\n",
					f.X, f.Y, f.Width, f.Height, f.Confidence, f.Method)
			}
		}
	}

	if failed > 0 {
		fmt.Fprintf(os.Stderr, "Warning: %d of %d files could not be processed\n", failed, len(args))
	}
	return nil
}
