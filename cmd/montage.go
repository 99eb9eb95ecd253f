package cmd

import (
	"errors"
	"fmt"
	"image"

	"github.com/photovault/photovault/internal/constants"
	"github.com/photovault/photovault/internal/montage"
	"github.com/spf13/cobra"
)

var montageCmd = &cobra.Command{
	Use:   "montage <image>...",
	Short: "Compose photos into a single montage image",
	Long: `Arrange two or more photos in a grid on a single canvas. The grid
grows extra columns when more images are supplied than the spec fits.

Examples:
  photovault montage --title "Summer 1987" --output summer.jpg beach/*.jpg`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMontage,
}

func init() {
	rootCmd.AddCommand(montageCmd)

	montageCmd.Flags().String("output", "montage.jpg", "Output file")
	montageCmd.Flags().Int("rows", 0, "Grid rows (0 = default)")
	montageCmd.Flags().Int("cols", 0, "Grid columns (0 = default)")
	montageCmd.Flags().Int("spacing", -1, "Spacing between cells in pixels (-1 = default)")
	montageCmd.Flags().String("title", "", "Title drawn above the grid")
	montageCmd.Flags().Bool("stretch", false, "Stretch images to fill their cells")
}

func runMontage(cmd *cobra.Command, args []string) error {
	output := mustGetString(cmd, "output")

	spec := montage.DefaultSpec()
	if rows := mustGetInt(cmd, "rows"); rows > 0 {
		spec.Rows = rows
	}
	if cols := mustGetInt(cmd, "cols"); cols > 0 {
		spec.Cols = cols
	}
	if spacing := mustGetInt(cmd, "spacing"); spacing >= 0 {
		spec.Spacing = spacing
	}
	spec.Title = mustGetString(cmd, "title")
	if mustGetBool(cmd, "stretch") {
		spec.MaintainAspect = false
	}

	images := make([]image.Image, 0, len(args))
	for _, path := range args {
		img, err := loadImage(path)
		if err != nil {
			fmt.Printf("%s: skipped (%v)\n", path, err)
			continue
		}
		images = append(images, img)
	}

	result, applied, err := montage.New(nil).Compose(images, spec)
	if err != nil {
		if errors.Is(err, montage.ErrInsufficientImages) {
			return fmt.Errorf("need at least 2 usable images, got %d", len(images))
		}
		return fmt.Errorf("composing montage: %w", err)
	}

	if err := saveImage(output, result, constants.MontageJPEGQuality); err != nil {
		return err
	}
	fmt.Printf("Composed %d photos into %s (%d x %d grid)\n",
		len(images), output, applied.Rows, applied.Cols)
	return nil
}
