package cmd

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/photovault/photovault/internal/imageio"
)

// loadImage reads and decodes an image file, applying EXIF orientation
// correction so reported coordinates refer to the upright image.
func loadImage(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	img, _, err := imageio.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	img = imageio.CorrectOrientation(img, imageio.Orientation(data))
	return imageio.StripMetadata(img), nil
}

// saveImage encodes an image based on the output file extension
// (default JPEG) and writes it to disk.
func saveImage(path string, img image.Image, quality int) error {
	format := "jpeg"
	if strings.EqualFold(filepath.Ext(path), ".png") {
		format = "png"
	}
	data, err := imageio.Encode(img, format, quality)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
