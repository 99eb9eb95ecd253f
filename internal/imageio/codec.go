// Package imageio decodes, encodes and normalizes raster images for the
// processing pipeline. All transforms are pure: they return a new image and
// never touch the input.
package imageio

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	"image/jpeg"
	"image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ErrDecode is returned when input bytes are not a readable image.
var ErrDecode = errors.New("imageio: cannot decode image")

// DefaultJPEGQuality is used for all pipeline outputs.
const DefaultJPEGQuality = 95

// Decode parses raw image bytes. JPEG, PNG, GIF, BMP and WebP are
// supported. The returned format is the registered decoder name.
func Decode(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return img, format, nil
}

// Encode serializes an image. Format "png" produces PNG; anything else is
// flattened and encoded as JPEG at the given quality (DefaultJPEGQuality
// when quality <= 0).
func Encode(img image.Image, format string, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if format == "png" {
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encoding png: %w", err)
		}
		return buf.Bytes(), nil
	}
	if quality <= 0 {
		quality = DefaultJPEGQuality
	}
	if err := jpeg.Encode(&buf, Flatten(img), &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encoding jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeJPEG is shorthand for Encode at the pipeline's standard quality.
func EncodeJPEG(img image.Image) ([]byte, error) {
	return Encode(img, "jpeg", DefaultJPEGQuality)
}

// Flatten composites palette and alpha images onto a white background so
// the result can be saved as JPEG without surprises. Opaque images are
// returned unchanged.
func Flatten(img image.Image) image.Image {
	if img.ColorModel() == color.YCbCrModel || img.ColorModel() == color.GrayModel {
		return img
	}
	if isOpaque(img) {
		return img
	}
	bounds := img.Bounds()
	out := image.NewNRGBA(bounds)
	draw.Draw(out, bounds, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(out, bounds, img, bounds.Min, draw.Over)
	return out
}

// StripMetadata rebuilds the pixel buffer so any EXIF embedded in the
// source file cannot survive re-encoding. Used before storing uploads, for
// privacy (GPS coordinates, device identifiers).
func StripMetadata(img image.Image) image.Image {
	bounds := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(out, out.Bounds(), img, bounds.Min, draw.Src)
	return out
}

func isOpaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				return false
			}
		}
	}
	return true
}
