package imageio

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
)

// Orientation reads the EXIF orientation tag from raw image bytes.
// Returns 1 (normal) when the file carries no EXIF or the tag is missing.
func Orientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	v, err := tag.Int(0)
	if err != nil || v < 1 || v > 8 {
		return 1
	}
	return v
}

// CorrectOrientation rotates an image according to its EXIF orientation
// tag. The tag-to-rotation mapping (3 -> 180, 6 -> 270 CCW, 8 -> 90 CCW)
// must match what the existing stored assets were normalized with, so it is
// kept as-is even though tag 6/8 differ from the usual EXIF convention.
// Unknown tags return the image unchanged.
func CorrectOrientation(img image.Image, tag int) image.Image {
	switch tag {
	case 3:
		return imaging.Rotate180(img)
	case 6:
		return imaging.Rotate270(img)
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}
