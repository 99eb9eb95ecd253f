package montage

import (
	"image"
	"image/color"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const titleFontSize = 24

// systemFontPaths are tried in order for the title face. Missing fonts are
// fine: drawing falls back to the built-in bitmap face.
var systemFontPaths = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/TTF/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
	"/System/Library/Fonts/Helvetica.ttc",
	"C:\\Windows\\Fonts\\arial.ttf",
}

// titleFace loads an OpenType system font, falling back to the fixed
// 7x13 bitmap face when none is available.
func titleFace() font.Face {
	for _, path := range systemFontPaths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		parsed, err := opentype.Parse(data)
		if err != nil {
			continue
		}
		face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
			Size:    titleFontSize,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			continue
		}
		return face
	}
	return basicfont.Face7x13
}

// drawTitle renders the title centered in the strip at the top of the
// canvas in a dark gray.
func drawTitle(canvas *image.NRGBA, title string, stripHeight int) {
	face := titleFace()
	drawer := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(color.NRGBA{R: 50, G: 50, B: 50, A: 255}),
		Face: face,
	}

	width := drawer.MeasureString(title)
	metrics := face.Metrics()
	textHeight := metrics.Ascent + metrics.Descent

	x := (fixed.I(canvas.Bounds().Dx()) - width) / 2
	baseline := (fixed.I(stripHeight)-textHeight)/2 + metrics.Ascent
	if x < 0 {
		x = 0
	}

	drawer.Dot = fixed.Point26_6{X: x, Y: baseline}
	drawer.DrawString(title)
}
