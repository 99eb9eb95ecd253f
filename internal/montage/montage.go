// Package montage composes multiple photos into a single grid image with
// optional borders and a title strip.
package montage

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"log/slog"

	"github.com/disintegration/imaging"
)

// ErrInsufficientImages is returned when fewer than two usable images are
// available. A montage of one photo is just that photo.
var ErrInsufficientImages = errors.New("montage: at least 2 images are required")

// Spec configures a montage. Use DefaultSpec and override fields; the
// zero value would disable aspect preservation.
type Spec struct {
	Rows         int         `json:"rows"`
	Cols         int         `json:"cols"`
	Spacing      int         `json:"spacing"`
	Background   color.NRGBA `json:"-"`
	TargetWidth  int         `json:"target_width"`
	TargetHeight int         `json:"target_height"`

	// MaintainAspect shrinks images to fit their cell; when false they
	// are stretched to fill it exactly.
	MaintainAspect bool `json:"maintain_aspect"`

	BorderWidth int         `json:"border_width"`
	BorderColor color.NRGBA `json:"-"`

	Title       string `json:"title,omitempty"`
	TitleHeight int    `json:"title_height"`
}

// DefaultSpec is a 2x2 grid with 10px spacing on a white 1200x800 canvas,
// thin gray borders and a 50px title strip when a title is set.
func DefaultSpec() Spec {
	return Spec{
		Rows:           2,
		Cols:           2,
		Spacing:        10,
		Background:     color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		TargetWidth:    1200,
		TargetHeight:   800,
		MaintainAspect: true,
		BorderWidth:    2,
		BorderColor:    color.NRGBA{R: 200, G: 200, B: 200, A: 255},
		TitleHeight:    50,
	}
}

// Composer builds montages. Construct with New.
type Composer struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Composer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Composer{logger: logger}
}

// Compose lays the images out row-major on a grid. Nil entries are
// skipped; fewer than two usable images fail with ErrInsufficientImages.
// When the grid is too small for the image count, columns grow by ceiling
// division so every image keeps a cell. The applied Spec (with any grown
// column count) is returned alongside the canvas.
func (c *Composer) Compose(images []image.Image, spec Spec) (image.Image, Spec, error) {
	usable := make([]image.Image, 0, len(images))
	for i, img := range images {
		if img == nil {
			c.logger.Warn("skipping unusable montage image", "index", i)
			continue
		}
		usable = append(usable, img)
	}
	if len(usable) < 2 {
		return nil, spec, ErrInsufficientImages
	}

	if spec.Rows < 1 {
		spec.Rows = 1
	}
	if spec.Cols < 1 {
		spec.Cols = 1
	}
	if spec.Rows*spec.Cols < len(usable) {
		spec.Cols = (len(usable) + spec.Rows - 1) / spec.Rows
		c.logger.Info("grew montage grid to fit images", "cols", spec.Cols, "images", len(usable))
	}

	// Fit each image into its grid cell.
	maxCellW := spec.TargetWidth/spec.Cols - spec.Spacing
	maxCellH := spec.TargetHeight/spec.Rows - spec.Spacing
	prepared := make([]image.Image, len(usable))
	for i, img := range usable {
		prepared[i] = prepareCell(img, maxCellW, maxCellH, spec.MaintainAspect)
	}

	// The first prepared image fixes the cell size for the whole grid.
	cellW := prepared[0].Bounds().Dx()
	cellH := prepared[0].Bounds().Dy()

	totalW := spec.Cols*cellW + (spec.Cols+1)*spec.Spacing
	totalH := spec.Rows*cellH + (spec.Rows+1)*spec.Spacing
	startY := 0
	if spec.Title != "" {
		totalH += spec.TitleHeight
		startY = spec.TitleHeight
	}

	canvas := image.NewNRGBA(image.Rect(0, 0, totalW, totalH))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(spec.Background), image.Point{}, draw.Src)

	for idx, img := range prepared {
		if idx >= spec.Rows*spec.Cols {
			break
		}
		row := idx / spec.Cols
		col := idx % spec.Cols

		x := spec.Spacing + col*(cellW+spec.Spacing)
		y := startY + spec.Spacing + row*(cellH+spec.Spacing)

		if spec.BorderWidth > 0 {
			b := img.Bounds()
			frame := image.Rect(x-spec.BorderWidth, y-spec.BorderWidth,
				x+b.Dx()+spec.BorderWidth, y+b.Dy()+spec.BorderWidth)
			draw.Draw(canvas, frame, image.NewUniform(spec.BorderColor), image.Point{}, draw.Src)
		}
		draw.Draw(canvas, image.Rect(x, y, x+img.Bounds().Dx(), y+img.Bounds().Dy()),
			img, img.Bounds().Min, draw.Src)
	}

	if spec.Title != "" {
		drawTitle(canvas, spec.Title, spec.TitleHeight)
	}

	c.logger.Info("montage composed",
		"images", len(prepared), "rows", spec.Rows, "cols", spec.Cols,
		"width", totalW, "height", totalH)
	return canvas, spec, nil
}

// prepareCell resizes one image for its grid cell: shrink-to-fit keeping
// aspect (never enlarging), or an exact stretch when aspect preservation
// is off.
func prepareCell(img image.Image, maxW, maxH int, maintainAspect bool) image.Image {
	if maxW < 1 {
		maxW = 1
	}
	if maxH < 1 {
		maxH = 1
	}
	if !maintainAspect {
		return imaging.Resize(img, maxW, maxH, imaging.Lanczos)
	}
	b := img.Bounds()
	if b.Dx() <= maxW && b.Dy() <= maxH {
		return img
	}
	return imaging.Fit(img, maxW, maxH, imaging.Lanczos)
}
