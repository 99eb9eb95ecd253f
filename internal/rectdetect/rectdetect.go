// Package rectdetect finds rectangular sub-photos inside a larger scanned
// image, such as a photographed album page, and crops them into standalone
// JPEGs. Detection is classical edge analysis: blur, adaptive threshold,
// Canny, morphological close, then external contour extraction and
// rectangle scoring.
package rectdetect

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"
	"sort"

	"github.com/disintegration/imaging"

	"github.com/photovault/photovault/internal/imageio"
)

// ErrTooLarge is returned when an image exceeds the pixel guard. The guard
// rejects runaway inputs before the pipeline allocates working buffers.
var ErrTooLarge = errors.New("rectdetect: image too large to process")

const (
	// DefaultMaxDetectPixels caps detection input at roughly 25 megapixels.
	DefaultMaxDetectPixels = 25_000_000
	// DefaultMaxExtractPixels caps extraction input slightly higher.
	DefaultMaxExtractPixels = 30_000_000

	minPhotoArea     = 10_000 // px², smallest plausible sub-photo
	maxPhotoAreaFrac = 0.8    // relative to the source image
	minAspectRatio   = 0.3
	maxAspectRatio   = 3.0
	borderMargin     = 10 // px, sub-photos sit away from the page edge

	contourAreaFrac = 0.01
	maxContours     = 20

	minCandidateConfidence = 0.3
	maxCandidates          = 10

	extractPadding = 10 // px around each crop

	cannyLow        = 50
	cannyHigh       = 150
	adaptiveWindow  = 11
	adaptiveOffset  = 2
	sweetSpotLower  = 20_000 // px², typical print sizes score a bonus
	sweetSpotUpper  = 500_000
)

// commonAspectRatios are the print formats candidate boxes are scored
// against: 4:3, 3:2, 16:9, 5:4 and square.
var commonAspectRatios = []float64{4.0 / 3.0, 3.0 / 2.0, 16.0 / 9.0, 5.0 / 4.0, 1.0}

// Candidate is one detected sub-photo region.
type Candidate struct {
	X           int     `json:"x"`
	Y           int     `json:"y"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	Confidence  float64 `json:"confidence"`
	AspectRatio float64 `json:"aspect_ratio"`
}

// Area returns the bounding-box area in pixels.
func (c Candidate) Area() int { return c.Width * c.Height }

// Extracted is one cropped sub-photo re-encoded as a standalone JPEG.
type Extracted struct {
	Data       []byte
	Width      int
	Height     int
	Confidence float64
}

// Detector runs sub-photo detection and extraction with configurable
// pixel guards. The zero value is not usable; call New.
type Detector struct {
	maxDetectPixels  int
	maxExtractPixels int
	logger           *slog.Logger
}

// New creates a detector. Non-positive guards fall back to the defaults.
func New(maxDetectPixels, maxExtractPixels int) *Detector {
	if maxDetectPixels <= 0 {
		maxDetectPixels = DefaultMaxDetectPixels
	}
	if maxExtractPixels <= 0 {
		maxExtractPixels = DefaultMaxExtractPixels
	}
	return &Detector{
		maxDetectPixels:  maxDetectPixels,
		maxExtractPixels: maxExtractPixels,
		logger:           slog.Default(),
	}
}

// Detect finds candidate sub-photo regions. Images over the pixel guard
// return ErrTooLarge; callers should treat that as an empty result rather
// than a pipeline failure.
func (d *Detector) Detect(img image.Image) ([]Candidate, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width*height > d.maxDetectPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrTooLarge, width, height, d.maxDetectPixels)
	}
	sourceArea := width * height

	// 1. Preprocess: grayscale, blur, adaptive threshold, edges, close.
	gray := grayscale(img)
	blurred := gaussianBlur5(gray)
	binary := adaptiveThreshold(blurred, adaptiveWindow, adaptiveOffset)
	edges := canny(binary, cannyLow, cannyHigh)
	closed := morphClose3(edges)

	// 2. External contours, largest first.
	contours := findContours(closed, contourAreaFrac, maxContours)

	// 3. Validate and score each bounding box.
	var candidates []Candidate
	for _, c := range contours {
		w, h := c.boxWidth(), c.boxHeight()
		if !validRegion(c.minX, c.minY, w, h, sourceArea) {
			continue
		}
		confidence := scoreCandidate(c)
		if confidence < minCandidateConfidence {
			continue
		}
		candidates = append(candidates, Candidate{
			X:           c.minX,
			Y:           c.minY,
			Width:       w,
			Height:      h,
			Confidence:  confidence,
			AspectRatio: float64(w) / float64(h),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})
	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
		d.logger.Info("limited detections to highest confidence candidates", "max", maxCandidates)
	}

	d.logger.Info("sub-photo detection finished", "candidates", len(candidates), "width", width, "height", height)
	return candidates, nil
}

// validRegion applies the area, aspect and border-margin filters.
func validRegion(x, y, w, h, sourceArea int) bool {
	area := w * h
	if area < minPhotoArea {
		return false
	}
	if float64(area) > float64(sourceArea)*maxPhotoAreaFrac {
		return false
	}
	aspect := float64(w) / float64(h)
	if aspect < minAspectRatio || aspect > maxAspectRatio {
		return false
	}
	// Real sub-photos sit inside the page, not flush against its edge.
	if x < borderMargin || y < borderMargin {
		return false
	}
	return true
}

// scoreCandidate combines rectangularity (how much of the bounding box the
// contour actually covers), closeness to a common print aspect ratio, and
// a flat bonus for typical print sizes. The result is clamped to [0, 1].
func scoreCandidate(c contour) float64 {
	bboxArea := c.boxArea()
	if bboxArea == 0 {
		return 0
	}
	confidence := float64(c.area) / float64(bboxArea) * 0.6

	aspect := float64(c.boxWidth()) / float64(c.boxHeight())
	minDiff := math.Inf(1)
	for _, ratio := range commonAspectRatios {
		minDiff = min(minDiff, math.Abs(aspect-ratio))
	}
	confidence += max(0, 1-minDiff) * 0.3

	if bboxArea > sweetSpotLower && bboxArea < sweetSpotUpper {
		confidence += 0.1
	}
	return min(1.0, confidence)
}

// Extract crops each candidate with a small padding and re-encodes it as a
// standalone JPEG. A failing candidate is logged and skipped so one bad
// region cannot abort the batch.
func (d *Detector) Extract(img image.Image, candidates []Candidate) ([]Extracted, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width*height > d.maxExtractPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrTooLarge, width, height, d.maxExtractPixels)
	}

	var extracted []Extracted
	for i, c := range candidates {
		x0 := max(0, c.X-extractPadding)
		y0 := max(0, c.Y-extractPadding)
		x1 := min(width, c.X+c.Width+extractPadding)
		y1 := min(height, c.Y+c.Height+extractPadding)
		if x1 <= x0 || y1 <= y0 {
			d.logger.Warn("skipping degenerate candidate", "index", i, "candidate", c)
			continue
		}

		crop := imaging.Crop(img, image.Rect(bounds.Min.X+x0, bounds.Min.Y+y0, bounds.Min.X+x1, bounds.Min.Y+y1))
		data, err := imageio.EncodeJPEG(crop)
		if err != nil {
			d.logger.Warn("could not encode extracted region", "index", i, "error", err)
			continue
		}
		extracted = append(extracted, Extracted{
			Data:       data,
			Width:      x1 - x0,
			Height:     y1 - y0,
			Confidence: c.Confidence,
		})
	}

	d.logger.Info("sub-photo extraction finished", "extracted", len(extracted), "requested", len(candidates))
	return extracted, nil
}
