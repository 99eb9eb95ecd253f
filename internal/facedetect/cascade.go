package facedetect

import (
	"fmt"
	"image"
	"os"

	pigo "github.com/esimov/pigo/core"
)

const (
	cascadeMinFace   = 20
	cascadeMaxFace   = 2000
	cascadeShift     = 0.1
	cascadeScale     = 1.1
	cascadeIoU       = 0.18
	cascadeQuality   = 5.0
	minSyntheticConf = 0.6
	maxSyntheticConf = 0.95
)

// CascadeDetector runs the pigo pixel-intensity-comparison cascade. It is
// fast and dependency-free but reports no native confidence, so one is
// synthesized from the face size relative to the image.
type CascadeDetector struct {
	classifier *pigo.Pigo
}

// NewCascadeDetector loads a facefinder cascade binary from disk.
func NewCascadeDetector(cascadePath string) (*CascadeDetector, error) {
	data, err := os.ReadFile(cascadePath)
	if err != nil {
		return nil, fmt.Errorf("reading cascade file: %w", err)
	}
	classifier, err := pigo.NewPigo().Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("unpacking cascade file: %w", err)
	}
	return &CascadeDetector{classifier: classifier}, nil
}

func (c *CascadeDetector) Available() bool {
	return c != nil && c.classifier != nil
}

func (c *CascadeDetector) Detect(img image.Image) ([]Detection, error) {
	bounds := img.Bounds()
	cols, rows := bounds.Dx(), bounds.Dy()
	if cols == 0 || rows == 0 {
		return nil, nil
	}

	pixels := pigo.RgbToGrayscale(img)
	params := pigo.CascadeParams{
		MinSize:     cascadeMinFace,
		MaxSize:     cascadeMaxFace,
		ShiftFactor: cascadeShift,
		ScaleFactor: cascadeScale,
		ImageParams: pigo.ImageParams{
			Pixels: pixels,
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}

	found := c.classifier.RunCascade(params, 0)
	found = c.classifier.ClusterDetections(found, cascadeIoU)

	var detections []Detection
	for _, f := range found {
		if f.Q <= cascadeQuality {
			continue
		}
		d := Detection{
			X:      f.Col - f.Scale/2,
			Y:      f.Row - f.Scale/2,
			Width:  f.Scale,
			Height: f.Scale,
			Method: MethodFast,
		}
		d.Confidence = synthesizeConfidence(d.Width, d.Height, cols, rows)
		detections = append(detections, d)
	}
	return detections, nil
}

// synthesizeConfidence estimates detection confidence from the face area
// relative to the image, clamped to [0.6, 0.95]. Larger faces are more
// likely to be real detections.
func synthesizeConfidence(w, h, imgW, imgH int) float64 {
	conf := float64(w*h) / float64(imgW*imgH) * 10
	if conf < minSyntheticConf {
		return minSyntheticConf
	}
	if conf > maxSyntheticConf {
		return maxSyntheticConf
	}
	return conf
}
