// Package facedetect locates faces in photos. Detection is advisory: when
// no backend is configured or a backend fails, callers get an empty result,
// never an error that would block upload or viewing.
package facedetect

import "image"

// Detection methods.
const (
	MethodFast     = "fast"     // cascade classifier
	MethodAccurate = "accurate" // DNN face service
)

// Detection is a single face bounding box in image pixel coordinates.
type Detection struct {
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Confidence float64 `json:"confidence"`
	Method     string  `json:"method"`
}

// Rect returns the detection as an image.Rectangle.
func (d Detection) Rect() image.Rectangle {
	return image.Rect(d.X, d.Y, d.X+d.Width, d.Y+d.Height)
}

// AspectRatio returns width/height, or 0 for a degenerate box.
func (d Detection) AspectRatio() float64 {
	if d.Height == 0 {
		return 0
	}
	return float64(d.Width) / float64(d.Height)
}
