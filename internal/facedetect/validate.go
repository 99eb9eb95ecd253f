package facedetect

const (
	minFaceSize       = 20
	minFaceAspect     = 0.5
	maxFaceAspect     = 2.0
	minFaceConfidence = 0.3
)

// Validate filters out detections that are too small, badly proportioned or
// low-confidence. The result is always a subset of the input.
func Validate(detections []Detection) []Detection {
	valid := make([]Detection, 0, len(detections))
	for _, d := range detections {
		if d.Width < minFaceSize || d.Height < minFaceSize {
			continue
		}
		aspect := d.AspectRatio()
		if aspect < minFaceAspect || aspect > maxFaceAspect {
			continue
		}
		if d.Confidence < minFaceConfidence {
			continue
		}
		valid = append(valid, d)
	}
	return valid
}
