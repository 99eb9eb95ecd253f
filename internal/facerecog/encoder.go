// Package facerecog identifies known people by comparing face feature
// vectors. Encodings are a concatenated intensity histogram and local
// binary pattern histogram over a normalized face crop; matching is a
// cosine-distance linear scan over the gallery, which stays small for a
// single household.
package facerecog

import (
	"image"

	xdraw "golang.org/x/image/draw"

	"github.com/photovault/photovault/internal/facedetect"
)

const (
	encodingFaceSize = 100 // faces are resized to a fixed canvas before encoding
	histogramBins    = 256
	cropPaddingFrac  = 0.1
)

// ExtractEncoding computes the feature vector for one detected face:
// crop with 10% padding, resize to 100x100, grayscale, then a normalized
// 256-bin intensity histogram concatenated with a normalized 256-bin LBP
// histogram. Returns nil when the padded crop is empty. The computation is
// fully deterministic: the same image and box always produce the same bits.
func ExtractEncoding(img image.Image, det facedetect.Detection) []float64 {
	bounds := img.Bounds()
	imgW, imgH := bounds.Dx(), bounds.Dy()

	x, y, w, h := det.X, det.Y, det.Width, det.Height
	padding := int(float64(min(w, h)) * cropPaddingFrac)
	x = max(0, x-padding)
	y = max(0, y-padding)
	w = min(imgW-x, w+2*padding)
	h = min(imgH-y, h+2*padding)
	if w <= 0 || h <= 0 {
		return nil
	}

	crop := image.Rect(bounds.Min.X+x, bounds.Min.Y+y, bounds.Min.X+x+w, bounds.Min.Y+y+h)
	face := image.NewNRGBA(image.Rect(0, 0, encodingFaceSize, encodingFaceSize))
	xdraw.BiLinear.Scale(face, face.Bounds(), img, crop, xdraw.Src, nil)

	gray := toGray(face)

	encoding := make([]float64, 0, 2*histogramBins)
	encoding = append(encoding, intensityHistogram(gray)...)
	encoding = append(encoding, lbpHistogram(gray)...)
	return encoding
}

// toGray converts to 8-bit luma using the ITU-R BT.601 weights.
func toGray(img *image.NRGBA) [][]uint8 {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	gray := make([][]uint8, h)
	for y := 0; y < h; y++ {
		gray[y] = make([]uint8, w)
		for x := 0; x < w; x++ {
			i := img.PixOffset(x, y)
			r := float64(img.Pix[i])
			g := float64(img.Pix[i+1])
			bl := float64(img.Pix[i+2])
			gray[y][x] = uint8(0.299*r + 0.587*g + 0.114*bl)
		}
	}
	return gray
}

func intensityHistogram(gray [][]uint8) []float64 {
	hist := make([]float64, histogramBins)
	total := 0
	for _, row := range gray {
		for _, v := range row {
			hist[v]++
			total++
		}
	}
	if total > 0 {
		for i := range hist {
			hist[i] /= float64(total)
		}
	}
	return hist
}

// lbpHistogram computes the 8-neighbor local binary pattern histogram.
// Each interior pixel gets a byte code with one bit per neighbor that is
// >= the center value: NW=1, N=2, NE=4, E=8, SE=16, S=32, SW=64, W=128.
func lbpHistogram(gray [][]uint8) []float64 {
	rows := len(gray)
	if rows < 3 {
		return make([]float64, histogramBins)
	}
	cols := len(gray[0])
	if cols < 3 {
		return make([]float64, histogramBins)
	}

	hist := make([]float64, histogramBins)
	total := 0
	for i := 1; i < rows-1; i++ {
		for j := 1; j < cols-1; j++ {
			center := gray[i][j]
			var code int
			if gray[i-1][j-1] >= center {
				code |= 1
			}
			if gray[i-1][j] >= center {
				code |= 2
			}
			if gray[i-1][j+1] >= center {
				code |= 4
			}
			if gray[i][j+1] >= center {
				code |= 8
			}
			if gray[i+1][j+1] >= center {
				code |= 16
			}
			if gray[i+1][j] >= center {
				code |= 32
			}
			if gray[i+1][j-1] >= center {
				code |= 64
			}
			if gray[i][j-1] >= center {
				code |= 128
			}
			hist[code]++
			total++
		}
	}
	if total > 0 {
		for i := range hist {
			hist[i] /= float64(total)
		}
	}
	return hist
}
