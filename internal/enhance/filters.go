package enhance

import (
	"image"
	"math"
	"sort"
)

// bilateralFilter smooths noise while keeping edges: each pixel becomes a
// weighted average of its neighborhood where the weight falls off with
// both spatial distance and color difference.
func bilateralFilter(img *image.NRGBA, diameter int, sigmaColor, sigmaSpace float64) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	radius := diameter / 2

	// Precompute the spatial falloff and a color-difference table.
	spatial := make([]float64, diameter*diameter)
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			d2 := float64(dx*dx + dy*dy)
			spatial[(dy+radius)*diameter+(dx+radius)] = math.Exp(-d2 / (2 * sigmaSpace * sigmaSpace))
		}
	}
	colorWeight := make([]float64, 256*3)
	for i := range colorWeight {
		d := float64(i)
		colorWeight[i] = math.Exp(-d * d / (2 * sigmaColor * sigmaColor))
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			ci := img.PixOffset(x, y)
			cr, cg, cb := int(img.Pix[ci]), int(img.Pix[ci+1]), int(img.Pix[ci+2])

			var sumR, sumG, sumB, sumW float64
			for dy := -radius; dy <= radius; dy++ {
				for dx := -radius; dx <= radius; dx++ {
					ny := clampPix(y+dy, h)
					nx := clampPix(x+dx, w)
					ni := img.PixOffset(nx, ny)
					nr, ng, nb := int(img.Pix[ni]), int(img.Pix[ni+1]), int(img.Pix[ni+2])

					diff := abs(nr-cr) + abs(ng-cg) + abs(nb-cb)
					weight := spatial[(dy+radius)*diameter+(dx+radius)] * colorWeight[diff]
					sumR += weight * float64(nr)
					sumG += weight * float64(ng)
					sumB += weight * float64(nb)
					sumW += weight
				}
			}

			di := dst.PixOffset(x, y)
			dst.Pix[di] = uint8(sumR/sumW + 0.5)
			dst.Pix[di+1] = uint8(sumG/sumW + 0.5)
			dst.Pix[di+2] = uint8(sumB/sumW + 0.5)
			dst.Pix[di+3] = img.Pix[ci+3]
		}
	}
	return dst
}

// autoLevels stretches each channel so its 1st percentile maps to 0 and
// its 99th percentile to 255, clipping the extremes. Channels whose
// percentile gap is under 1% of full range are left alone: stretching a
// near-flat channel would only amplify noise.
func autoLevels(img *image.NRGBA) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	n := w * h
	if n == 0 {
		return img
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	copy(dst.Pix, img.Pix)

	values := make([]uint8, n)
	for ch := 0; ch < 3; ch++ {
		for i := 0; i < n; i++ {
			values[i] = img.Pix[i*4+ch]
		}
		sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

		low := float64(values[n/100]) / 255
		high := float64(values[n-1-n/100]) / 255
		if high-low < 0.01 {
			continue
		}

		var lut [256]uint8
		for v := range lut {
			stretched := (float64(v)/255 - low) / (high - low)
			lut[v] = clampChannel(stretched * 255)
		}
		for i := 0; i < n; i++ {
			dst.Pix[i*4+ch] = lut[img.Pix[i*4+ch]]
		}
	}
	return dst
}

// grayscaleTolerance is how far the channels of a pixel may spread while
// the image still counts as effectively grayscale.
const grayscaleTolerance = 5

// isEffectivelyGrayscale reports whether every pixel's three channels
// agree within the tolerance. Faded monochrome prints scan with slight
// channel drift, so exact equality would reject them.
func isEffectivelyGrayscale(img *image.NRGBA) bool {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := img.PixOffset(x, y)
			r, g, bl := int(img.Pix[i]), int(img.Pix[i+1]), int(img.Pix[i+2])
			lo := min(r, g, bl)
			hi := max(r, g, bl)
			if hi-lo > grayscaleTolerance {
				return false
			}
		}
	}
	return true
}

// Warm-tone chroma offsets applied when colorizing a grayscale image.
const (
	colorizeShiftA = 10
	colorizeShiftB = 15
)

// colorizeSepia shifts the chroma channels of a grayscale image by fixed
// warm offsets in LAB space, producing a sepia-like tint while leaving
// luminance untouched.
func colorizeSepia(img *image.NRGBA) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := img.PixOffset(x, y)
			l, a, bb := rgbToLab(img.Pix[i], img.Pix[i+1], img.Pix[i+2])
			r, g, bl := labToRGB(l, a+colorizeShiftA, bb+colorizeShiftB)

			di := dst.PixOffset(x, y)
			dst.Pix[di] = r
			dst.Pix[di+1] = g
			dst.Pix[di+2] = bl
			dst.Pix[di+3] = img.Pix[i+3]
		}
	}
	return dst
}

// The fine adjustments below follow the Pillow ImageEnhance semantics:
// each one blends the image with a degenerate version of itself, so a
// factor of 1.0 is an exact no-op, 0.0 yields the degenerate image, and
// values above 1.0 push past the original.

// adjustBrightness blends with black.
func adjustBrightness(img *image.NRGBA, factor float64) *image.NRGBA {
	return mapChannels(img, func(v float64, _ int) float64 {
		return v * factor
	})
}

// adjustContrast blends with a solid gray at the image's mean luminance.
func adjustContrast(img *image.NRGBA, factor float64) *image.NRGBA {
	mean := meanLuma(img) * 255
	return mapChannels(img, func(v float64, _ int) float64 {
		return mean + factor*(v-mean)
	})
}

// adjustColor blends with the grayscale version, scaling saturation.
func adjustColor(img *image.NRGBA, factor float64) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := img.PixOffset(x, y)
			r := float64(img.Pix[i])
			g := float64(img.Pix[i+1])
			bl := float64(img.Pix[i+2])
			gray := 0.299*r + 0.587*g + 0.114*bl

			di := dst.PixOffset(x, y)
			dst.Pix[di] = clampChannel(gray + factor*(r-gray))
			dst.Pix[di+1] = clampChannel(gray + factor*(g-gray))
			dst.Pix[di+2] = clampChannel(gray + factor*(bl-gray))
			dst.Pix[di+3] = img.Pix[i+3]
		}
	}
	return dst
}

// adjustSharpness blends with a 3x3 box blur of the image.
func adjustSharpness(img *image.NRGBA, factor float64) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	blurred := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sums [3]int
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					ni := img.PixOffset(clampPix(x+dx, w), clampPix(y+dy, h))
					sums[0] += int(img.Pix[ni])
					sums[1] += int(img.Pix[ni+1])
					sums[2] += int(img.Pix[ni+2])
				}
			}
			di := blurred.PixOffset(x, y)
			blurred.Pix[di] = uint8(sums[0] / 9)
			blurred.Pix[di+1] = uint8(sums[1] / 9)
			blurred.Pix[di+2] = uint8(sums[2] / 9)
			blurred.Pix[di+3] = img.Pix[img.PixOffset(x, y)+3]
		}
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		for ch := 0; ch < 3; ch++ {
			soft := float64(blurred.Pix[i+ch])
			orig := float64(img.Pix[i+ch])
			dst.Pix[i+ch] = clampChannel(soft + factor*(orig-soft))
		}
		dst.Pix[i+3] = img.Pix[i+3]
	}
	return dst
}

// mapChannels applies fn to the RGB channels of every pixel, clamping the
// result. Alpha passes through.
func mapChannels(img *image.NRGBA, fn func(v float64, ch int) float64) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for i := 0; i < len(img.Pix); i += 4 {
		for ch := 0; ch < 3; ch++ {
			dst.Pix[i+ch] = clampChannel(fn(float64(img.Pix[i+ch]), ch))
		}
		dst.Pix[i+3] = img.Pix[i+3]
	}
	return dst
}

// meanLuma returns the mean BT.601 luminance in [0, 1].
func meanLuma(img *image.NRGBA) float64 {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w*h == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < len(img.Pix); i += 4 {
		sum += 0.299*float64(img.Pix[i]) + 0.587*float64(img.Pix[i+1]) + 0.114*float64(img.Pix[i+2])
	}
	return sum / float64(w*h) / 255
}

// lumaStdDev returns the luminance standard deviation in [0, 1].
func lumaStdDev(img *image.NRGBA) float64 {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w*h == 0 {
		return 0
	}
	mean := meanLuma(img) * 255
	var sumSq float64
	for i := 0; i < len(img.Pix); i += 4 {
		l := 0.299*float64(img.Pix[i]) + 0.587*float64(img.Pix[i+1]) + 0.114*float64(img.Pix[i+2])
		sumSq += (l - mean) * (l - mean)
	}
	return math.Sqrt(sumSq/float64(w*h)) / 255
}

func clampPix(v, limit int) int {
	if v < 0 {
		return 0
	}
	if v >= limit {
		return limit - 1
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
