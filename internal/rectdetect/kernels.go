package rectdetect

import (
	"image"
	"math"
)

// grayscale converts to 8-bit luma using the ITU-R BT.601 weights.
func grayscale(img image.Image) [][]uint8 {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	gray := make([][]uint8, h)
	for y := 0; y < h; y++ {
		gray[y] = make([]uint8, w)
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			lum := 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
			gray[y][x] = uint8(lum)
		}
	}
	return gray
}

// gaussianBlur5 applies a 5x5 binomial Gaussian kernel ([1 4 6 4 1]/16 in
// each direction). Edges are handled by clamping coordinates.
func gaussianBlur5(src [][]uint8) [][]uint8 {
	weights := [5]int{1, 4, 6, 4, 1}
	h := len(src)
	if h == 0 {
		return src
	}
	w := len(src[0])

	// Horizontal pass.
	tmp := make([][]uint8, h)
	for y := 0; y < h; y++ {
		tmp[y] = make([]uint8, w)
		for x := 0; x < w; x++ {
			sum := 0
			for k := -2; k <= 2; k++ {
				sum += weights[k+2] * int(src[y][clampCoord(x+k, w)])
			}
			tmp[y][x] = uint8(sum / 16)
		}
	}

	// Vertical pass.
	dst := make([][]uint8, h)
	for y := 0; y < h; y++ {
		dst[y] = make([]uint8, w)
		for x := 0; x < w; x++ {
			sum := 0
			for k := -2; k <= 2; k++ {
				sum += weights[k+2] * int(tmp[clampCoord(y+k, h)][x])
			}
			dst[y][x] = uint8(sum / 16)
		}
	}
	return dst
}

// adaptiveThreshold binarizes each pixel against a Gaussian-weighted mean
// of its window minus a constant offset. Pixels above the local threshold
// become 255, the rest 0.
func adaptiveThreshold(src [][]uint8, window int, offset float64) [][]uint8 {
	h := len(src)
	if h == 0 {
		return src
	}
	w := len(src[0])
	radius := window / 2
	weights := gaussianWeights(window)

	// Separable weighted mean: horizontal pass into float buffers, then
	// vertical pass against the threshold.
	tmp := make([][]float64, h)
	for y := 0; y < h; y++ {
		tmp[y] = make([]float64, w)
		for x := 0; x < w; x++ {
			var sum float64
			for k := -radius; k <= radius; k++ {
				sum += weights[k+radius] * float64(src[y][clampCoord(x+k, w)])
			}
			tmp[y][x] = sum
		}
	}

	dst := make([][]uint8, h)
	for y := 0; y < h; y++ {
		dst[y] = make([]uint8, w)
		for x := 0; x < w; x++ {
			var mean float64
			for k := -radius; k <= radius; k++ {
				mean += weights[k+radius] * tmp[clampCoord(y+k, h)][x]
			}
			if float64(src[y][x]) > mean-offset {
				dst[y][x] = 255
			}
		}
	}
	return dst
}

// gaussianWeights builds a normalized 1D Gaussian kernel of the given odd
// size, with sigma derived from the size the same way OpenCV does:
// sigma = 0.3*((size-1)*0.5 - 1) + 0.8.
func gaussianWeights(size int) []float64 {
	sigma := 0.3*(float64(size-1)*0.5-1) + 0.8
	center := size / 2
	weights := make([]float64, size)
	var total float64
	for i := range weights {
		d := float64(i - center)
		weights[i] = math.Exp(-d * d / (2 * sigma * sigma))
		total += weights[i]
	}
	for i := range weights {
		weights[i] /= total
	}
	return weights
}

// canny runs the classic Canny edge detector: Sobel gradients, non-maximum
// suppression along the gradient direction, then double-threshold
// hysteresis. Output pixels are 255 on edges, 0 elsewhere.
func canny(src [][]uint8, low, high float64) [][]uint8 {
	h := len(src)
	if h == 0 {
		return src
	}
	w := len(src[0])

	// 1. Sobel gradients.
	mag := make([][]float64, h)
	dir := make([][]uint8, h) // quantized to 0=E/W, 1=NE/SW, 2=N/S, 3=NW/SE
	for y := 0; y < h; y++ {
		mag[y] = make([]float64, w)
		dir[y] = make([]uint8, w)
	}
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := float64(int(src[y-1][x+1]) + 2*int(src[y][x+1]) + int(src[y+1][x+1]) -
				int(src[y-1][x-1]) - 2*int(src[y][x-1]) - int(src[y+1][x-1]))
			gy := float64(int(src[y+1][x-1]) + 2*int(src[y+1][x]) + int(src[y+1][x+1]) -
				int(src[y-1][x-1]) - 2*int(src[y-1][x]) - int(src[y-1][x+1]))
			mag[y][x] = math.Hypot(gx, gy)

			angle := math.Atan2(gy, gx) * 180 / math.Pi
			if angle < 0 {
				angle += 180
			}
			switch {
			case angle < 22.5 || angle >= 157.5:
				dir[y][x] = 0
			case angle < 67.5:
				dir[y][x] = 1
			case angle < 112.5:
				dir[y][x] = 2
			default:
				dir[y][x] = 3
			}
		}
	}

	// 2. Non-maximum suppression: keep a pixel only if it is the local
	// maximum along its gradient direction.
	const (
		weak   = 1
		strong = 2
	)
	marks := make([][]uint8, h)
	for y := range marks {
		marks[y] = make([]uint8, w)
	}
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			m := mag[y][x]
			if m < low {
				continue
			}
			var a, b float64
			switch dir[y][x] {
			case 0:
				a, b = mag[y][x-1], mag[y][x+1]
			case 1:
				a, b = mag[y-1][x+1], mag[y+1][x-1]
			case 2:
				a, b = mag[y-1][x], mag[y+1][x]
			default:
				a, b = mag[y-1][x-1], mag[y+1][x+1]
			}
			if m < a || m < b {
				continue
			}
			if m >= high {
				marks[y][x] = strong
			} else {
				marks[y][x] = weak
			}
		}
	}

	// 3. Hysteresis: weak pixels survive only when connected to a strong
	// pixel. Flood from every strong pixel through its 8-neighborhood.
	dst := make([][]uint8, h)
	for y := range dst {
		dst[y] = make([]uint8, w)
	}
	var stack [][2]int
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			if marks[y][x] == strong && dst[y][x] == 0 {
				dst[y][x] = 255
				stack = append(stack, [2]int{x, y})
				for len(stack) > 0 {
					p := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					for dy := -1; dy <= 1; dy++ {
						for dx := -1; dx <= 1; dx++ {
							nx, ny := p[0]+dx, p[1]+dy
							if nx < 1 || ny < 1 || nx >= w-1 || ny >= h-1 {
								continue
							}
							if marks[ny][nx] != 0 && dst[ny][nx] == 0 {
								dst[ny][nx] = 255
								stack = append(stack, [2]int{nx, ny})
							}
						}
					}
				}
			}
		}
	}
	return dst
}

// morphClose3 performs a 3x3 morphological close (dilate then erode) on a
// binary image, bridging single-pixel gaps in edge chains.
func morphClose3(src [][]uint8) [][]uint8 {
	h := len(src)
	if h == 0 {
		return src
	}
	w := len(src[0])

	dilated := make([][]uint8, h)
	for y := 0; y < h; y++ {
		dilated[y] = make([]uint8, w)
		for x := 0; x < w; x++ {
			for dy := -1; dy <= 1 && dilated[y][x] == 0; dy++ {
				for dx := -1; dx <= 1; dx++ {
					ny, nx := clampCoord(y+dy, h), clampCoord(x+dx, w)
					if src[ny][nx] != 0 {
						dilated[y][x] = 255
						break
					}
				}
			}
		}
	}

	dst := make([][]uint8, h)
	for y := 0; y < h; y++ {
		dst[y] = make([]uint8, w)
		for x := 0; x < w; x++ {
			all := true
			for dy := -1; dy <= 1 && all; dy++ {
				for dx := -1; dx <= 1; dx++ {
					ny, nx := clampCoord(y+dy, h), clampCoord(x+dx, w)
					if dilated[ny][nx] == 0 {
						all = false
						break
					}
				}
			}
			if all {
				dst[y][x] = 255
			}
		}
	}
	return dst
}

func clampCoord(v, limit int) int {
	if v < 0 {
		return 0
	}
	if v >= limit {
		return limit - 1
	}
	return v
}
