package enhance

import "image"

const (
	claheTiles     = 8
	claheClipLimit = 2.0
)

// claheLuminance equalizes local contrast on the LAB luminance channel
// while leaving chroma as-is, so the operation cannot introduce color
// casts.
func claheLuminance(img *image.NRGBA) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return img
	}

	lPlane := make([][]uint8, h)
	aPlane := make([][]float64, h)
	bPlane := make([][]float64, h)
	for y := 0; y < h; y++ {
		lPlane[y] = make([]uint8, w)
		aPlane[y] = make([]float64, w)
		bPlane[y] = make([]float64, w)
		for x := 0; x < w; x++ {
			i := img.PixOffset(x, y)
			l, a, bb := rgbToLab(img.Pix[i], img.Pix[i+1], img.Pix[i+2])
			lPlane[y][x] = clampChannel(l)
			aPlane[y][x] = a
			bPlane[y][x] = bb
		}
	}

	equalized := claheApply(lPlane, claheTiles, claheClipLimit)

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl := labToRGB(float64(equalized[y][x]), aPlane[y][x], bPlane[y][x])
			i := dst.PixOffset(x, y)
			dst.Pix[i] = r
			dst.Pix[i+1] = g
			dst.Pix[i+2] = bl
			dst.Pix[i+3] = img.Pix[img.PixOffset(x, y)+3]
		}
	}
	return dst
}

// claheApply runs contrast-limited adaptive histogram equalization over an
// 8-bit plane: the plane is split into a grid of tiles, each tile gets a
// clipped equalization lookup table, and every pixel is remapped by
// bilinear interpolation between the four nearest tile tables. Operating
// on the luminance plane only keeps chroma untouched.
func claheApply(plane [][]uint8, tiles int, clipLimit float64) [][]uint8 {
	h := len(plane)
	if h == 0 {
		return plane
	}
	w := len(plane[0])
	if w < tiles || h < tiles {
		return plane
	}

	tileW := (w + tiles - 1) / tiles
	tileH := (h + tiles - 1) / tiles

	// 1. Per-tile clipped equalization tables.
	luts := make([][][256]uint8, tiles)
	for ty := 0; ty < tiles; ty++ {
		luts[ty] = make([][256]uint8, tiles)
		for tx := 0; tx < tiles; tx++ {
			y0, y1 := ty*tileH, min((ty+1)*tileH, h)
			x0, x1 := tx*tileW, min((tx+1)*tileW, w)
			luts[ty][tx] = tileLUT(plane, x0, y0, x1, y1, clipLimit)
		}
	}

	// 2. Remap each pixel by interpolating between tile centers.
	dst := make([][]uint8, h)
	for y := 0; y < h; y++ {
		dst[y] = make([]uint8, w)
		for x := 0; x < w; x++ {
			// Position relative to the grid of tile centers.
			fy := (float64(y) - float64(tileH)/2) / float64(tileH)
			fx := (float64(x) - float64(tileW)/2) / float64(tileW)

			ty0 := clampTile(int(fy), tiles)
			tx0 := clampTile(int(fx), tiles)
			if fy < 0 {
				ty0 = 0
			}
			if fx < 0 {
				tx0 = 0
			}
			ty1 := clampTile(ty0+1, tiles)
			tx1 := clampTile(tx0+1, tiles)

			wy := fy - float64(ty0)
			wx := fx - float64(tx0)
			if wy < 0 {
				wy = 0
			} else if wy > 1 {
				wy = 1
			}
			if wx < 0 {
				wx = 0
			} else if wx > 1 {
				wx = 1
			}

			v := plane[y][x]
			top := (1-wx)*float64(luts[ty0][tx0][v]) + wx*float64(luts[ty0][tx1][v])
			bottom := (1-wx)*float64(luts[ty1][tx0][v]) + wx*float64(luts[ty1][tx1][v])
			dst[y][x] = uint8((1-wy)*top + wy*bottom + 0.5)
		}
	}
	return dst
}

// tileLUT builds the clipped-equalization table for one tile. Histogram
// mass above the clip limit is redistributed evenly across all bins, which
// is what bounds the local contrast amplification.
func tileLUT(plane [][]uint8, x0, y0, x1, y1 int, clipLimit float64) [256]uint8 {
	var hist [256]int
	total := 0
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			hist[plane[y][x]]++
			total++
		}
	}

	var lut [256]uint8
	if total == 0 {
		for i := range lut {
			lut[i] = uint8(i)
		}
		return lut
	}

	clip := int(clipLimit * float64(total) / 256)
	if clip < 1 {
		clip = 1
	}
	excess := 0
	for i := range hist {
		if hist[i] > clip {
			excess += hist[i] - clip
			hist[i] = clip
		}
	}
	// Redistribute the clipped mass evenly, then spread the integer
	// remainder at a fixed stride so no mass is lost and the remainder
	// does not pile up at one end of the range.
	redistribute := excess / 256
	for i := range hist {
		hist[i] += redistribute
	}
	leftover := excess % 256
	if leftover > 0 {
		step := max(1, 256/leftover)
		for i := 0; i < 256 && leftover > 0; i += step {
			hist[i]++
			leftover--
		}
	}

	cum := 0
	for i := range hist {
		cum += hist[i]
		lut[i] = uint8(min(255, cum*255/total))
	}
	return lut
}

func clampTile(t, tiles int) int {
	if t < 0 {
		return 0
	}
	if t >= tiles {
		return tiles - 1
	}
	return t
}
