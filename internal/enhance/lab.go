package enhance

import "math"

// CIELAB conversion against the D65 white point. Channels are scaled to
// 8-bit ranges: L maps 0..100 to 0..255, a and b are offset by 128.

const (
	labWhiteX = 0.95047
	labWhiteY = 1.0
	labWhiteZ = 1.08883
)

func srgbToLinear(c float64) float64 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

func linearToSRGB(c float64) float64 {
	if c <= 0.0031308 {
		return c * 12.92
	}
	return 1.055*math.Pow(c, 1.0/2.4) - 0.055
}

func labF(t float64) float64 {
	if t > 0.008856 {
		return math.Cbrt(t)
	}
	return 7.787*t + 16.0/116.0
}

func labFInv(t float64) float64 {
	if t3 := t * t * t; t3 > 0.008856 {
		return t3
	}
	return (t - 16.0/116.0) / 7.787
}

// rgbToLab converts one 8-bit sRGB pixel to 8-bit-scaled LAB.
func rgbToLab(r, g, b uint8) (float64, float64, float64) {
	rl := srgbToLinear(float64(r) / 255)
	gl := srgbToLinear(float64(g) / 255)
	bl := srgbToLinear(float64(b) / 255)

	x := (0.4124564*rl + 0.3575761*gl + 0.1804375*bl) / labWhiteX
	y := (0.2126729*rl + 0.7151522*gl + 0.0721750*bl) / labWhiteY
	z := (0.0193339*rl + 0.1191920*gl + 0.9503041*bl) / labWhiteZ

	fx, fy, fz := labF(x), labF(y), labF(z)
	l := 116*fy - 16
	a := 500 * (fx - fy)
	bb := 200 * (fy - fz)

	return l * 255 / 100, a + 128, bb + 128
}

// labToRGB converts an 8-bit-scaled LAB pixel back to sRGB, clamping to
// the displayable gamut.
func labToRGB(l, a, b float64) (uint8, uint8, uint8) {
	lf := l * 100 / 255
	af := a - 128
	bf := b - 128

	fy := (lf + 16) / 116
	fx := fy + af/500
	fz := fy - bf/200

	x := labFInv(fx) * labWhiteX
	y := labFInv(fy) * labWhiteY
	z := labFInv(fz) * labWhiteZ

	rl := 3.2404542*x - 1.5371385*y - 0.4985314*z
	gl := -0.9692660*x + 1.8760108*y + 0.0415560*z
	bl := 0.0556434*x - 0.2040259*y + 1.0572252*z

	return clampChannel(linearToSRGB(rl) * 255),
		clampChannel(linearToSRGB(gl) * 255),
		clampChannel(linearToSRGB(bl) * 255)
}

func clampChannel(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
