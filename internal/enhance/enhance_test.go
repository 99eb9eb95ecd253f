package enhance

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func noisy(w, h int, lo, hi uint8) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	span := int(hi) - int(lo) + 1
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := lo + uint8((x*31+y*17)%span)
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

func samePixels(a, b *image.NRGBA) bool {
	if len(a.Pix) != len(b.Pix) {
		return false
	}
	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			return false
		}
	}
	return true
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	if s.Brightness != 1.0 || s.Contrast != 1.0 || s.Sharpness != 1.0 || s.Color != 1.0 {
		t.Errorf("factors should default to 1.0: %+v", s)
	}
	if !s.Denoise || !s.CLAHE || !s.AutoLevels {
		t.Errorf("structural steps should default on: %+v", s)
	}
	if s.Colorize {
		t.Error("colorize should default off")
	}
}

func TestAutoEnhanceNilSettingsUsesDefaults(t *testing.T) {
	e := New(nil)
	img := noisy(64, 64, 40, 200)

	_, applied := e.AutoEnhance(img, nil)
	if applied != DefaultSettings() {
		t.Errorf("applied settings should be the defaults, got %+v", applied)
	}
}

func TestAutoEnhanceNeutralIsNoOp(t *testing.T) {
	e := New(nil)
	img := noisy(32, 32, 40, 200)

	settings := Settings{Brightness: 1, Contrast: 1, Sharpness: 1, Color: 1}
	out, _ := e.AutoEnhance(img, &settings)

	nrgba, ok := out.(*image.NRGBA)
	if !ok {
		t.Fatalf("expected *image.NRGBA output, got %T", out)
	}
	if !samePixels(img, nrgba) {
		t.Error("all steps disabled with neutral factors should leave pixels unchanged")
	}
}

func TestAutoEnhanceSkipsColorizeOnColorImage(t *testing.T) {
	e := New(nil)
	img := solid(32, 32, color.NRGBA{R: 200, G: 50, B: 50, A: 255})

	settings := Settings{Brightness: 1, Contrast: 1, Sharpness: 1, Color: 1, Colorize: true}
	out, _ := e.AutoEnhance(img, &settings)
	if !samePixels(img, out.(*image.NRGBA)) {
		t.Error("colorization of an already-colored image should be skipped")
	}
}

func TestColorizeAddsWarmTint(t *testing.T) {
	img := solid(32, 32, color.NRGBA{R: 128, G: 128, B: 128, A: 255})
	if !isEffectivelyGrayscale(img) {
		t.Fatal("fixture should be grayscale")
	}

	tinted := colorizeSepia(img)
	if isEffectivelyGrayscale(tinted) {
		t.Error("colorization should move pixels off the gray axis")
	}
	// A warm tint pushes red above blue.
	i := tinted.PixOffset(16, 16)
	if tinted.Pix[i] <= tinted.Pix[i+2] {
		t.Errorf("expected warm tint (R > B), got R=%d B=%d", tinted.Pix[i], tinted.Pix[i+2])
	}
}

func TestIsEffectivelyGrayscale(t *testing.T) {
	drift := solid(8, 8, color.NRGBA{R: 120, G: 123, B: 118, A: 255})
	if !isEffectivelyGrayscale(drift) {
		t.Error("small channel drift should still count as grayscale")
	}
	colored := solid(8, 8, color.NRGBA{R: 120, G: 140, B: 118, A: 255})
	if isEffectivelyGrayscale(colored) {
		t.Error("a clear color cast should not count as grayscale")
	}
}

func TestAdjustBrightness(t *testing.T) {
	img := solid(8, 8, color.NRGBA{R: 100, G: 100, B: 100, A: 255})

	dark := adjustBrightness(img, 0)
	if dark.Pix[0] != 0 {
		t.Errorf("factor 0 should produce black, got %d", dark.Pix[0])
	}

	doubled := adjustBrightness(img, 2)
	if doubled.Pix[0] != 200 {
		t.Errorf("factor 2 should double channels, got %d", doubled.Pix[0])
	}

	clamped := adjustBrightness(img, 5)
	if clamped.Pix[0] != 255 {
		t.Errorf("overflow should clamp to 255, got %d", clamped.Pix[0])
	}
}

func TestAdjustContrastZeroFlattens(t *testing.T) {
	img := noisy(16, 16, 50, 200)
	flat := adjustContrast(img, 0)

	// Every pixel collapses to the mean gray.
	first := flat.Pix[0]
	for i := 0; i < len(flat.Pix); i += 4 {
		if flat.Pix[i] != first {
			t.Fatalf("factor 0 should flatten to a single gray, got %d and %d", first, flat.Pix[i])
		}
	}
}

func TestAdjustColorZeroDesaturates(t *testing.T) {
	img := solid(8, 8, color.NRGBA{R: 200, G: 50, B: 100, A: 255})
	gray := adjustColor(img, 0)

	i := gray.PixOffset(4, 4)
	if gray.Pix[i] != gray.Pix[i+1] || gray.Pix[i+1] != gray.Pix[i+2] {
		t.Errorf("factor 0 should produce gray pixels, got (%d,%d,%d)",
			gray.Pix[i], gray.Pix[i+1], gray.Pix[i+2])
	}
}

func TestAdjustSharpnessNeutral(t *testing.T) {
	img := noisy(16, 16, 0, 255)
	out := adjustSharpness(img, 1)
	if !samePixels(img, out) {
		t.Error("factor 1 should reproduce the original exactly")
	}
}

func TestAutoLevelsStretches(t *testing.T) {
	img := noisy(64, 64, 80, 170)
	out := autoLevels(img)

	var lo, hi uint8 = 255, 0
	for i := 0; i < len(out.Pix); i += 4 {
		if out.Pix[i] < lo {
			lo = out.Pix[i]
		}
		if out.Pix[i] > hi {
			hi = out.Pix[i]
		}
	}
	if lo > 10 || hi < 245 {
		t.Errorf("levels should stretch toward the full range, got [%d, %d]", lo, hi)
	}
}

func TestAutoLevelsFlatImageUntouched(t *testing.T) {
	img := solid(32, 32, color.NRGBA{R: 128, G: 128, B: 128, A: 255})
	out := autoLevels(img)
	if !samePixels(img, out) {
		t.Error("a flat channel should not be stretched")
	}
}

func TestBilateralPreservesEdges(t *testing.T) {
	// Left half dark, right half bright. The filter should smooth within
	// the halves without washing out the step between them.
	img := image.NewNRGBA(image.Rect(0, 0, 40, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 40; x++ {
			v := uint8(30)
			if x >= 20 {
				v = 220
			}
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}

	out := bilateralFilter(img, bilateralDiameter, bilateralSigmaColor, bilateralSigmaSpace)
	left := out.Pix[out.PixOffset(10, 10)]
	right := out.Pix[out.PixOffset(30, 10)]
	if int(right)-int(left) < 150 {
		t.Errorf("edge washed out: left=%d right=%d", left, right)
	}
}

func TestClaheIncreasesLocalContrast(t *testing.T) {
	// A low-contrast gradient plane should spread out after equalization.
	plane := make([][]uint8, 64)
	for y := range plane {
		plane[y] = make([]uint8, 64)
		for x := range plane[y] {
			plane[y][x] = uint8(100 + (x+y)/4)
		}
	}

	out := claheApply(plane, claheTiles, claheClipLimit)
	if spread(out) <= spread(plane) {
		t.Errorf("equalization should widen the value range: %d -> %d", spread(plane), spread(out))
	}
}

func spread(plane [][]uint8) int {
	var lo, hi uint8 = 255, 0
	for _, row := range plane {
		for _, v := range row {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	return int(hi) - int(lo)
}

func TestLabRoundTrip(t *testing.T) {
	cases := []color.NRGBA{
		{R: 0, G: 0, B: 0},
		{R: 255, G: 255, B: 255},
		{R: 128, G: 128, B: 128},
		{R: 200, G: 50, B: 100},
		{R: 10, G: 240, B: 30},
	}
	for _, c := range cases {
		l, a, b := rgbToLab(c.R, c.G, c.B)
		r, g, bl := labToRGB(l, a, b)
		if absInt(int(r)-int(c.R)) > 2 || absInt(int(g)-int(c.G)) > 2 || absInt(int(bl)-int(c.B)) > 2 {
			t.Errorf("round trip of (%d,%d,%d) gave (%d,%d,%d)", c.R, c.G, c.B, r, g, bl)
		}
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func TestSuggestSettings(t *testing.T) {
	e := New(nil)

	t.Run("dark image", func(t *testing.T) {
		s := e.SuggestSettings(noisy(64, 64, 0, 150))
		if s.Brightness != 1.3 || s.Contrast != 1.2 {
			t.Errorf("dark image should suggest brightness 1.3 / contrast 1.2, got %+v", s)
		}
	})

	t.Run("bright image", func(t *testing.T) {
		// Checkerboard of two bright values: high mean, enough spread to
		// not count as flat.
		img := image.NewNRGBA(image.Rect(0, 0, 64, 64))
		for y := 0; y < 64; y++ {
			for x := 0; x < 64; x++ {
				v := uint8(160)
				if (x+y)%2 == 0 {
					v = 255
				}
				img.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
			}
		}
		s := e.SuggestSettings(img)
		if s.Brightness != 0.8 || s.Contrast != 1.1 {
			t.Errorf("bright image should suggest brightness 0.8 / contrast 1.1, got %+v", s)
		}
	})

	t.Run("flat mid-gray image", func(t *testing.T) {
		s := e.SuggestSettings(solid(64, 64, color.NRGBA{R: 128, G: 128, B: 128, A: 255}))
		if s.Brightness != 1.0 {
			t.Errorf("mid-range luminance should keep brightness at 1.0, got %f", s.Brightness)
		}
		if s.Contrast != 1.5 || !s.CLAHE {
			t.Errorf("flat image should suggest contrast 1.5 with CLAHE, got %+v", s)
		}
	})

	t.Run("always boosts sharpness and color", func(t *testing.T) {
		s := e.SuggestSettings(noisy(64, 64, 40, 220))
		if s.Sharpness != 1.2 || math.Abs(s.Color-1.1) > 1e-12 {
			t.Errorf("expected sharpness 1.2 and color 1.1, got %+v", s)
		}
	})
}
