package facerecog

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/photovault/photovault/internal/facedetect"
)

func gradientFace(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8((x*7 + y*13) % 256)
			img.Set(x, y, color.NRGBA{R: v, G: 255 - v, B: v / 2, A: 255})
		}
	}
	return img
}

func TestExtractEncodingShape(t *testing.T) {
	img := gradientFace(200, 200)
	det := facedetect.Detection{X: 40, Y: 40, Width: 80, Height: 80}

	enc := ExtractEncoding(img, det)
	if enc == nil {
		t.Fatal("expected an encoding")
	}
	if len(enc) != 512 {
		t.Fatalf("encoding should be 512 features (256 intensity + 256 LBP), got %d", len(enc))
	}

	// Both halves are normalized histograms.
	var sumIntensity, sumLBP float64
	for i := 0; i < 256; i++ {
		sumIntensity += enc[i]
		sumLBP += enc[256+i]
	}
	if math.Abs(sumIntensity-1) > 1e-9 {
		t.Errorf("intensity histogram should sum to 1, got %f", sumIntensity)
	}
	if math.Abs(sumLBP-1) > 1e-9 {
		t.Errorf("LBP histogram should sum to 1, got %f", sumLBP)
	}
}

func TestExtractEncodingDeterministic(t *testing.T) {
	img := gradientFace(300, 300)
	det := facedetect.Detection{X: 50, Y: 60, Width: 120, Height: 100}

	first := ExtractEncoding(img, det)
	second := ExtractEncoding(img, det)

	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("encodings differ at index %d: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestExtractEncodingOutOfBounds(t *testing.T) {
	img := gradientFace(50, 50)
	det := facedetect.Detection{X: 100, Y: 100, Width: 40, Height: 40}

	if enc := ExtractEncoding(img, det); enc != nil {
		t.Error("a box entirely outside the image should yield no encoding")
	}
}

func TestExtractEncodingClampsPadding(t *testing.T) {
	img := gradientFace(100, 100)
	// Box touching the top-left corner: padding must clamp, not go negative.
	det := facedetect.Detection{X: 0, Y: 0, Width: 40, Height: 40}

	if enc := ExtractEncoding(img, det); enc == nil {
		t.Error("corner box should still produce an encoding")
	}
}

func TestLBPUniformImage(t *testing.T) {
	// On a uniform image every neighbor equals the center, so every bit is
	// set and all codes are 255.
	gray := make([][]uint8, 10)
	for i := range gray {
		gray[i] = make([]uint8, 10)
		for j := range gray[i] {
			gray[i][j] = 128
		}
	}

	hist := lbpHistogram(gray)
	if hist[255] != 1.0 {
		t.Errorf("uniform image should put all mass in code 255, got %f", hist[255])
	}
	for code := 0; code < 255; code++ {
		if hist[code] != 0 {
			t.Errorf("code %d should be empty, got %f", code, hist[code])
		}
	}
}

func TestLBPTooSmall(t *testing.T) {
	gray := [][]uint8{{1, 2}, {3, 4}}
	hist := lbpHistogram(gray)
	for _, v := range hist {
		if v != 0 {
			t.Fatal("image without interior pixels should produce a zero histogram")
		}
	}
}
