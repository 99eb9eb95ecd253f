package handlers

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/photovault/photovault/internal/facedetect"
	"github.com/photovault/photovault/internal/facerecog"
	"github.com/photovault/photovault/internal/storage"
)

// testImage builds a small gradient image so encodings and detections
// have something to chew on.
func testImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x % 256), G: uint8(y % 256), B: 90, A: 255})
		}
	}
	return img
}

// uploadRequest builds a multipart request with the image under the
// given field name plus extra form values.
func uploadRequest(t *testing.T, method, path, field string, img image.Image, fields map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if img != nil {
		part, err := writer.CreateFormFile(field, "photo.png")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if err := png.Encode(part, img); err != nil {
			t.Fatalf("encode test image: %v", err)
		}
	}
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// stubDetector returns fixed detections or an error.
type stubDetector struct {
	detections []facedetect.Detection
	err        error
}

func (s *stubDetector) Detect(_ image.Image) ([]facedetect.Detection, error) {
	return s.detections, s.err
}

func (s *stubDetector) Available() bool { return true }

// testGallery creates a gallery backed by a temp directory.
func testGallery(t *testing.T) *facerecog.Gallery {
	t.Helper()
	store := storage.NewDisk(t.TempDir())
	return facerecog.NewGallery(store, "faces/gallery.bin")
}
