package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/photovault/photovault/internal/facedetect"
)

func TestHealthCheck(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()

	HealthCheck(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want ok", body["status"])
	}
}

func TestFacesDetect(t *testing.T) {
	detector := &stubDetector{detections: []facedetect.Detection{
		{X: 10, Y: 20, Width: 50, Height: 60, Confidence: 0.8, Method: facedetect.MethodFast},
	}}
	h := NewFacesHandler(detector, testGallery(t), 0.5)

	req := uploadRequest(t, http.MethodPost, "/api/v1/faces/detect", "image", testImage(200, 200), nil)
	rec := httptest.NewRecorder()
	h.Detect(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		FacesCount int                    `json:"faces_count"`
		Faces      []facedetect.Detection `json:"faces"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.FacesCount != 1 || len(body.Faces) != 1 {
		t.Fatalf("expected 1 face, got %+v", body)
	}
	if body.Faces[0].Method != facedetect.MethodFast {
		t.Errorf("method = %q, want %q", body.Faces[0].Method, facedetect.MethodFast)
	}
}

func TestFacesDetectBackendFailureIsAdvisory(t *testing.T) {
	h := NewFacesHandler(&stubDetector{err: errors.New("backend down")}, testGallery(t), 0.5)

	req := uploadRequest(t, http.MethodPost, "/api/v1/faces/detect", "image", testImage(100, 100), nil)
	rec := httptest.NewRecorder()
	h.Detect(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("backend failure should not fail the request, got %d", rec.Code)
	}
	var body struct {
		FacesCount int `json:"faces_count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.FacesCount != 0 {
		t.Errorf("expected 0 faces on backend failure, got %d", body.FacesCount)
	}
}

func TestFacesDetectRequiresImage(t *testing.T) {
	h := NewFacesHandler(&stubDetector{}, testGallery(t), 0.5)

	req := uploadRequest(t, http.MethodPost, "/api/v1/faces/detect", "image", nil, map[string]string{"noise": "1"})
	rec := httptest.NewRecorder()
	h.Detect(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing image should be 400, got %d", rec.Code)
	}
}

func TestFacesRecognize(t *testing.T) {
	img := testImage(200, 200)
	det := facedetect.Detection{X: 40, Y: 40, Width: 80, Height: 80, Confidence: 0.9}

	gallery := testGallery(t)
	if err := gallery.AddPersonEncoding(1, "Anna", img, det, "photos/a.png"); err != nil {
		t.Fatalf("seed gallery: %v", err)
	}

	h := NewFacesHandler(&stubDetector{detections: []facedetect.Detection{det}}, gallery, 0.5)
	req := uploadRequest(t, http.MethodPost, "/api/v1/faces/recognize", "image", img, nil)
	rec := httptest.NewRecorder()
	h.Recognize(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		FacesCount int `json:"faces_count"`
		Results    []struct {
			Match *struct {
				PersonName string  `json:"person_name"`
				Confidence float64 `json:"confidence"`
			} `json:"match"`
		} `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.FacesCount != 1 || len(body.Results) != 1 {
		t.Fatalf("expected one result, got %+v", body)
	}
	if body.Results[0].Match == nil || body.Results[0].Match.PersonName != "Anna" {
		t.Errorf("expected a match for Anna, got %+v", body.Results[0].Match)
	}
}

func TestFacesRecognizeInvalidThreshold(t *testing.T) {
	h := NewFacesHandler(&stubDetector{}, testGallery(t), 0.5)

	req := uploadRequest(t, http.MethodPost, "/api/v1/faces/recognize", "image", testImage(100, 100),
		map[string]string{"threshold": "1.5"})
	rec := httptest.NewRecorder()
	h.Recognize(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("out-of-range threshold should be 400, got %d", rec.Code)
	}
}
