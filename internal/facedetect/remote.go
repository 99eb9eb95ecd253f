package facedetect

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/photovault/photovault/internal/imageio"
)

// RemoteDetector calls a DNN face detection service over HTTP. The service
// accepts a multipart image upload and answers with per-face bounding boxes
// and native detection scores, which are trusted directly (unlike the
// cascade's synthesized confidence) and filtered by minConfidence.
type RemoteDetector struct {
	baseURL       string
	minConfidence float64
	client        *http.Client
}

func NewRemoteDetector(baseURL string, minConfidence float64) *RemoteDetector {
	if minConfidence <= 0 {
		minConfidence = 0.5
	}
	return &RemoteDetector{
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		minConfidence: minConfidence,
		client:        &http.Client{Timeout: 30 * time.Second},
	}
}

func (r *RemoteDetector) Available() bool {
	return r != nil && r.baseURL != ""
}

type remoteFace struct {
	BBox     []float64 `json:"bbox"` // [x1, y1, x2, y2]
	DetScore float64   `json:"det_score"`
}

type remoteResponse struct {
	FacesCount int          `json:"faces_count"`
	Faces      []remoteFace `json:"faces"`
}

func (r *RemoteDetector) Detect(img image.Image) ([]Detection, error) {
	payload, err := imageio.EncodeJPEG(img)
	if err != nil {
		return nil, fmt.Errorf("encoding image for face service: %w", err)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "image.jpg")
	if err != nil {
		return nil, fmt.Errorf("creating form file: %w", err)
	}
	if _, err := part.Write(payload); err != nil {
		return nil, fmt.Errorf("writing image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart writer: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, r.baseURL+"/detect/face", &buf)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("face service request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading face service response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("face service error (status %d): %s", resp.StatusCode, body)
	}

	var parsed remoteResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parsing face service response: %w", err)
	}

	bounds := img.Bounds()
	var detections []Detection
	for _, f := range parsed.Faces {
		if len(f.BBox) != 4 || f.DetScore < r.minConfidence {
			continue
		}
		x1 := clampInt(int(f.BBox[0]), 0, bounds.Dx())
		y1 := clampInt(int(f.BBox[1]), 0, bounds.Dy())
		x2 := clampInt(int(f.BBox[2]), 0, bounds.Dx())
		y2 := clampInt(int(f.BBox[3]), 0, bounds.Dy())
		if x2 <= x1 || y2 <= y1 {
			continue
		}
		detections = append(detections, Detection{
			X:          x1,
			Y:          y1,
			Width:      x2 - x1,
			Height:     y2 - y1,
			Confidence: f.DetScore,
			Method:     MethodAccurate,
		})
	}
	return detections, nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
