// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

// Upload constants
const (
	// MaxUploadSize is the maximum accepted request body for image uploads (bytes)
	MaxUploadSize = 50 << 20

	// MaxMontageUploads is the maximum number of photos accepted per montage request
	MaxMontageUploads = 20
)

// Pipeline constants
const (
	// DefaultFaceMinConfidence is the minimum detector confidence for reporting a face
	DefaultFaceMinConfidence = 0.5

	// MontageJPEGQuality is the JPEG quality used when encoding montages
	MontageJPEGQuality = 90
)
