package config

import (
	_ "embed"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed presets.yaml
var presetsYAML []byte

type Config struct {
	Storage StorageConfig
	Faces   FacesConfig
	Gallery GalleryConfig
	Detect  DetectConfig
	Presets PresetsConfig
}

type StorageConfig struct {
	Backend     string // "disk" (default) or "s3"
	Root        string // base directory for the disk backend
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3UseSSL    bool
}

type FacesConfig struct {
	CascadePath   string  // path to a pigo facefinder cascade binary
	RemoteURL     string  // optional DNN face service (e.g. http://localhost:8000)
	MinConfidence float64 // minimum confidence for remote detections (default 0.5)
}

type GalleryConfig struct {
	Path string // storage path of the face encoding gallery blob
}

type DetectConfig struct {
	MaxDetectPixels  int // pixel budget for rectangular photo detection (default 25MP)
	MaxExtractPixels int // pixel budget for extraction (default 30MP)
}

// PresetsConfig holds named enhancement presets loaded from the embedded
// presets.yaml. Preset values merge onto the enhancer defaults the same way
// caller-supplied overrides do.
type PresetsConfig struct {
	Presets map[string]Preset `yaml:"presets"`
}

type Preset struct {
	Brightness *float64 `yaml:"brightness"`
	Contrast   *float64 `yaml:"contrast"`
	Sharpness  *float64 `yaml:"sharpness"`
	Color      *float64 `yaml:"color"`
	Denoise    *bool    `yaml:"denoise"`
	CLAHE      *bool    `yaml:"clahe"`
	AutoLevels *bool    `yaml:"auto_levels"`
	Colorize   *bool    `yaml:"colorize"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable as a float in (0, 1].
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 && f <= 1 {
		return f
	}
	return defaultVal
}

func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

func Load() *Config {
	var presets PresetsConfig
	if err := yaml.Unmarshal(presetsYAML, &presets); err != nil {
		// Embedded file, so this should never happen in practice.
		panic("failed to unmarshal embedded presets.yaml: " + err.Error())
	}

	return &Config{
		Storage: StorageConfig{
			Backend:     envString("PHOTOVAULT_STORAGE_BACKEND", "disk"),
			Root:        envString("PHOTOVAULT_STORAGE_ROOT", "./data"),
			S3Endpoint:  os.Getenv("PHOTOVAULT_S3_ENDPOINT"),
			S3AccessKey: os.Getenv("PHOTOVAULT_S3_ACCESS_KEY"),
			S3SecretKey: os.Getenv("PHOTOVAULT_S3_SECRET_KEY"),
			S3Bucket:    envString("PHOTOVAULT_S3_BUCKET", "photovault"),
			S3UseSSL:    os.Getenv("PHOTOVAULT_S3_USE_SSL") == "true",
		},
		Faces: FacesConfig{
			CascadePath:   os.Getenv("PHOTOVAULT_CASCADE_PATH"),
			RemoteURL:     os.Getenv("PHOTOVAULT_FACE_SERVICE_URL"),
			MinConfidence: envFloat("PHOTOVAULT_FACE_MIN_CONFIDENCE", 0.5),
		},
		Gallery: GalleryConfig{
			Path: envString("PHOTOVAULT_GALLERY_PATH", "faces/gallery.bin"),
		},
		Detect: DetectConfig{
			MaxDetectPixels:  envInt("PHOTOVAULT_MAX_DETECT_PIXELS", 25_000_000),
			MaxExtractPixels: envInt("PHOTOVAULT_MAX_EXTRACT_PIXELS", 30_000_000),
		},
		Presets: presets,
	}
}

// GetPreset returns the named enhancement preset and whether it exists.
func (c *Config) GetPreset(name string) (Preset, bool) {
	p, ok := c.Presets.Presets[name]
	return p, ok
}
