// Package storage abstracts where photo bytes and derived artifacts live.
// The processing pipeline is agnostic to whether a path resolves to local
// disk or an S3-compatible object store.
package storage

import (
	"errors"

	"github.com/photovault/photovault/internal/config"
)

// ErrNotFound is returned when a stored object does not exist.
var ErrNotFound = errors.New("storage: object not found")

// Storage is the minimal contract the processing core needs: whole-object
// reads and writes keyed by a slash-separated path.
type Storage interface {
	Load(path string) ([]byte, error)
	Save(path string, data []byte) error
	Exists(path string) bool
	Delete(path string) error
}

// FromConfig selects a storage backend based on configuration.
func FromConfig(cfg *config.Config) (Storage, error) {
	switch cfg.Storage.Backend {
	case "", "disk":
		return NewDisk(cfg.Storage.Root), nil
	case "s3":
		return NewS3(cfg.Storage)
	default:
		return nil, errors.New("storage: unknown backend " + cfg.Storage.Backend)
	}
}
