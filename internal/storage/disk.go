package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Disk stores objects as plain files under a base directory.
type Disk struct {
	root string
}

func NewDisk(root string) *Disk {
	return &Disk{root: root}
}

func (d *Disk) fullPath(path string) string {
	return filepath.Join(d.root, filepath.FromSlash(path))
}

func (d *Disk) Load(path string) ([]byte, error) {
	data, err := os.ReadFile(d.fullPath(path))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return data, err
}

func (d *Disk) Save(path string, data []byte) error {
	full := d.fullPath(path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	// Write-then-rename so readers never observe a partially written object.
	tmp := full + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmp, full); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

func (d *Disk) Exists(path string) bool {
	_, err := os.Stat(d.fullPath(path))
	return err == nil
}

func (d *Disk) Delete(path string) error {
	err := os.Remove(d.fullPath(path))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return err
}
