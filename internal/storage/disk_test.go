package storage

import (
	"errors"
	"testing"
)

func TestDiskSaveLoadRoundTrip(t *testing.T) {
	d := NewDisk(t.TempDir())
	data := []byte("jpeg bytes")

	if err := d.Save("users/7/photo.jpg", data); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := d.Load("users/7/photo.jpg")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("loaded %q, want %q", got, data)
	}
}

func TestDiskExists(t *testing.T) {
	d := NewDisk(t.TempDir())

	if d.Exists("missing.jpg") {
		t.Error("Exists should be false for a missing object")
	}

	if err := d.Save("present.jpg", []byte("x")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !d.Exists("present.jpg") {
		t.Error("Exists should be true after Save")
	}
}

func TestDiskLoadMissing(t *testing.T) {
	d := NewDisk(t.TempDir())

	_, err := d.Load("nope.jpg")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDiskDelete(t *testing.T) {
	d := NewDisk(t.TempDir())

	if err := d.Save("gone.jpg", []byte("x")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := d.Delete("gone.jpg"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if d.Exists("gone.jpg") {
		t.Error("object should not exist after Delete")
	}

	if err := d.Delete("gone.jpg"); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleting a missing object should return ErrNotFound, got %v", err)
	}
}

func TestDiskSaveOverwrites(t *testing.T) {
	d := NewDisk(t.TempDir())

	if err := d.Save("a.jpg", []byte("old")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := d.Save("a.jpg", []byte("new")); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	got, err := d.Load("a.jpg")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if string(got) != "new" {
		t.Errorf("expected overwrite, got %q", got)
	}
}
