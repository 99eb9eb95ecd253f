package facerecog

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sort"
	"sync"

	"github.com/photovault/photovault/internal/facedetect"
	"github.com/photovault/photovault/internal/storage"
)

// ErrNoEncoding is returned when a face region yields no usable encoding.
var ErrNoEncoding = errors.New("facerecog: could not extract face encoding")

// Encoding is one stored reference vector with its provenance.
type Encoding struct {
	Vector     []float64
	SourcePath string
	Box        facedetect.Detection
}

// Person groups the reference encodings for one tagged person.
type Person struct {
	Name      string
	Encodings []Encoding
}

// PersonInfo is a summary row for listings.
type PersonInfo struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	EncodingCount int    `json:"encoding_count"`
}

// Gallery owns the per-person face encodings. It keeps the full set in
// memory and persists the whole blob through Storage after every mutation.
// Encodings are append-only: they are added or removed wholesale per
// person, never edited. A single mutex serializes load-mutate-persist
// sequences so concurrent writers cannot lose an appended encoding.
type Gallery struct {
	mu     sync.Mutex
	people map[int64]*Person
	store  storage.Storage
	path   string
	logger *slog.Logger
}

// NewGallery creates an empty gallery persisted at path in the given store.
// Call Load before first use to pick up existing encodings.
func NewGallery(store storage.Storage, path string) *Gallery {
	return &Gallery{
		people: make(map[int64]*Person),
		store:  store,
		path:   path,
		logger: slog.Default(),
	}
}

// Load reads the persisted gallery blob. A missing blob is not an error:
// the gallery starts fresh.
func (g *Gallery) Load() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	data, err := g.store.Load(g.path)
	if errors.Is(err, storage.ErrNotFound) {
		g.people = make(map[int64]*Person)
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading gallery: %w", err)
	}

	var people map[int64]*Person
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&people); err != nil {
		return fmt.Errorf("decoding gallery: %w", err)
	}
	g.people = people
	return nil
}

// persistLocked writes the whole gallery. Callers must hold g.mu.
func (g *Gallery) persistLocked() error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(g.people); err != nil {
		return fmt.Errorf("encoding gallery: %w", err)
	}
	if err := g.store.Save(g.path, buf.Bytes()); err != nil {
		return fmt.Errorf("persisting gallery: %w", err)
	}
	return nil
}

// AddPersonEncoding extracts an encoding for the detected face and appends
// it to the person's gallery entry, creating the entry if needed. The
// gallery is persisted synchronously before returning.
func (g *Gallery) AddPersonEncoding(personID int64, personName string, img image.Image, det facedetect.Detection, sourcePath string) error {
	vector := ExtractEncoding(img, det)
	if vector == nil {
		return ErrNoEncoding
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	person, ok := g.people[personID]
	if !ok {
		person = &Person{Name: personName}
		g.people[personID] = person
	}
	person.Encodings = append(person.Encodings, Encoding{
		Vector:     vector,
		SourcePath: sourcePath,
		Box:        det,
	})

	if err := g.persistLocked(); err != nil {
		return err
	}
	g.logger.Info("added face encoding", "person", personName, "id", personID)
	return nil
}

// RemovePersonEncodings deletes every encoding for a person and persists.
// Removing an unknown person is a no-op.
func (g *Gallery) RemovePersonEncodings(personID int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.people[personID]; !ok {
		return nil
	}
	delete(g.people, personID)
	return g.persistLocked()
}

// People lists everyone with stored encodings, sorted by id.
func (g *Gallery) People() []PersonInfo {
	g.mu.Lock()
	defer g.mu.Unlock()

	infos := make([]PersonInfo, 0, len(g.people))
	for id, p := range g.people {
		infos = append(infos, PersonInfo{ID: id, Name: p.Name, EncodingCount: len(p.Encodings)})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// Count returns the number of people with stored encodings.
func (g *Gallery) Count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.people)
}

// FindPersonByName returns the id of the person whose name matches after
// normalization (case and diacritics insensitive), or false.
func (g *Gallery) FindPersonByName(name string) (int64, bool) {
	want := NormalizePersonName(name)

	g.mu.Lock()
	defer g.mu.Unlock()
	for id, p := range g.people {
		if NormalizePersonName(p.Name) == want {
			return id, true
		}
	}
	return 0, false
}
