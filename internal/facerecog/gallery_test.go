package facerecog

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/photovault/photovault/internal/facedetect"
	"github.com/photovault/photovault/internal/storage"
)

func testGallery(t *testing.T) *Gallery {
	t.Helper()
	store := storage.NewDisk(t.TempDir())
	return NewGallery(store, filepath.Join("faces", "gallery.bin"))
}

func TestGalleryAddAndList(t *testing.T) {
	g := testGallery(t)
	img := gradientFace(200, 200)
	det := facedetect.Detection{X: 40, Y: 40, Width: 80, Height: 80}

	if err := g.AddPersonEncoding(2, "Anna", img, det, "photos/a.jpg"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := g.AddPersonEncoding(1, "Jiří Novák", img, det, "photos/b.jpg"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := g.AddPersonEncoding(2, "Anna", img, det, "photos/c.jpg"); err != nil {
		t.Fatalf("add: %v", err)
	}

	if g.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", g.Count())
	}

	people := g.People()
	if len(people) != 2 {
		t.Fatalf("People() returned %d entries, want 2", len(people))
	}
	if people[0].ID != 1 || people[1].ID != 2 {
		t.Errorf("listing should be sorted by id, got %d, %d", people[0].ID, people[1].ID)
	}
	if people[1].EncodingCount != 2 {
		t.Errorf("Anna should have 2 encodings, got %d", people[1].EncodingCount)
	}
}

func TestGalleryPersistenceRoundTrip(t *testing.T) {
	store := storage.NewDisk(t.TempDir())
	path := "faces/gallery.bin"

	img := gradientFace(200, 200)
	det := facedetect.Detection{X: 30, Y: 30, Width: 100, Height: 100}

	g := NewGallery(store, path)
	if err := g.AddPersonEncoding(5, "Tomáš", img, det, "photos/t.jpg"); err != nil {
		t.Fatalf("add: %v", err)
	}

	// A fresh gallery over the same store sees the persisted encodings.
	reloaded := NewGallery(store, path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	people := reloaded.People()
	if len(people) != 1 || people[0].Name != "Tomáš" || people[0].EncodingCount != 1 {
		t.Fatalf("unexpected reloaded gallery: %+v", people)
	}

	want := ExtractEncoding(img, det)
	got := reloaded.people[5].Encodings[0].Vector
	if len(got) != len(want) {
		t.Fatalf("vector length changed across persistence: %d vs %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("vector changed across persistence at index %d", i)
		}
	}
}

func TestGalleryLoadMissingBlob(t *testing.T) {
	g := testGallery(t)
	if err := g.Load(); err != nil {
		t.Fatalf("loading a missing gallery should start fresh, got %v", err)
	}
	if g.Count() != 0 {
		t.Errorf("fresh gallery should be empty, got %d people", g.Count())
	}
}

func TestGalleryRemovePersonEncodings(t *testing.T) {
	g := testGallery(t)
	img := gradientFace(200, 200)
	det := facedetect.Detection{X: 40, Y: 40, Width: 80, Height: 80}

	if err := g.AddPersonEncoding(1, "Anna", img, det, "photos/a.jpg"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := g.RemovePersonEncodings(1); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if g.Count() != 0 {
		t.Errorf("person should be gone, got %d people", g.Count())
	}

	// Unknown person is a no-op.
	if err := g.RemovePersonEncodings(99); err != nil {
		t.Errorf("removing an unknown person should not fail: %v", err)
	}
}

func TestGalleryAddRejectsEmptyCrop(t *testing.T) {
	g := testGallery(t)
	img := gradientFace(50, 50)
	det := facedetect.Detection{X: 200, Y: 200, Width: 40, Height: 40}

	err := g.AddPersonEncoding(1, "Anna", img, det, "photos/a.jpg")
	if err != ErrNoEncoding {
		t.Fatalf("expected ErrNoEncoding, got %v", err)
	}
	if g.Count() != 0 {
		t.Error("failed add must not create a person entry")
	}
}

func TestFindPersonByName(t *testing.T) {
	g := testGallery(t)
	img := gradientFace(200, 200)
	det := facedetect.Detection{X: 40, Y: 40, Width: 80, Height: 80}
	if err := g.AddPersonEncoding(3, "Jiří Novák", img, det, "photos/a.jpg"); err != nil {
		t.Fatalf("add: %v", err)
	}

	tests := []struct {
		query string
		found bool
	}{
		{"Jiří Novák", true},
		{"jiri novak", true},
		{"JIRI-NOVAK", true},
		{"  jiri novak  ", true},
		{"jiri", false},
		{"anna", false},
	}
	for _, tc := range tests {
		if _, ok := g.FindPersonByName(tc.query); ok != tc.found {
			t.Errorf("FindPersonByName(%q) = %v, want %v", tc.query, ok, tc.found)
		}
	}
}

func TestNormalizePersonName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Jiří", "jiri"},
		{"Marie-Anne", "marie anne"},
		{"  Tomáš  ", "tomas"},
		{"ANNA", "anna"},
	}
	for _, tc := range tests {
		if got := NormalizePersonName(tc.in); got != tc.want {
			t.Errorf("NormalizePersonName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRecognizeEmptyGallery(t *testing.T) {
	g := testGallery(t)
	img := gradientFace(200, 200)
	det := facedetect.Detection{X: 40, Y: 40, Width: 80, Height: 80}

	if m := g.Recognize(img, det, DefaultRecognitionThreshold); m != nil {
		t.Errorf("empty gallery should not match, got %+v", m)
	}
}

func TestRecognizeSameFace(t *testing.T) {
	g := testGallery(t)
	img := gradientFace(200, 200)
	det := facedetect.Detection{X: 40, Y: 40, Width: 80, Height: 80}

	if err := g.AddPersonEncoding(1, "Anna", img, det, "photos/a.jpg"); err != nil {
		t.Fatalf("add: %v", err)
	}

	m := g.Recognize(img, det, DefaultRecognitionThreshold)
	if m == nil {
		t.Fatal("the same face should match its own encoding")
	}
	if m.PersonID != 1 || m.PersonName != "Anna" {
		t.Errorf("matched wrong person: %+v", m)
	}
	if m.Distance != 0 {
		t.Errorf("identical encodings should have distance 0, got %v", m.Distance)
	}
	if m.Confidence != 1 {
		t.Errorf("identical encodings should have confidence 1, got %v", m.Confidence)
	}
}

func TestRecognizeThreshold(t *testing.T) {
	g := testGallery(t)
	img := gradientFace(200, 200)
	det := facedetect.Detection{X: 40, Y: 40, Width: 80, Height: 80}

	probe := ExtractEncoding(img, det)
	if probe == nil {
		t.Fatal("could not build probe encoding")
	}

	// Build a stored vector at a known angle to the probe: cosine
	// similarity 0.6, so confidence lands near 0.6.
	ortho := orthogonalTo(probe)
	stored := make([]float64, len(probe))
	pn, on := vecNorm(probe), vecNorm(ortho)
	for i := range stored {
		stored[i] = 0.6*probe[i]/pn + 0.8*ortho[i]/on
	}
	g.people[1] = &Person{Name: "Anna", Encodings: []Encoding{{Vector: stored}}}

	if m := g.Recognize(img, det, 0.55); m == nil {
		t.Error("confidence ~0.6 should pass a 0.55 threshold")
	}
	if m := g.Recognize(img, det, 0.65); m != nil {
		t.Errorf("confidence ~0.6 should fail a 0.65 threshold, got %+v", m)
	}
}

func TestRecognizePicksClosest(t *testing.T) {
	g := testGallery(t)
	img := gradientFace(200, 200)
	det := facedetect.Detection{X: 40, Y: 40, Width: 80, Height: 80}

	probe := ExtractEncoding(img, det)
	if probe == nil {
		t.Fatal("could not build probe encoding")
	}
	far := orthogonalTo(probe)

	g.people[1] = &Person{Name: "Stranger", Encodings: []Encoding{{Vector: far}}}
	g.people[2] = &Person{Name: "Anna", Encodings: []Encoding{{Vector: append([]float64(nil), probe...)}}}

	m := g.Recognize(img, det, DefaultRecognitionThreshold)
	if m == nil {
		t.Fatal("expected a match")
	}
	if m.PersonID != 2 || m.PersonName != "Anna" {
		t.Errorf("should match the closest person, got %+v", m)
	}
}

// orthogonalTo builds a nonzero vector orthogonal to v (up to rounding).
func orthogonalTo(v []float64) []float64 {
	var normSq float64
	for _, x := range v {
		normSq += x * x
	}
	w := make([]float64, len(v))
	for i := range w {
		w[i] = -v[0] * v[i]
	}
	w[0] += normSq
	return w
}

func vecNorm(v []float64) float64 {
	var s float64
	for _, x := range v {
		s += x * x
	}
	return math.Sqrt(s)
}
