package facerecog

import (
	"image"

	"github.com/photovault/photovault/internal/facedetect"
)

// DefaultRecognitionThreshold is the minimum confidence for a match.
const DefaultRecognitionThreshold = 0.6

// Match is a successful recognition result.
type Match struct {
	PersonID   int64   `json:"person_id"`
	PersonName string  `json:"person_name"`
	Distance   float64 `json:"distance"`
	Confidence float64 `json:"confidence"`
}

// Recognize compares an unknown face against every stored encoding and
// returns the globally best match when its confidence reaches the
// threshold, nil otherwise. Recognition is advisory: an empty gallery or a
// failed extraction yields nil rather than an error. The scan is linear in
// the total number of stored encodings, which is bounded by a household's
// tagged people.
func (g *Gallery) Recognize(img image.Image, det facedetect.Detection, threshold float64) *Match {
	if threshold <= 0 {
		threshold = DefaultRecognitionThreshold
	}

	unknown := ExtractEncoding(img, det)
	if unknown == nil {
		return nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.people) == 0 {
		return nil
	}

	var best *Match
	for id, person := range g.people {
		for _, known := range person.Encodings {
			distance := EncodingDistance(unknown, known.Vector)
			if best == nil || distance < best.Distance {
				best = &Match{
					PersonID:   id,
					PersonName: person.Name,
					Distance:   distance,
					Confidence: max(0, 1.0-distance),
				}
			}
		}
	}

	if best == nil || best.Confidence < threshold {
		return nil
	}
	return best
}
