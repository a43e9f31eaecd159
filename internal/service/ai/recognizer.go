package ai

import (
	"math"

	"facegreeter/internal/model"

	"gocv.io/x/gocv"
)

// Recognizer locates faces in a frame and resolves each against the gallery.
type Recognizer interface {
	// Name identifies the backend in logs.
	Name() string
	// Recognize returns one detection per face found in frame.
	Recognize(frame gocv.Mat, gallery []model.GalleryEntry) ([]model.Detection, error)
	// Reference extracts what the backend needs to recognize the most prominent face in img.
	// It returns model.ErrNoFaceDetected when img holds no face.
	Reference(img gocv.Mat) (model.FaceReference, error)
	Close() error
}

// MatchPolicy selects which gallery entry wins when several are within threshold.
type MatchPolicy string

const (
	// MatchFirst takes the first entry in gallery order that is within threshold.
	MatchFirst MatchPolicy = "first"
	// MatchNearest takes the entry with the smallest distance within threshold.
	MatchNearest MatchPolicy = "nearest"
)

// ParseMatchPolicy maps a config value to a policy, defaulting to MatchNearest.
func ParseMatchPolicy(s string) MatchPolicy {
	if MatchPolicy(s) == MatchFirst {
		return MatchFirst
	}
	return MatchNearest
}

// distanceFunc returns the distance between the current face and an entry,
// or false when the entry cannot be compared (missing reference, different size).
type distanceFunc func(entry model.GalleryEntry) (float64, bool)

// resolveIdentity walks the gallery in order and returns the winning name, or Unknown.
// A distance strictly below threshold is a match.
func resolveIdentity(gallery []model.GalleryEntry, threshold float64, policy MatchPolicy, distance distanceFunc) string {
	best := model.UnknownIdentity
	bestDistance := math.Inf(1)

	for _, entry := range gallery {
		d, ok := distance(entry)
		if !ok || d >= threshold {
			continue
		}
		if policy == MatchFirst {
			return entry.Name
		}
		if d < bestDistance {
			best, bestDistance = entry.Name, d
		}
	}
	return best
}

// EuclideanDistance returns the L2 distance of two equal-length descriptors.
func EuclideanDistance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
