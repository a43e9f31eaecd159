package model

import "time"

// FaceReference is what a recognizer keeps to compare future faces against.
// Pixel matchers use Image (JPEG crop) and its dimensions, embedding matchers use Descriptor.
type FaceReference struct {
	Image      []byte
	Width      int
	Height     int
	Descriptor []float32
}

// GalleryEntry is one enrolled identity.
type GalleryEntry struct {
	Name       string        `json:"name"`
	Path       string        `json:"path"`
	Reference  FaceReference `json:"-"`
	EnrolledAt time.Time     `json:"enrolled_at"`
}
