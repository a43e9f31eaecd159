package model

import "image"

// UnknownIdentity labels a face that matched no gallery entry.
const UnknownIdentity = "Unknown"

// BoundingBox is a face location in pixel coordinates, ordered like the
// detect_face wire format: top, right, bottom, left.
type BoundingBox struct {
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
}

// BoxFromRect converts an image rectangle into a BoundingBox.
func BoxFromRect(r image.Rectangle) BoundingBox {
	return BoundingBox{Top: r.Min.Y, Right: r.Max.X, Bottom: r.Max.Y, Left: r.Min.X}
}

// Rect returns the box as an image.Rectangle.
func (b BoundingBox) Rect() image.Rectangle {
	return image.Rect(b.Left, b.Top, b.Right, b.Bottom)
}

// Tuple returns [top, right, bottom, left].
func (b BoundingBox) Tuple() [4]int {
	return [4]int{b.Top, b.Right, b.Bottom, b.Left}
}

// Detection is one located face and its resolved identity for a single frame.
type Detection struct {
	Box      BoundingBox `json:"box"`
	Identity string      `json:"identity"`
}

// Known reports whether the identity resolved to a gallery entry.
func (d Detection) Known() bool {
	return d.Identity != UnknownIdentity
}

// NewDetection builds a detection, mapping an empty identity to UnknownIdentity.
func NewDetection(r image.Rectangle, identity string) Detection {
	if identity == "" {
		identity = UnknownIdentity
	}
	return Detection{Box: BoxFromRect(r), Identity: identity}
}
