package ai

import (
	"testing"

	"facegreeter/internal/model"

	"gocv.io/x/gocv"
)

func enrollCrop(t *testing.T, m *PixelMatcher, name string, crop gocv.Mat) model.GalleryEntry {
	t.Helper()

	ref, err := m.Reference(crop)
	if err != nil {
		t.Fatalf("Reference failed: %v", err)
	}
	return model.GalleryEntry{Name: name, Reference: ref}
}

func TestMeanSquaredError(t *testing.T) {
	a := solidMat(t, 4, 4, 10, gocv.MatTypeCV8UC3)
	b := solidMat(t, 4, 4, 40, gocv.MatTypeCV8UC3)

	got, err := MeanSquaredError(a, b)
	if err != nil {
		t.Fatalf("MeanSquaredError failed: %v", err)
	}
	if got != 900 {
		t.Errorf("Expected 900, got %v", got)
	}
}

func TestPixelMatcher_Identify(t *testing.T) {
	m := NewPixelMatcher(1000, MatchNearest)
	gallery := []model.GalleryEntry{
		enrollCrop(t, m, "alice", solidMat(t, 20, 20, 100, gocv.MatTypeCV8UC3)),
		enrollCrop(t, m, "bob", solidMat(t, 20, 20, 200, gocv.MatTypeCV8UC3)),
	}

	tests := []struct {
		name     string
		crop     gocv.Mat
		expected string
	}{
		{"close to alice", solidMat(t, 20, 20, 110, gocv.MatTypeCV8UC3), "alice"},
		{"close to bob", solidMat(t, 20, 20, 190, gocv.MatTypeCV8UC3), "bob"},
		{"too far from both", solidMat(t, 20, 20, 0, gocv.MatTypeCV8UC3), model.UnknownIdentity},
		{"different size never matches", solidMat(t, 24, 20, 100, gocv.MatTypeCV8UC3), model.UnknownIdentity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Identify(tt.crop, gallery); got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestPixelMatcher_FirstPolicy(t *testing.T) {
	m := NewPixelMatcher(1000, MatchFirst)
	gallery := []model.GalleryEntry{
		enrollCrop(t, m, "alice", solidMat(t, 10, 10, 100, gocv.MatTypeCV8UC3)),
		enrollCrop(t, m, "bob", solidMat(t, 10, 10, 120, gocv.MatTypeCV8UC3)),
	}

	// 118 is nearer to bob but alice is also within threshold and comes first
	if got := m.Identify(solidMat(t, 10, 10, 118, gocv.MatTypeCV8UC3), gallery); got != "alice" {
		t.Errorf("Expected alice, got %s", got)
	}
}
