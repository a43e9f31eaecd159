package ai

import (
	"errors"
	"testing"

	"facegreeter/internal/model"

	"gocv.io/x/gocv"
)

func TestMotionGate_Threshold(t *testing.T) {
	gate := NewMotionGate(5)
	previous := solidMat(t, 8, 8, 100, gocv.MatTypeCV8UC1)

	tests := []struct {
		name     string
		value    float64
		expected bool
	}{
		{"identical", 100, false},
		{"equal to threshold", 105, false},
		{"just above threshold", 106, true},
		{"darker", 80, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current := solidMat(t, 8, 8, tt.value, gocv.MatTypeCV8UC1)
			got, err := gate.HasMotion(previous, current)
			if err != nil {
				t.Fatalf("HasMotion failed: %v", err)
			}
			if got != tt.expected {
				t.Errorf("HasMotion(100, %v) = %v, expected %v", tt.value, got, tt.expected)
			}
		})
	}
}

func TestMotionGate_FirstFrame(t *testing.T) {
	gate := NewMotionGate(5)
	empty := gocv.NewMat()
	defer empty.Close()

	got, err := gate.HasMotion(empty, solidMat(t, 8, 8, 255, gocv.MatTypeCV8UC1))
	if err != nil {
		t.Fatalf("HasMotion failed: %v", err)
	}
	if got {
		t.Error("Expected no motion without a previous frame")
	}
}

func TestMotionGate_SizeMismatch(t *testing.T) {
	gate := NewMotionGate(5)

	_, err := gate.HasMotion(solidMat(t, 8, 8, 0, gocv.MatTypeCV8UC1), solidMat(t, 4, 8, 0, gocv.MatTypeCV8UC1))
	if !errors.Is(err, model.ErrFrameSizeMismatch) {
		t.Errorf("Expected ErrFrameSizeMismatch, got %v", err)
	}
}

func TestNewMotionGate_DefaultThreshold(t *testing.T) {
	tests := []struct {
		threshold float64
		expected  float64
	}{
		{-1, DefaultMotionThreshold},
		{0, 0},
		{7.5, 7.5},
	}

	for _, tt := range tests {
		if got := NewMotionGate(tt.threshold).Threshold(); got != tt.expected {
			t.Errorf("NewMotionGate(%v).Threshold() = %v, expected %v", tt.threshold, got, tt.expected)
		}
	}
}

func TestMotionGate_ZeroThreshold(t *testing.T) {
	gate := NewMotionGate(0)
	previous := solidMat(t, 8, 8, 100, gocv.MatTypeCV8UC1)

	tests := []struct {
		value    float64
		expected bool
	}{
		{100, false},
		{101, true},
	}

	for _, tt := range tests {
		got, err := gate.HasMotion(previous, solidMat(t, 8, 8, tt.value, gocv.MatTypeCV8UC1))
		if err != nil {
			t.Fatalf("HasMotion failed: %v", err)
		}
		if got != tt.expected {
			t.Errorf("HasMotion(100, %v) = %v, expected %v", tt.value, got, tt.expected)
		}
	}
}

func TestToGray(t *testing.T) {
	color := solidMat(t, 4, 4, 50, gocv.MatTypeCV8UC3)
	gray, err := ToGray(color)
	if err != nil {
		t.Fatalf("ToGray failed: %v", err)
	}
	defer gray.Close()

	if gray.Channels() != 1 {
		t.Errorf("Expected 1 channel, got %d", gray.Channels())
	}
	if gray.Rows() != 4 || gray.Cols() != 4 {
		t.Errorf("Expected 4x4, got %dx%d", gray.Cols(), gray.Rows())
	}
}
