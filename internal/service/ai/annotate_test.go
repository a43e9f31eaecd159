package ai

import (
	"image"
	"testing"

	"facegreeter/internal/model"

	"gocv.io/x/gocv"
)

func TestLabelColor(t *testing.T) {
	if c := LabelColor(model.NewDetection(image.Rect(0, 0, 1, 1), "alice")); c != recognizedColor {
		t.Errorf("Expected green for known face, got %v", c)
	}
	if c := LabelColor(model.NewDetection(image.Rect(0, 0, 1, 1), "")); c != unknownColor {
		t.Errorf("Expected red for unknown face, got %v", c)
	}
}

func TestAnnotate_DrawsOnFrame(t *testing.T) {
	frame := solidMat(t, 100, 100, 0, gocv.MatTypeCV8UC3)

	detections := []model.Detection{model.NewDetection(image.Rect(20, 30, 60, 80), "alice")}
	if err := Annotate(&frame, detections); err != nil {
		t.Fatalf("Annotate failed: %v", err)
	}

	// green channel of the rectangle's top-left corner (BGR order)
	if got := frame.GetVecbAt(30, 20)[1]; got != 255 {
		t.Errorf("Expected green rectangle edge, got %d", got)
	}
}
