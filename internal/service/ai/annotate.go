package ai

import (
	"fmt"
	"image"
	"image/color"

	"facegreeter/internal/model"

	"gocv.io/x/gocv"
)

var (
	recognizedColor = color.RGBA{R: 0, G: 255, B: 0, A: 0}
	unknownColor    = color.RGBA{R: 255, G: 0, B: 0, A: 0}
)

// LabelColor returns green for a recognized identity and red for Unknown.
func LabelColor(d model.Detection) color.RGBA {
	if d.Known() {
		return recognizedColor
	}
	return unknownColor
}

// Annotate draws a rectangle and a name label above it for every detection.
func Annotate(frame *gocv.Mat, detections []model.Detection) error {
	for _, d := range detections {
		c := LabelColor(d)

		if err := gocv.Rectangle(frame, d.Box.Rect(), c, 1); err != nil {
			return fmt.Errorf("failed to draw rectangle: %w", err)
		}

		pt := image.Pt(d.Box.Left, d.Box.Top-10)
		if err := gocv.PutText(frame, d.Identity, pt, gocv.FontHersheyDuplex, 1, c, 1); err != nil {
			return fmt.Errorf("failed to draw text: %w", err)
		}
	}
	return nil
}
