package ai

import (
	"fmt"
	"image"
	"os"
	"sync"

	"facegreeter/internal/model"

	"gocv.io/x/gocv"
)

// CascadeRecognizer finds faces with a Haar cascade and identifies them with a PixelMatcher.
type CascadeRecognizer struct {
	classifier gocv.CascadeClassifier
	matcher    *PixelMatcher
	mu         sync.Mutex // CascadeClassifier is not safe for concurrent use
}

// NewCascadeRecognizer loads the cascade XML at path.
func NewCascadeRecognizer(path string, matcher *PixelMatcher) (*CascadeRecognizer, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("cascade file not found: %w", err)
	}

	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(path) {
		classifier.Close()
		return nil, fmt.Errorf("failed to load cascade file: %s", path)
	}

	return &CascadeRecognizer{classifier: classifier, matcher: matcher}, nil
}

func (r *CascadeRecognizer) Name() string {
	return "cascade"
}

func (r *CascadeRecognizer) detect(frame gocv.Mat) []image.Rectangle {
	r.mu.Lock()
	rects := r.classifier.DetectMultiScale(frame)
	r.mu.Unlock()

	faces := make([]image.Rectangle, 0, len(rects))
	for _, rect := range rects {
		if c := clip(rect, frame); !c.Empty() {
			faces = append(faces, c)
		}
	}
	return faces
}

func (r *CascadeRecognizer) Recognize(frame gocv.Mat, gallery []model.GalleryEntry) ([]model.Detection, error) {
	if frame.Empty() {
		return nil, fmt.Errorf("%w: empty frame", model.ErrDecode)
	}

	rects := r.detect(frame)
	detections := make([]model.Detection, 0, len(rects))
	for _, rect := range rects {
		crop := frame.Region(rect)
		name := r.matcher.Identify(crop, gallery)
		crop.Close()

		detections = append(detections, model.NewDetection(rect, name))
	}
	return detections, nil
}

// Reference crops the largest face in img.
func (r *CascadeRecognizer) Reference(img gocv.Mat) (model.FaceReference, error) {
	rects := r.detect(img)
	if len(rects) == 0 {
		return model.FaceReference{}, model.ErrNoFaceDetected
	}

	crop := img.Region(largest(rects))
	defer crop.Close()
	return r.matcher.Reference(crop)
}

func (r *CascadeRecognizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.classifier.Close()
}
