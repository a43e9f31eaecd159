package ai

import (
	"fmt"

	"facegreeter/internal/config"
	"facegreeter/internal/logger"
	"facegreeter/internal/model"

	"gocv.io/x/gocv"
)

// FaceService wraps a Recognizer with the logging and error policy of the streaming loop.
type FaceService struct {
	recognizer Recognizer
	logger     *logger.Logger
}

func NewFaceService(recognizer Recognizer, logger *logger.Logger) *FaceService {
	return &FaceService{recognizer: recognizer, logger: logger}
}

// NewRecognizer builds the backend selected by DETECTOR_BACKEND.
func NewRecognizer(cfg *config.Config) (Recognizer, error) {
	policy := ParseMatchPolicy(cfg.MatchPolicy)

	switch cfg.DetectorBackend {
	case "cascade", "":
		return NewCascadeRecognizer(cfg.CascadePath, NewPixelMatcher(cfg.PixelMSEThreshold, policy))
	case "dlib":
		return NewDlibRecognizer(cfg.ModelsDirectory, cfg.EmbeddingTolerance, policy)
	case "remote":
		return NewRemoteRecognizer(cfg.RemoteDetectorURL, cfg.ExternalTimeout, cfg.JPEGQuality)
	default:
		return nil, fmt.Errorf("%w: unknown detector backend %q", model.ErrValidation, cfg.DetectorBackend)
	}
}

// Backend returns the recognizer name.
func (s *FaceService) Backend() string {
	return s.recognizer.Name()
}

// DetectAndIdentify never fails: a backend error is logged and yields no detections,
// so one bad frame does not end a stream.
func (s *FaceService) DetectAndIdentify(frame gocv.Mat, gallery []model.GalleryEntry) []model.Detection {
	detections, err := s.recognizer.Recognize(frame, gallery)
	if err != nil {
		s.logger.Error("Face detection failed (%s): %v", s.recognizer.Name(), err)
		return []model.Detection{}
	}
	return detections
}

// Detect is the single-shot variant used by request handlers, which report errors to the caller.
func (s *FaceService) Detect(frame gocv.Mat, gallery []model.GalleryEntry) ([]model.Detection, error) {
	return s.recognizer.Recognize(frame, gallery)
}

// Reference implements gallery.Encoder.
func (s *FaceService) Reference(img gocv.Mat) (model.FaceReference, error) {
	return s.recognizer.Reference(img)
}

func (s *FaceService) Close() error {
	return s.recognizer.Close()
}
