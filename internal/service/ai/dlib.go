package ai

import (
	"fmt"
	"sync"

	"facegreeter/internal/model"

	face "github.com/Kagami/go-face"
	"gocv.io/x/gocv"
)

// DefaultEmbeddingTolerance is the descriptor distance below which two faces match.
const DefaultEmbeddingTolerance = 0.6

// DlibRecognizer detects faces and computes 128-d descriptors with dlib models.
type DlibRecognizer struct {
	rec       *face.Recognizer
	tolerance float64
	policy    MatchPolicy
	mu        sync.Mutex
}

// NewDlibRecognizer loads the dlib model files from modelsDir.
func NewDlibRecognizer(modelsDir string, tolerance float64, policy MatchPolicy) (*DlibRecognizer, error) {
	rec, err := face.NewRecognizer(modelsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load dlib models from %s: %w", modelsDir, err)
	}
	if tolerance <= 0 {
		tolerance = DefaultEmbeddingTolerance
	}
	return &DlibRecognizer{rec: rec, tolerance: tolerance, policy: policy}, nil
}

func (r *DlibRecognizer) Name() string {
	return "dlib"
}

func (r *DlibRecognizer) faces(frame gocv.Mat) ([]face.Face, error) {
	data, err := EncodeJPEG(frame, 95)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	faces, err := r.rec.Recognize(data)
	if err != nil {
		return nil, fmt.Errorf("dlib recognition failed: %w", err)
	}
	return faces, nil
}

func (r *DlibRecognizer) Recognize(frame gocv.Mat, gallery []model.GalleryEntry) ([]model.Detection, error) {
	faces, err := r.faces(frame)
	if err != nil {
		return nil, err
	}

	detections := make([]model.Detection, 0, len(faces))
	for _, f := range faces {
		name := MatchDescriptor(f.Descriptor[:], gallery, r.tolerance, r.policy)
		detections = append(detections, model.NewDetection(f.Rectangle, name))
	}
	return detections, nil
}

// Reference returns the descriptor of the largest face in img.
func (r *DlibRecognizer) Reference(img gocv.Mat) (model.FaceReference, error) {
	faces, err := r.faces(img)
	if err != nil {
		return model.FaceReference{}, err
	}
	if len(faces) == 0 {
		return model.FaceReference{}, model.ErrNoFaceDetected
	}

	best := faces[0]
	for _, f := range faces[1:] {
		if f.Rectangle.Dx()*f.Rectangle.Dy() > best.Rectangle.Dx()*best.Rectangle.Dy() {
			best = f
		}
	}

	descriptor := make([]float32, len(best.Descriptor))
	copy(descriptor, best.Descriptor[:])
	return model.FaceReference{
		Width:      best.Rectangle.Dx(),
		Height:     best.Rectangle.Dy(),
		Descriptor: descriptor,
	}, nil
}

func (r *DlibRecognizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rec.Close()
	return nil
}

// MatchDescriptor resolves a descriptor against gallery descriptors of the same length.
func MatchDescriptor(descriptor []float32, gallery []model.GalleryEntry, tolerance float64, policy MatchPolicy) string {
	return resolveIdentity(gallery, tolerance, policy, func(entry model.GalleryEntry) (float64, bool) {
		ref := entry.Reference.Descriptor
		if len(ref) == 0 || len(ref) != len(descriptor) {
			return 0, false
		}
		return EuclideanDistance(descriptor, ref), true
	})
}
