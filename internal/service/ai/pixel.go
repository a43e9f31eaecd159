package ai

import (
	"fmt"

	"facegreeter/internal/model"

	"gocv.io/x/gocv"
)

// DefaultPixelMSEThreshold is the mean squared error below which two face crops are the same person.
const DefaultPixelMSEThreshold = 1000.0

// PixelMatcher compares face crops to gallery references by mean squared pixel error.
// Crops are only comparable to references of identical dimensions.
type PixelMatcher struct {
	threshold float64
	policy    MatchPolicy
}

func NewPixelMatcher(threshold float64, policy MatchPolicy) *PixelMatcher {
	if threshold <= 0 {
		threshold = DefaultPixelMSEThreshold
	}
	return &PixelMatcher{threshold: threshold, policy: policy}
}

// Identify resolves a face crop against the gallery.
func (m *PixelMatcher) Identify(crop gocv.Mat, gallery []model.GalleryEntry) string {
	return resolveIdentity(gallery, m.threshold, m.policy, func(entry model.GalleryEntry) (float64, bool) {
		ref := entry.Reference
		if len(ref.Image) == 0 || ref.Width != crop.Cols() || ref.Height != crop.Rows() {
			return 0, false
		}

		refMat, err := gocv.IMDecode(ref.Image, gocv.IMReadColor)
		if err != nil || refMat.Empty() {
			return 0, false
		}
		defer refMat.Close()

		mse, err := MeanSquaredError(crop, refMat)
		if err != nil {
			return 0, false
		}
		return mse, true
	})
}

// Reference encodes a crop losslessly for later comparison.
func (m *PixelMatcher) Reference(crop gocv.Mat) (model.FaceReference, error) {
	data, err := encodePNG(crop)
	if err != nil {
		return model.FaceReference{}, err
	}
	return model.FaceReference{Image: data, Width: crop.Cols(), Height: crop.Rows()}, nil
}

// MeanSquaredError returns the mean of squared per-element differences of two equal-shaped Mats.
func MeanSquaredError(a, b gocv.Mat) (float64, error) {
	if err := sameShape(a, b); err != nil {
		return 0, err
	}

	diff := gocv.NewMat()
	defer diff.Close()
	if err := gocv.AbsDiff(a, b, &diff); err != nil {
		return 0, fmt.Errorf("failed to compute absolute difference: %w", err)
	}

	data := diff.ToBytes()
	if len(data) == 0 {
		return 0, nil
	}

	var sum float64
	for _, v := range data {
		sum += float64(v) * float64(v)
	}
	return sum / float64(len(data)), nil
}
