package ai

import (
	"fmt"

	"facegreeter/internal/model"

	"gocv.io/x/gocv"
)

// DefaultMotionThreshold is the mean absolute gray difference (0-255) above which a frame counts as motion.
const DefaultMotionThreshold = 5.0

// MotionGate decides whether two consecutive grayscale frames differ enough to run detection.
type MotionGate struct {
	threshold float64
}

// NewMotionGate creates a gate; a negative threshold falls back to DefaultMotionThreshold.
// Zero is kept: any pixel change counts as motion.
func NewMotionGate(threshold float64) *MotionGate {
	if threshold < 0 {
		threshold = DefaultMotionThreshold
	}
	return &MotionGate{threshold: threshold}
}

// Threshold returns the configured threshold.
func (g *MotionGate) Threshold() float64 {
	return g.threshold
}

// HasMotion reports whether the mean absolute difference between previous and current
// exceeds the threshold. An empty previous frame (first frame of a session) is never motion.
func (g *MotionGate) HasMotion(previous, current gocv.Mat) (bool, error) {
	if previous.Empty() {
		return false, nil
	}

	score, err := MeanAbsDiff(previous, current)
	if err != nil {
		return false, err
	}
	return score > g.threshold, nil
}

// MeanAbsDiff returns the mean absolute per-pixel difference of two equal-sized single channel frames.
func MeanAbsDiff(a, b gocv.Mat) (float64, error) {
	if err := sameShape(a, b); err != nil {
		return 0, err
	}

	diff := gocv.NewMat()
	defer diff.Close()
	if err := gocv.AbsDiff(a, b, &diff); err != nil {
		return 0, fmt.Errorf("failed to compute absolute difference: %w", err)
	}
	return diff.Mean().Val1, nil
}

// ToGray converts a BGR frame to grayscale. The caller owns the returned Mat.
func ToGray(frame gocv.Mat) (gocv.Mat, error) {
	gray := gocv.NewMat()
	if frame.Channels() == 1 {
		frame.CopyTo(&gray)
		return gray, nil
	}
	if err := gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray); err != nil {
		gray.Close()
		return gocv.NewMat(), fmt.Errorf("failed to convert image to grayscale: %w", err)
	}
	return gray, nil
}

func sameShape(a, b gocv.Mat) error {
	if a.Rows() != b.Rows() || a.Cols() != b.Cols() || a.Channels() != b.Channels() {
		return fmt.Errorf("%w: %dx%dx%d vs %dx%dx%d", model.ErrFrameSizeMismatch,
			a.Cols(), a.Rows(), a.Channels(), b.Cols(), b.Rows(), b.Channels())
	}
	return nil
}
