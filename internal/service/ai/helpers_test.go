package ai

import (
	"testing"

	"facegreeter/internal/logger"

	"gocv.io/x/gocv"
)

// solidMat returns a rows x cols Mat filled with value in every channel.
func solidMat(t *testing.T, rows, cols int, value float64, mt gocv.MatType) gocv.Mat {
	t.Helper()

	m := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(value, value, value, 0), rows, cols, mt)
	t.Cleanup(func() { m.Close() })
	return m
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()

	l, err := logger.New(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}
