package stream

import (
	"context"
	"errors"
	"image"
	"io"
	"testing"
	"time"

	"facegreeter/internal/logger"
	"facegreeter/internal/model"
	"facegreeter/internal/service/ai"

	"gocv.io/x/gocv"
)

// grayFrames yields solid BGR frames with the given intensities, then io.EOF.
type grayFrames struct {
	values []float64
	closed bool
}

func (s *grayFrames) Read(dst *gocv.Mat) error {
	if len(s.values) == 0 {
		return io.EOF
	}
	v := s.values[0]
	s.values = s.values[1:]

	m := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(v, v, v, 0), 24, 32, gocv.MatTypeCV8UC3)
	defer m.Close()
	m.CopyTo(dst)
	return nil
}

func (s *grayFrames) URI() string  { return "test" }
func (s *grayFrames) Close() error { s.closed = true; return nil }

// scriptedDetector returns the detections scripted for each call, in order.
type scriptedDetector struct {
	script [][]model.Detection
	calls  int
}

func (d *scriptedDetector) DetectAndIdentify(gocv.Mat, []model.GalleryEntry) []model.Detection {
	d.calls++
	if d.calls > len(d.script) {
		return nil
	}
	return d.script[d.calls-1]
}

type emptyGallery struct{}

func (emptyGallery) Snapshot() []model.GalleryEntry { return nil }

type countingNotifier struct {
	calls     int
	snapshots int
}

func (n *countingNotifier) Notify(_ context.Context, detections []model.Detection, snapshot []byte) []model.GreetingEvent {
	n.calls++
	if len(snapshot) > 0 {
		n.snapshots++
	}
	return []model.GreetingEvent{{Name: detections[0].Identity}}
}

func face(name string) []model.Detection {
	return []model.Detection{model.NewDetection(image.Rect(2, 2, 12, 12), name)}
}

func newTestSession(t *testing.T, src *grayFrames, det Detector, n Notifier, opts Options) *Session {
	t.Helper()

	l, err := logger.New(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	t.Cleanup(func() { l.Close() })

	return NewSession("test-session", src, emptyGallery{}, det, ai.NewMotionGate(5), n, opts, l)
}

func drain(t *testing.T, s *Session) [][]byte {
	t.Helper()

	var chunks [][]byte
	for {
		chunk, err := s.Next(context.Background())
		if errors.Is(err, io.EOF) {
			return chunks
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		chunks = append(chunks, chunk)
	}
}

func TestSession_NoMotionEmitsNothing(t *testing.T) {
	src := &grayFrames{values: []float64{100, 100, 102, 100, 105}}
	det := &scriptedDetector{script: [][]model.Detection{face("alice")}}
	s := newTestSession(t, src, det, nil, Options{Quality: 80})

	if chunks := drain(t, s); len(chunks) != 0 {
		t.Errorf("Expected no chunks, got %d", len(chunks))
	}
	if det.calls != 0 {
		t.Errorf("Expected detector never called, got %d calls", det.calls)
	}
	if !src.closed || s.State() != StateClosed {
		t.Error("Expected session and source closed at end of stream")
	}
	if s.Stats().FramesRead != 5 {
		t.Errorf("Expected 5 frames read, got %d", s.Stats().FramesRead)
	}
}

func TestSession_OneChunkPerFrameWithDetections(t *testing.T) {
	// motion on frames 2, 3 and 5; faces only on the first and third motion frame
	src := &grayFrames{values: []float64{0, 50, 100, 100, 150}}
	det := &scriptedDetector{script: [][]model.Detection{face("alice"), nil, face("bob")}}
	n := &countingNotifier{}
	s := newTestSession(t, src, det, n, Options{Width: 64, Height: 48, Quality: 80})

	chunks := drain(t, s)

	if len(chunks) != 2 {
		t.Fatalf("Expected 2 chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) < 2 || chunk[0] != 0xFF || chunk[1] != 0xD8 {
			t.Errorf("Chunk %d is not a JPEG", i)
		}
	}
	if det.calls != 3 {
		t.Errorf("Expected 3 detector calls, got %d", det.calls)
	}
	if n.calls != 2 || n.snapshots != 2 {
		t.Errorf("Expected notifier called with snapshots twice, got %d/%d", n.calls, n.snapshots)
	}

	stats := s.Stats()
	if stats.MotionFrames != 3 || stats.FramesEmitted != 2 || stats.Greetings != 2 {
		t.Errorf("Unexpected stats %+v", stats)
	}

	img, err := ai.DecodeImage(chunks[0])
	if err != nil {
		t.Fatalf("DecodeImage failed: %v", err)
	}
	defer img.Close()
	if img.Cols() != 64 || img.Rows() != 48 {
		t.Errorf("Expected frames resized to 64x48, got %dx%d", img.Cols(), img.Rows())
	}
}

func TestSession_NextAfterCloseIsEOF(t *testing.T) {
	src := &grayFrames{values: []float64{0, 100}}
	s := newTestSession(t, src, &scriptedDetector{}, nil, Options{})

	s.Close()
	if _, err := s.Next(context.Background()); !errors.Is(err, io.EOF) {
		t.Errorf("Expected io.EOF, got %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Second Close failed: %v", err)
	}
}

func TestSession_CancelledContextCloses(t *testing.T) {
	src := &grayFrames{values: []float64{0, 100, 0, 100}}
	s := newTestSession(t, src, &scriptedDetector{}, nil, Options{Interval: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	if _, err := s.Next(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if !src.closed {
		t.Error("Expected source closed after cancel")
	}
}

func TestState_String(t *testing.T) {
	if StateMotionCheck.String() != "motion_check" || StateClosed.String() != "closed" {
		t.Error("Unexpected state names")
	}
}
