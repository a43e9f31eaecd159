package capture

import (
	"fmt"
	"io"
	"net/url"
	"strconv"
	"sync"

	"facegreeter/internal/logger"
	"facegreeter/internal/model"

	"gocv.io/x/gocv"
)

// Source yields frames from a camera or stream. A Source is owned by exactly one streaming session.
type Source interface {
	// Read fills dst with the next frame. It returns io.EOF when the stream ends or fails.
	Read(dst *gocv.Mat) error
	// URI identifies the source in logs with credentials removed.
	URI() string
	Close() error
}

// Opener opens a Source for a device index or stream URL.
type Opener func(uri string) (Source, error)

// VideoSource reads frames through an OpenCV VideoCapture.
type VideoSource struct {
	uri     string
	capture *gocv.VideoCapture
	mu      sync.Mutex
	closed  bool
}

// Open opens a local device ("0", "1", ...) or a stream URL (rtsp://, http://, file path).
func Open(uri string) (Source, error) {
	var device interface{} = uri
	if index, err := strconv.Atoi(uri); err == nil {
		device = index
	}

	capture, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", model.ErrDeviceUnavailable, Redact(uri), err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("%w %s", model.ErrDeviceUnavailable, Redact(uri))
	}

	return &VideoSource{uri: uri, capture: capture}, nil
}

func (s *VideoSource) Read(dst *gocv.Mat) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return io.EOF
	}
	if ok := s.capture.Read(dst); !ok || dst.Empty() {
		return io.EOF
	}
	return nil
}

func (s *VideoSource) URI() string {
	return Redact(s.uri)
}

func (s *VideoSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.capture.Close()
}

// OpenWithFallback tries primary and then fallback, mirroring a network camera
// that degrades to the local webcam. An empty fallback disables the second attempt.
func OpenWithFallback(open Opener, primary, fallback string, logger *logger.Logger) (Source, error) {
	src, err := open(primary)
	if err == nil {
		return src, nil
	}
	if fallback == "" || fallback == primary {
		return nil, err
	}

	logger.Warning("Cannot open %s (%v), falling back to %s", Redact(primary), err, Redact(fallback))
	src, fallbackErr := open(fallback)
	if fallbackErr != nil {
		return nil, fmt.Errorf("%w (fallback: %v)", err, fallbackErr)
	}
	return src, nil
}

// Redact hides the password of a stream URL. Device indexes and paths pass through.
func Redact(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.User == nil {
		return uri
	}
	return u.Redacted()
}
