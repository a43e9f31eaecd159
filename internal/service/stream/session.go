package stream

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"facegreeter/internal/logger"
	"facegreeter/internal/model"
	"facegreeter/internal/service/ai"
	"facegreeter/internal/service/capture"

	"gocv.io/x/gocv"
)

// State is the position of a session in its read/gate/detect/annotate/notify/encode loop.
type State int

const (
	StateIdle State = iota
	StateReading
	StateMotionCheck
	StateDetecting
	StateAnnotating
	StateNotifying
	StateEncoding
	StateClosed
)

var stateNames = [...]string{"idle", "reading", "motion_check", "detecting", "annotating", "notifying", "encoding", "closed"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Detector resolves faces in a frame; errors are handled inside and never reach the loop.
type Detector interface {
	DetectAndIdentify(frame gocv.Mat, gallery []model.GalleryEntry) []model.Detection
}

// Gallery provides a consistent read snapshot per detection call.
type Gallery interface {
	Snapshot() []model.GalleryEntry
}

// Notifier greets changes of subject. Each session owns its own.
type Notifier interface {
	Notify(ctx context.Context, detections []model.Detection, snapshot []byte) []model.GreetingEvent
}

// Options tune frame handling.
type Options struct {
	Width    int
	Height   int
	Quality  int
	Interval time.Duration // minimum time between frame reads; zero reads as fast as the source delivers
}

// Stats counts what a session has done so far.
type Stats struct {
	FramesRead    int `json:"frames_read"`
	MotionFrames  int `json:"motion_frames"`
	FramesEmitted int `json:"frames_emitted"`
	Greetings     int `json:"greetings"`
}

// Session turns a Source into a lazy sequence of annotated JPEG frames. Only frames
// with motion and at least one detected face are emitted. A session is single use.
type Session struct {
	ID string

	source   capture.Source
	gallery  Gallery
	detector Detector
	gate     *ai.MotionGate
	notifier Notifier
	opts     Options
	logger   *logger.Logger

	mu       sync.Mutex
	state    State
	frame    gocv.Mat
	prevGray gocv.Mat
	lastRead time.Time
	stats    Stats
	onClose  func()
}

func NewSession(id string, source capture.Source, gallery Gallery, detector Detector, gate *ai.MotionGate, notifier Notifier, opts Options, logger *logger.Logger) *Session {
	return &Session{
		ID:       id,
		source:   source,
		gallery:  gallery,
		detector: detector,
		gate:     gate,
		notifier: notifier,
		opts:     opts,
		logger:   logger,
		state:    StateIdle,
		frame:    gocv.NewMat(),
		prevGray: gocv.NewMat(),
	}
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Stats returns a copy of the session counters.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// Next blocks until the next emitted frame. It returns io.EOF once the source is exhausted
// and ctx.Err() when ctx is cancelled; in both cases the session is closed.
func (s *Session) Next(ctx context.Context) ([]byte, error) {
	for {
		if s.State() == StateClosed {
			return nil, io.EOF
		}
		if err := ctx.Err(); err != nil {
			s.Close()
			return nil, err
		}

		chunk, err := s.step(ctx)
		if err != nil {
			s.Close()
			return nil, err
		}
		if chunk != nil {
			return chunk, nil
		}
	}
}

// step processes one frame. A nil chunk with a nil error means the frame was skipped.
func (s *Session) step(ctx context.Context) ([]byte, error) {
	if err := s.pace(ctx); err != nil {
		return nil, err
	}

	s.setState(StateReading)
	if err := s.source.Read(&s.frame); err != nil {
		if !errors.Is(err, io.EOF) {
			s.logger.Error("Session %s: read from %s failed: %v", s.ID, s.source.URI(), err)
		}
		return nil, io.EOF
	}
	s.lastRead = time.Now()
	s.mu.Lock()
	s.stats.FramesRead++
	s.mu.Unlock()

	frame := ai.Resize(s.frame, s.opts.Width, s.opts.Height)
	defer frame.Close()

	gray, err := ai.ToGray(frame)
	if err != nil {
		s.logger.Warning("Session %s: skipping frame: %v", s.ID, err)
		return nil, nil
	}

	s.setState(StateMotionCheck)
	motion, err := s.gate.HasMotion(s.prevGray, gray)
	s.prevGray.Close()
	s.prevGray = gray
	if err != nil {
		s.logger.Warning("Session %s: motion check failed: %v", s.ID, err)
		return nil, nil
	}
	if !motion {
		return nil, nil
	}
	s.mu.Lock()
	s.stats.MotionFrames++
	s.mu.Unlock()

	s.setState(StateDetecting)
	detections := s.detector.DetectAndIdentify(frame, s.gallery.Snapshot())
	if len(detections) == 0 {
		return nil, nil
	}

	s.setState(StateAnnotating)
	if err := ai.Annotate(&frame, detections); err != nil {
		s.logger.Warning("Session %s: annotation failed: %v", s.ID, err)
	}
	// The annotated JPEG is both the greeting snapshot and the emitted chunk.
	chunk, err := ai.EncodeJPEG(frame, s.opts.Quality)
	if err != nil {
		s.logger.Error("Session %s: %v", s.ID, err)
		return nil, nil
	}

	s.setState(StateNotifying)
	var greeted int
	if s.notifier != nil {
		greeted = len(s.notifier.Notify(ctx, detections, chunk))
	}

	s.setState(StateEncoding)
	s.mu.Lock()
	s.stats.FramesEmitted++
	s.stats.Greetings += greeted
	s.mu.Unlock()
	return chunk, nil
}

func (s *Session) pace(ctx context.Context) error {
	if s.opts.Interval <= 0 || s.lastRead.IsZero() {
		return nil
	}

	wait := time.Until(s.lastRead.Add(s.opts.Interval))
	if wait <= 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases the source and frame buffers. It is safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return nil
	}
	s.state = StateClosed
	stats := s.stats
	s.mu.Unlock()

	err := s.source.Close()
	s.frame.Close()
	s.prevGray.Close()
	if s.onClose != nil {
		s.onClose()
	}
	s.logger.Info("Session %s closed (read=%d emitted=%d)", s.ID, stats.FramesRead, stats.FramesEmitted)
	return err
}
