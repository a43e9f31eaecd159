package stream

import (
	"sync/atomic"

	"facegreeter/internal/config"
	"facegreeter/internal/logger"
	"facegreeter/internal/service/ai"
	"facegreeter/internal/service/capture"
	"facegreeter/internal/service/greeting"

	"github.com/google/uuid"
)

// Factory builds one Session per /video_feed request, each with its own camera handle
// and notifier state.
type Factory struct {
	registry  *capture.Registry
	gallery   Gallery
	detector  Detector
	greeter   *greeting.Greeter
	publisher greeting.Publisher
	cfg       *config.Config
	logger    *logger.Logger
	active    atomic.Int32
}

func NewFactory(registry *capture.Registry, gallery Gallery, detector Detector, greeter *greeting.Greeter,
	publisher greeting.Publisher, cfg *config.Config, logger *logger.Logger) *Factory {
	return &Factory{
		registry:  registry,
		gallery:   gallery,
		detector:  detector,
		greeter:   greeter,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger,
	}
}

// NewSession opens the active camera. A camera that cannot be opened is fatal to the session.
func (f *Factory) NewSession() (*Session, error) {
	source, err := f.registry.Open()
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	notifier := greeting.NewNotifier(f.greeter, f.publisher, greeting.ParseMode(f.cfg.GreetMode), id, f.logger)
	opts := Options{
		Width:    f.cfg.FrameWidth,
		Height:   f.cfg.FrameHeight,
		Quality:  f.cfg.JPEGQuality,
		Interval: f.cfg.FrameInterval,
	}

	session := NewSession(id, source, f.gallery, f.detector, ai.NewMotionGate(f.cfg.MotionThreshold), notifier, opts, f.logger)
	session.onClose = func() { f.active.Add(-1) }
	f.active.Add(1)

	f.logger.Info("Session %s started on %s", id, source.URI())
	return session, nil
}

// Active returns the number of open sessions.
func (f *Factory) Active() int {
	return int(f.active.Load())
}
