package capture

import (
	"fmt"
	"io"
	"sync"

	"facegreeter/internal/config"
	"facegreeter/internal/logger"
	"facegreeter/internal/model"

	"gocv.io/x/gocv"
)

// Registry remembers which camera new streaming sessions should open.
type Registry struct {
	mu       sync.RWMutex
	active   string
	fallback string
	open     Opener
	logger   *logger.Logger
}

func NewRegistry(cfg *config.Config, open Opener, logger *logger.Logger) *Registry {
	if open == nil {
		open = Open
	}
	return &Registry{
		active:   cfg.CameraSource,
		fallback: cfg.FallbackCamera,
		open:     open,
		logger:   logger,
	}
}

// Active returns the current camera URI.
func (r *Registry) Active() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

// SetActive switches the camera used by sessions started afterwards.
func (r *Registry) SetActive(uri string) {
	r.mu.Lock()
	r.active = uri
	r.mu.Unlock()
	r.logger.Info("Active camera set to %s", Redact(uri))
}

// Open opens the active camera, falling back to the configured fallback device.
func (r *Registry) Open() (Source, error) {
	return OpenWithFallback(r.open, r.Active(), r.fallback, r.logger)
}

// OpenURI opens a specific source without fallback.
func (r *Registry) OpenURI(uri string) (Source, error) {
	return r.open(uri)
}

// Probe opens uri and reads a single frame to prove the stream works.
func (r *Registry) Probe(uri string) error {
	src, err := r.open(uri)
	if err != nil {
		return err
	}
	defer src.Close()

	frame := gocv.NewMat()
	defer frame.Close()
	if err := src.Read(&frame); err != nil {
		if err == io.EOF {
			return fmt.Errorf("%w %s: no frames received", model.ErrDeviceUnavailable, Redact(uri))
		}
		return err
	}
	return nil
}
