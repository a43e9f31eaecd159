package publish

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"facegreeter/internal/model"
)

// AudioFilePublisher keeps the most recent greeting audio at a fixed path.
type AudioFilePublisher struct {
	path string
	mu   sync.RWMutex
}

func NewAudioFilePublisher(path string) *AudioFilePublisher {
	return &AudioFilePublisher{path: path}
}

func (p *AudioFilePublisher) Name() string {
	return "audiofile"
}

// Path returns where the latest audio is written.
func (p *AudioFilePublisher) Path() string {
	return p.path
}

func (p *AudioFilePublisher) Publish(_ context.Context, event model.GreetingEvent) error {
	if len(event.Audio) == 0 {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create audio directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".audio-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(event.Audio); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write audio: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write audio: %w", err)
	}
	return os.Rename(tmp.Name(), p.path)
}

// Read returns the latest audio, or os.ErrNotExist when none has been written.
func (p *AudioFilePublisher) Read() ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return os.ReadFile(p.path)
}
