package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"facegreeter/internal/logger"
	"facegreeter/internal/model"
)

// Publisher delivers a greeting event to one destination.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, event model.GreetingEvent) error
}

// Message is the JSON form of a greeting event sent to brokers and browsers.
type Message struct {
	Type string `json:"type"`
	model.GreetingEvent
	HasAudio    bool `json:"has_audio"`
	HasSnapshot bool `json:"has_snapshot"`
}

// Encode marshals an event into its wire message.
func Encode(event model.GreetingEvent) ([]byte, error) {
	return json.Marshal(Message{
		Type:          "greeting",
		GreetingEvent: event,
		HasAudio:      len(event.Audio) > 0,
		HasSnapshot:   len(event.Snapshot) > 0,
	})
}

// Multi publishes to every destination in order. A failing destination is logged
// and does not prevent the others from receiving the event.
type Multi struct {
	publishers []Publisher
	logger     *logger.Logger
}

func NewMulti(logger *logger.Logger, publishers ...Publisher) *Multi {
	return &Multi{publishers: publishers, logger: logger}
}

// Add appends a destination.
func (m *Multi) Add(p Publisher) {
	m.publishers = append(m.publishers, p)
}

// Names lists the configured destinations.
func (m *Multi) Names() []string {
	names := make([]string, len(m.publishers))
	for i, p := range m.publishers {
		names[i] = p.Name()
	}
	return names
}

func (m *Multi) Publish(ctx context.Context, event model.GreetingEvent) error {
	var errs []error
	for _, p := range m.publishers {
		if err := p.Publish(ctx, event); err != nil {
			m.logger.Error("Publisher %s failed for %s: %v", p.Name(), event.Name, err)
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
		}
	}
	return errors.Join(errs...)
}
