package greeting

import (
	"context"
	"time"

	"facegreeter/internal/logger"
	"facegreeter/internal/model"

	"github.com/google/uuid"
)

// Publisher delivers greeting events to the outside world.
type Publisher interface {
	Publish(ctx context.Context, event model.GreetingEvent) error
}

// Mode controls how many greetings one frame may trigger.
type Mode string

const (
	// ModeFirst greets at most one new subject per frame.
	ModeFirst Mode = "first"
	// ModeEach greets every change of subject within a frame, in detection order.
	ModeEach Mode = "each"
)

// ParseMode maps a config value to a Mode, defaulting to ModeFirst.
func ParseMode(s string) Mode {
	if Mode(s) == ModeEach {
		return ModeEach
	}
	return ModeFirst
}

// NotifierState is the per-session memory of who was greeted last.
type NotifierState struct {
	LastNotifiedName string
	Notifications    int
}

// Notifier greets a subject when it differs from the last one greeted in the same session.
// It is not safe for concurrent use; each streaming session owns one.
type Notifier struct {
	greeter   *Greeter
	publisher Publisher
	mode      Mode
	sessionID string
	state     NotifierState
	logger    *logger.Logger
}

func NewNotifier(greeter *Greeter, publisher Publisher, mode Mode, sessionID string, logger *logger.Logger) *Notifier {
	return &Notifier{
		greeter:   greeter,
		publisher: publisher,
		mode:      mode,
		sessionID: sessionID,
		logger:    logger,
	}
}

// State returns a copy of the current state.
func (n *Notifier) State() NotifierState {
	return n.state
}

// Notify runs the greeting pipeline for detections whose identity differs from the last
// greeted name and returns the events it published. snapshot is the annotated frame.
func (n *Notifier) Notify(ctx context.Context, detections []model.Detection, snapshot []byte) []model.GreetingEvent {
	var events []model.GreetingEvent

	for _, d := range detections {
		if d.Identity == n.state.LastNotifiedName {
			continue
		}

		events = append(events, n.notify(ctx, d.Identity, snapshot))
		n.state.LastNotifiedName = d.Identity
		n.state.Notifications++

		if n.mode == ModeFirst {
			break
		}
	}
	return events
}

func (n *Notifier) notify(ctx context.Context, name string, snapshot []byte) model.GreetingEvent {
	greeting := n.greeter.Greet(ctx, name)

	event := model.GreetingEvent{
		ID:        uuid.NewString(),
		SessionID: n.sessionID,
		Name:      name,
		Known:     greeting.Known,
		Text:      greeting.Text,
		Degraded:  greeting.Degraded,
		Timestamp: time.Now(),
		Audio:     greeting.Audio,
		Snapshot:  snapshot,
	}

	n.logger.Info("Greeting %s: %q (degraded=%t)", name, greeting.Text, greeting.Degraded)

	if n.publisher != nil {
		if err := n.publisher.Publish(ctx, event); err != nil {
			n.logger.Error("Failed to publish greeting for %s: %v", name, err)
		}
	}
	return event
}
