package publish

import (
	"context"
	"fmt"

	"facegreeter/internal/model"
)

// Broadcaster is implemented by the websocket hub.
type Broadcaster interface {
	Broadcast(message []byte) bool
}

// HubPublisher pushes greeting events to websocket viewers.
type HubPublisher struct {
	hub Broadcaster
}

func NewHubPublisher(hub Broadcaster) *HubPublisher {
	return &HubPublisher{hub: hub}
}

func (p *HubPublisher) Name() string {
	return "websocket"
}

func (p *HubPublisher) Publish(_ context.Context, event model.GreetingEvent) error {
	payload, err := Encode(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if !p.hub.Broadcast(payload) {
		return fmt.Errorf("websocket broadcast queue full")
	}
	return nil
}
