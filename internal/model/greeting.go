package model

import "time"

// GreetingEvent is published whenever the notifier greets a new subject.
type GreetingEvent struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Name      string    `json:"name"`
	Known     bool      `json:"known"`
	Text      string    `json:"text"`
	Degraded  bool      `json:"degraded"`
	Timestamp time.Time `json:"timestamp"`

	Audio    []byte `json:"-"`
	Snapshot []byte `json:"-"`
}
