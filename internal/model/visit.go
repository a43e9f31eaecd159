package model

import "time"

// Visit represents a recorded greeting.
type Visit struct {
	ID        int64     `json:"id"`
	EventID   string    `json:"event_id"`
	SessionID string    `json:"session_id"`
	Name      string    `json:"name"`
	Known     bool      `json:"known"`
	Greeting  string    `json:"greeting"`
	Degraded  bool      `json:"degraded"`
	Snapshot  string    `json:"snapshot"`
	Timestamp time.Time `json:"timestamp"`
}

// VisitFilter contains filtering options for querying visits.
type VisitFilter struct {
	Name  string
	Since time.Time
	Limit int
}

// VisitStats contains aggregate counts over recorded visits.
type VisitStats struct {
	TotalVisits   int            `json:"total_visits"`
	UnknownVisits int            `json:"unknown_visits"`
	Degraded      int            `json:"degraded"`
	PerName       map[string]int `json:"per_name"`
}
