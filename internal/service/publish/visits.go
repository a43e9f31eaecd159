package publish

import (
	"context"
	"fmt"

	"facegreeter/internal/model"
	"facegreeter/internal/repository"
	"facegreeter/internal/service/storage"
)

// VisitRecorder stores every greeting as a visit and hands its snapshot to the buffer.
type VisitRecorder struct {
	repo   repository.VisitRepository
	buffer *storage.BufferService
}

func NewVisitRecorder(repo repository.VisitRepository, buffer *storage.BufferService) *VisitRecorder {
	return &VisitRecorder{repo: repo, buffer: buffer}
}

func (r *VisitRecorder) Name() string {
	return "visits"
}

func (r *VisitRecorder) Publish(_ context.Context, event model.GreetingEvent) error {
	_, err := r.repo.Insert(&model.Visit{
		EventID:   event.ID,
		SessionID: event.SessionID,
		Name:      event.Name,
		Known:     event.Known,
		Greeting:  event.Text,
		Degraded:  event.Degraded,
		Timestamp: event.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("failed to record visit: %w", err)
	}

	if r.buffer != nil {
		r.buffer.Add(storage.Snapshot{
			EventID:   event.ID,
			Name:      event.Name,
			Timestamp: event.Timestamp,
			Data:      event.Snapshot,
		})
	}
	return nil
}
