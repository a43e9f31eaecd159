package repository

import "facegreeter/internal/model"

// VisitRepository defines the interface for recorded greeting visits.
type VisitRepository interface {
	// Create operations
	Insert(v *model.Visit) (int64, error)

	// Update operations
	UpdateSnapshot(eventID, path string) error

	// Read operations
	GetAll(filter *model.VisitFilter) ([]model.Visit, error)
	GetStats() (*model.VisitStats, error)

	// Delete operations
	DeleteAll() error
}
