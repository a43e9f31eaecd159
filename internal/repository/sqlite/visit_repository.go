package sqlite

import (
	"fmt"

	"facegreeter/internal/model"
)

// VisitRepository implements repository.VisitRepository for SQLite.
type VisitRepository struct {
	db *DB
}

// NewVisitRepository creates a new SQLite visit repository.
func NewVisitRepository(db *DB) *VisitRepository {
	return &VisitRepository{db: db}
}

// Insert adds a new visit record to the database.
func (r *VisitRepository) Insert(v *model.Visit) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	result, err := r.db.Conn().Exec(`
		INSERT INTO visits (event_id, session_id, name, known, greeting, degraded, snapshot, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, v.EventID, v.SessionID, v.Name, v.Known, v.Greeting, v.Degraded, v.Snapshot, v.Timestamp.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to insert visit: %w", err)
	}

	return result.LastInsertId()
}

// UpdateSnapshot records where the snapshot of a visit was written.
func (r *VisitRepository) UpdateSnapshot(eventID, path string) error {
	r.db.Lock()
	defer r.db.Unlock()

	if _, err := r.db.Conn().Exec(`UPDATE visits SET snapshot = ? WHERE event_id = ?`, path, eventID); err != nil {
		return fmt.Errorf("failed to update snapshot: %w", err)
	}
	return nil
}

// GetAll retrieves visits matching the filter, newest first.
func (r *VisitRepository) GetAll(filter *model.VisitFilter) ([]model.Visit, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	query := `
		SELECT id, event_id, session_id, name, known, greeting, degraded, snapshot, timestamp
		FROM visits
		WHERE 1=1
	`
	args := []interface{}{}

	if filter != nil && filter.Name != "" {
		query += " AND name = ?"
		args = append(args, filter.Name)
	}
	if filter != nil && !filter.Since.IsZero() {
		query += " AND timestamp >= ?"
		args = append(args, filter.Since.UTC())
	}

	query += " ORDER BY timestamp DESC, id DESC"

	if filter != nil && filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := r.db.Conn().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query visits: %w", err)
	}
	defer rows.Close()

	visits := []model.Visit{}
	for rows.Next() {
		var v model.Visit
		if err := rows.Scan(&v.ID, &v.EventID, &v.SessionID, &v.Name, &v.Known, &v.Greeting, &v.Degraded, &v.Snapshot, &v.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan visit: %w", err)
		}
		visits = append(visits, v)
	}

	return visits, rows.Err()
}

// GetStats returns aggregate visit counts.
func (r *VisitRepository) GetStats() (*model.VisitStats, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	stats := &model.VisitStats{PerName: make(map[string]int)}

	err := r.db.Conn().QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN known = 0 THEN 1 ELSE 0 END), 0), COALESCE(SUM(degraded), 0)
		FROM visits
	`).Scan(&stats.TotalVisits, &stats.UnknownVisits, &stats.Degraded)
	if err != nil {
		return nil, fmt.Errorf("failed to count visits: %w", err)
	}

	rows, err := r.db.Conn().Query(`SELECT name, COUNT(*) FROM visits GROUP BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query visits per name: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var count int
		if err := rows.Scan(&name, &count); err != nil {
			return nil, fmt.Errorf("failed to scan visit count: %w", err)
		}
		stats.PerName[name] = count
	}

	return stats, rows.Err()
}

// DeleteAll removes all visit records.
func (r *VisitRepository) DeleteAll() error {
	r.db.Lock()
	defer r.db.Unlock()

	if _, err := r.db.Conn().Exec(`DELETE FROM visits`); err != nil {
		return fmt.Errorf("failed to delete visits: %w", err)
	}
	return nil
}
