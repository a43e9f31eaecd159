package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"facegreeter/internal/config"
	"facegreeter/internal/logger"
	"facegreeter/internal/repository"
)

const snapshotTimeLayout = "2006-01-02_15-04-05.000"

// Snapshot is an annotated frame captured when a visitor was greeted.
type Snapshot struct {
	EventID   string
	Name      string
	Timestamp time.Time
	Data      []byte
}

// BufferService buffers snapshots in memory and periodically flushes them to disk,
// recording each file path on the matching visit.
type BufferService struct {
	dir           string
	limit         int
	flushInterval time.Duration
	snapshots     []Snapshot
	mu            sync.Mutex
	logger        *logger.Logger
	visitRepo     repository.VisitRepository
}

// NewBufferService creates a BufferService writing into SNAPSHOT_DIR.
func NewBufferService(cfg *config.Config, logger *logger.Logger, visitRepo repository.VisitRepository) *BufferService {
	limit := cfg.SnapshotBufferLimit
	if limit <= 0 {
		limit = 20
	}
	interval := time.Duration(cfg.SnapshotFlushInterval) * time.Second
	if interval <= 0 {
		interval = 30 * time.Second
	}

	return &BufferService{
		dir:           cfg.SnapshotDirectory,
		limit:         limit,
		flushInterval: interval,
		snapshots:     make([]Snapshot, 0, limit),
		logger:        logger,
		visitRepo:     visitRepo,
	}
}

// Run flushes on a ticker until ctx is cancelled, then flushes once more.
func (s *BufferService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Flush()
		case <-ctx.Done():
			s.Flush()
			return
		}
	}
}

// Add queues a snapshot. When the buffer is full the oldest snapshot is dropped.
func (s *BufferService) Add(snapshot Snapshot) {
	if len(snapshot.Data) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.snapshots) >= s.limit {
		s.logger.Warning("Snapshot buffer full (%d), dropping oldest", s.limit)
		s.snapshots = s.snapshots[1:]
	}
	s.snapshots = append(s.snapshots, snapshot)
}

// Pending returns the number of buffered snapshots.
func (s *BufferService) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.snapshots)
}

// Flush writes buffered snapshots to disk and resets the buffer.
func (s *BufferService) Flush() int {
	s.mu.Lock()
	pending := s.snapshots
	s.snapshots = make([]Snapshot, 0, s.limit)
	s.mu.Unlock()

	if len(pending) == 0 {
		return 0
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		s.logger.Error("Error creating snapshot directory: %v", err)
		return 0
	}

	saved := 0
	for _, snapshot := range pending {
		filename := fmt.Sprintf("%s_%s_%s.jpg", snapshot.Timestamp.Format(snapshotTimeLayout), safeName(snapshot.Name), snapshot.EventID)
		path := filepath.Join(s.dir, filename)

		if err := os.WriteFile(path, snapshot.Data, 0644); err != nil {
			s.logger.Error("Error saving snapshot %s: %v", filename, err)
			continue
		}

		if s.visitRepo != nil && snapshot.EventID != "" {
			if err := s.visitRepo.UpdateSnapshot(snapshot.EventID, path); err != nil {
				s.logger.Error("Error recording snapshot %s: %v", filename, err)
			}
		}
		saved++
	}

	s.logger.Info("Flushed %d snapshot(s) to disk", saved)
	return saved
}

func safeName(name string) string {
	return strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == ' ' {
			return '-'
		}
		return r
	}, name)
}
