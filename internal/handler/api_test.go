package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"facegreeter/internal/dto"
	"facegreeter/internal/logger"
	"facegreeter/internal/model"
	"facegreeter/internal/repository/sqlite"
	"facegreeter/internal/service/publish"
	"facegreeter/internal/service/stream"
	"facegreeter/internal/service/websocket"

	"github.com/go-chi/chi/v5"
)

func setupVisitRepo(t *testing.T) *sqlite.VisitRepository {
	t.Helper()

	db, err := sqlite.New(filepath.Join(t.TempDir(), "visits.db"))
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repo := sqlite.NewVisitRepository(db)
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, name := range []string{"Alice", "Unknown", "Alice"} {
		_, err := repo.Insert(&model.Visit{
			EventID:   "event-" + string(rune('a'+i)),
			Name:      name,
			Known:     name != model.UnknownIdentity,
			Greeting:  "hi",
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}
	return repo
}

// ==================== Visits ====================

func TestVisitsHandler(t *testing.T) {
	repo := setupVisitRepo(t)
	env := setupEnv(t, nil)
	handler := VisitsHandler(repo, env.logger)

	tests := []struct {
		query    string
		wantCode int
		wantLen  int
	}{
		{"", http.StatusOK, 3},
		{"?name=Alice", http.StatusOK, 2},
		{"?limit=1", http.StatusOK, 1},
		{"?name=Nobody", http.StatusOK, 0},
		{"?limit=-3", http.StatusBadRequest, 0},
		{"?since=yesterday", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/api/visits"+tt.query, nil))

		if rec.Code != tt.wantCode {
			t.Errorf("%q: expected %d, got %d", tt.query, tt.wantCode, rec.Code)
			continue
		}
		if tt.wantCode != http.StatusOK {
			continue
		}
		var visits []model.Visit
		if err := json.NewDecoder(rec.Body).Decode(&visits); err != nil {
			t.Fatalf("%q: decode failed: %v", tt.query, err)
		}
		if len(visits) != tt.wantLen {
			t.Errorf("%q: expected %d visits, got %d", tt.query, tt.wantLen, len(visits))
		}
	}
}

func TestVisitStatsAndClear(t *testing.T) {
	repo := setupVisitRepo(t)
	env := setupEnv(t, nil)

	rec := httptest.NewRecorder()
	VisitStatsHandler(repo, env.logger)(rec, httptest.NewRequest(http.MethodGet, "/api/visits/stats", nil))

	var stats model.VisitStats
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if stats.TotalVisits != 3 || stats.UnknownVisits != 1 || stats.PerName["Alice"] != 2 {
		t.Errorf("Unexpected stats %+v", stats)
	}

	rec = httptest.NewRecorder()
	ClearVisitsHandler(repo, env.logger)(rec, httptest.NewRequest(http.MethodDelete, "/api/visits", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if visits, _ := repo.GetAll(&model.VisitFilter{}); len(visits) != 0 {
		t.Errorf("Expected no visits after clear, got %d", len(visits))
	}
}

// ==================== Logs ====================

func TestLogsHandlers(t *testing.T) {
	env := setupEnv(t, nil)
	env.logger.Warning("disk almost full")

	router := chi.NewRouter()
	router.Get("/logs/{level}", ShowLogsHandler(env.logger))
	router.Post("/logs/{level}/clear", ClearLogsHandler(env.logger))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/logs/warning", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "disk almost full") {
		t.Fatalf("Expected warning log content, got %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/logs/debug", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown level, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/logs/warning/clear", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	info, err := os.Stat(filepath.Join(env.logger.Dir(), logger.FileName(logger.LevelWarning)))
	if err != nil || info.Size() != 0 {
		t.Errorf("Expected warning log truncated, err=%v", err)
	}
}

// ==================== Audio ====================

func TestLatestAudioHandler(t *testing.T) {
	env := setupEnv(t, nil)
	audio := publish.NewAudioFilePublisher(filepath.Join(t.TempDir(), "welcome.mp3"))
	handler := LatestAudioHandler(audio, env.logger)

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/audio/latest", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected 404 before any greeting, got %d", rec.Code)
	}

	event := model.GreetingEvent{Name: "Alice", Known: true, Audio: []byte("ID3mp3")}
	if err := audio.Publish(context.Background(), event); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	rec = httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/audio/latest", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ID3mp3" {
		t.Errorf("Expected latest audio, got %d %q", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "audio/mpeg" {
		t.Errorf("Expected audio/mpeg, got %s", ct)
	}
}

// ==================== Gallery and health ====================

func TestGalleryAndHealthHandlers(t *testing.T) {
	env := setupEnv(t, nil)
	for _, name := range []string{"Bob", "Alice"} {
		if _, err := env.gallery.Enroll(name, solidPNG(t, 128)); err != nil {
			t.Fatalf("Enroll %s failed: %v", name, err)
		}
	}

	rec := httptest.NewRecorder()
	GalleryHandler(env.gallery)(rec, httptest.NewRequest(http.MethodGet, "/api/gallery", nil))

	var galleryResp dto.GalleryResponse
	if err := json.NewDecoder(rec.Body).Decode(&galleryResp); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if galleryResp.Count != 2 || galleryResp.Names[0] != "Bob" || galleryResp.Names[1] != "Alice" {
		t.Errorf("Expected [Bob Alice] in enrollment order, got %+v", galleryResp)
	}

	hub := websocket.NewHubService(env.logger)
	factory := stream.NewFactory(env.registry, env.gallery, env.faces, env.greeter, publish.NewMulti(env.logger), env.cfg, env.logger)

	rec = httptest.NewRecorder()
	HealthHandler(env.faces, env.gallery, env.registry, factory, hub)(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	var health dto.HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&health); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if health.Status != "ok" || health.Backend != "bright" || health.GallerySize != 2 {
		t.Errorf("Unexpected health %+v", health)
	}
}
