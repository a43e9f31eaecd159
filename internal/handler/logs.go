package handler

import (
	"net/http"
	"os"
	"path/filepath"

	"facegreeter/internal/logger"

	"github.com/go-chi/chi/v5"
)

func logFileFor(r *http.Request) (string, bool) {
	switch level := chi.URLParam(r, "level"); level {
	case logger.LevelInfo, logger.LevelWarning, logger.LevelError:
		return logger.FileName(level), true
	default:
		return "", false
	}
}

// ShowLogsHandler serves info.log, warning.log or error.log as text/plain.
func ShowLogsHandler(l *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, ok := logFileFor(r)
		if !ok {
			http.NotFound(w, r)
			return
		}

		filePath := filepath.Join(l.Dir(), name)
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte("Log file not found: " + name))
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		http.ServeFile(w, r, filePath)
	}
}

// ClearLogsHandler truncates one level's log file.
func ClearLogsHandler(l *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, ok := logFileFor(r)
		if !ok {
			http.NotFound(w, r)
			return
		}
		if err := l.CleanLogs(name); err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to clear "+name)
			return
		}
		respondJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}
