package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"facegreeter/internal/logger"
	"facegreeter/internal/model"
	"facegreeter/internal/repository"
)

const defaultVisitLimit = 100

// VisitsHandler lists recorded visits, newest first. Supports ?name=, ?since= (RFC3339) and ?limit=.
func VisitsHandler(repo repository.VisitRepository, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := parseVisitFilter(r)
		if err != nil {
			respondErr(w, err)
			return
		}

		visits, err := repo.GetAll(filter)
		if err != nil {
			logger.Error("Error loading visits: %v", err)
			respondError(w, http.StatusInternalServerError, "Failed to load visits")
			return
		}
		if visits == nil {
			visits = []model.Visit{}
		}

		respondJSON(w, http.StatusOK, visits)
	}
}

// VisitStatsHandler returns aggregate visit counts.
func VisitStatsHandler(repo repository.VisitRepository, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := repo.GetStats()
		if err != nil {
			logger.Error("Error loading visit stats: %v", err)
			respondError(w, http.StatusInternalServerError, "Failed to load visit stats")
			return
		}
		respondJSON(w, http.StatusOK, stats)
	}
}

// ClearVisitsHandler deletes every recorded visit.
func ClearVisitsHandler(repo repository.VisitRepository, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := repo.DeleteAll(); err != nil {
			logger.Error("Error clearing visits: %v", err)
			respondError(w, http.StatusInternalServerError, "Failed to clear visits")
			return
		}
		logger.Info("Visit log cleared")
		respondJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

func parseVisitFilter(r *http.Request) (*model.VisitFilter, error) {
	q := r.URL.Query()
	filter := &model.VisitFilter{Name: q.Get("name"), Limit: defaultVisitLimit}

	if s := q.Get("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil || limit <= 0 {
			return nil, fmt.Errorf("%w: invalid limit %q", model.ErrValidation, s)
		}
		filter.Limit = limit
	}

	if s := q.Get("since"); s != "" {
		since, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid since %q", model.ErrValidation, s)
		}
		filter.Since = since
	}

	return filter, nil
}
