package handler

import (
	"fmt"
	"net/http"

	"facegreeter/internal/dto"
	"facegreeter/internal/logger"
	"facegreeter/internal/model"
	"facegreeter/internal/service/greeting"
)

const maxInsightNames = 50

// CustomerInsightsHandler returns a greeting per requested name, falling back to the
// canned text for any name whose chat call fails.
func CustomerInsightsHandler(greeter *greeting.Greeter, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dto.CustomerInsightsRequest
		if err := decodeJSON(r, &req); err != nil {
			respondErr(w, err)
			return
		}
		if len(req.FaceNames) == 0 {
			respondErr(w, fmt.Errorf("%w: face_names is required", model.ErrValidation))
			return
		}
		if len(req.FaceNames) > maxInsightNames {
			respondErr(w, fmt.Errorf("%w: at most %d names per request", model.ErrValidation, maxInsightNames))
			return
		}

		insights := make([]dto.CustomerInsight, 0, len(req.FaceNames))
		for _, name := range req.FaceNames {
			if name == "" {
				name = model.UnknownIdentity
			}
			text, degraded := greeter.Text(r.Context(), name)
			insights = append(insights, dto.CustomerInsight{Name: name, Greeting: text, Degraded: degraded})
		}

		logger.Info("Generated %d customer insight(s)", len(insights))
		respondJSON(w, http.StatusOK, dto.CustomerInsightsResponse{Success: true, Insights: insights})
	}
}
