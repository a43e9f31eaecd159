package handler

import (
	"errors"
	"io/fs"
	"net/http"

	"facegreeter/internal/logger"
	"facegreeter/internal/service/publish"
)

// LatestAudioHandler serves the most recent greeting MP3.
func LatestAudioHandler(audio *publish.AudioFilePublisher, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := audio.Read()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				respondError(w, http.StatusNotFound, "No greeting audio yet")
				return
			}
			logger.Error("Error reading greeting audio: %v", err)
			respondError(w, http.StatusInternalServerError, "Failed to read greeting audio")
			return
		}

		w.Header().Set("Content-Type", "audio/mpeg")
		w.Header().Set("Cache-Control", "no-cache")
		w.Write(data)
	}
}
