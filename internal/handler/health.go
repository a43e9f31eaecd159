package handler

import (
	"net/http"

	"facegreeter/internal/dto"
	"facegreeter/internal/service/ai"
	"facegreeter/internal/service/capture"
	"facegreeter/internal/service/gallery"
	"facegreeter/internal/service/stream"
	"facegreeter/internal/service/websocket"
)

func HealthHandler(faces *ai.FaceService, g *gallery.Gallery, registry *capture.Registry,
	factory *stream.Factory, hub *websocket.HubService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, dto.HealthResponse{
			Status:         "ok",
			Backend:        faces.Backend(),
			GallerySize:    g.Len(),
			ActiveCamera:   capture.Redact(registry.Active()),
			ActiveSessions: factory.Active(),
			Viewers:        hub.GetClientCount(),
		})
	}
}
