package route

import (
	"net/http"

	"facegreeter/internal/config"
	"facegreeter/internal/handler"
	"facegreeter/internal/logger"
	"facegreeter/internal/repository"
	"facegreeter/internal/service/ai"
	"facegreeter/internal/service/capture"
	"facegreeter/internal/service/gallery"
	"facegreeter/internal/service/greeting"
	"facegreeter/internal/service/publish"
	"facegreeter/internal/service/stream"
	"facegreeter/internal/service/websocket"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// Deps carries everything the HTTP surface needs.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	Faces       *ai.FaceService
	Gallery     *gallery.Gallery
	Registry    *capture.Registry
	Provisioner *capture.Provisioner
	Greeter     *greeting.Greeter
	Factory     *stream.Factory
	Hub         *websocket.HubService
	Audio       *publish.AudioFilePublisher
	Visits      repository.VisitRepository
}

// SetupRoutes registers the face greeting endpoints, the JSON API and the log endpoints.
func SetupRoutes(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)

	// Face greeting endpoints
	r.Get("/video_feed", handler.VideoFeedHandler(d.Factory, d.Logger))
	r.Post("/add_face", handler.AddFaceHandler(d.Gallery, d.Config, d.Logger))
	r.Post("/detect_face", handler.DetectFaceHandler(d.Faces, d.Gallery, d.Registry, d.Config, d.Logger))
	r.Post("/connect_camera", handler.ConnectCameraHandler(d.Registry, d.Provisioner, d.Config, d.Logger))
	r.Post("/customer_insights", handler.CustomerInsightsHandler(d.Greeter, d.Logger))

	r.Get("/ws/events", handler.EventsHandler(d.Hub, d.Logger))
	r.Get("/audio/latest", handler.LatestAudioHandler(d.Audio, d.Logger))

	// API endpoints
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handler.HealthHandler(d.Faces, d.Gallery, d.Registry, d.Factory, d.Hub))
		r.Get("/gallery", handler.GalleryHandler(d.Gallery))
		r.Get("/visits", handler.VisitsHandler(d.Visits, d.Logger))
		r.Delete("/visits", handler.ClearVisitsHandler(d.Visits, d.Logger))
		r.Get("/visits/stats", handler.VisitStatsHandler(d.Visits, d.Logger))
	})

	// Log endpoints
	r.Get("/logs/{level}", handler.ShowLogsHandler(d.Logger))
	r.Post("/logs/{level}/clear", handler.ClearLogsHandler(d.Logger))

	return r
}
