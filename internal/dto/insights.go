package dto

type CustomerInsightsRequest struct {
	FaceNames []string `json:"face_names"`
}

type CustomerInsight struct {
	Name     string `json:"name"`
	Greeting string `json:"greeting"`
	Degraded bool   `json:"degraded"`
}

type CustomerInsightsResponse struct {
	Success  bool              `json:"success"`
	Insights []CustomerInsight `json:"insights"`
}

// HealthResponse reports liveness and a few runtime facts.
type HealthResponse struct {
	Status         string `json:"status"`
	Backend        string `json:"backend"`
	GallerySize    int    `json:"gallery_size"`
	ActiveCamera   string `json:"active_camera"`
	ActiveSessions int    `json:"active_sessions"`
	Viewers        int    `json:"viewers"`
}
