package handler

import (
	"net/http"

	"facegreeter/internal/logger"
	"facegreeter/internal/service/websocket"

	gorilla "github.com/gorilla/websocket"
)

// Upgrader upgrades HTTP connections to WebSocket; CheckOrigin allows all origins.
var Upgrader = gorilla.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// EventsHandler registers a viewer in the hub so it receives greeting events as JSON.
func EventsHandler(hub *websocket.HubService, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		connection, err := Upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("WebSocket upgrade error: %v", err)
			return
		}

		hub.Register(connection)
		defer hub.Unregister(connection)

		logger.Info("Event viewer connected")

		// Viewers never send anything useful; reading only detects the close.
		for {
			if _, _, err := connection.ReadMessage(); err != nil {
				if gorilla.IsCloseError(err, gorilla.CloseNormalClosure, gorilla.CloseGoingAway) {
					logger.Info("Event viewer disconnected normally")
				} else {
					logger.Warning("Event viewer disconnected with error: %v", err)
				}
				return
			}
		}
	}
}
