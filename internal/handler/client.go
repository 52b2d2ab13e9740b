package handler

import (
	"net/http"

	"cropdetector/internal/logger"
	"cropdetector/internal/service/websocket"
	"cropdetector/internal/session"

	gorilla "github.com/gorilla/websocket"
)

// Upgrader upgrades HTTP connections to WebSocket; only same-origin pages may connect.
var Upgrader = gorilla.Upgrader{}

// ViewWebsocketHandler registers the connection as a viewer of the request's
// session. The current view is sent immediately, later views are pushed by the hub.
func ViewWebsocketHandler(sessions *session.Manager, hub *websocket.HubService, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := session.IDFromContext(r.Context())
		ctrl := sessions.Get(id)

		connection, err := Upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("WebSocket upgrade error: %v", err)
			return
		}

		if err := connection.WriteJSON(ctrl.View()); err != nil {
			logger.Error("Error sending initial view: %v", err)
			connection.Close()
			return
		}

		hub.Register(connection, id)
		defer hub.Unregister(connection)

		for {
			_, _, err := connection.ReadMessage()
			if err != nil {
				if gorilla.IsCloseError(err, gorilla.CloseNormalClosure, gorilla.CloseGoingAway) {
					logger.Info("Viewer disconnected normally")
				} else {
					logger.Error("Viewer disconnected with error: %v", err)
				}
				break
			}
		}
	}
}
