package route

import (
	"net/http"

	"cropdetector/internal/config"
	"cropdetector/internal/handler"
	"cropdetector/internal/logger"
	"cropdetector/internal/middleware"
	"cropdetector/internal/service/storage"
	"cropdetector/internal/service/websocket"
	"cropdetector/internal/session"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes registers the detector page, its form and API endpoints, previews,
// logs and metrics, and wraps everything with the session middleware.
func SetupRoutes(cfg *config.Config, logger *logger.Logger, sessions *session.Manager,
	previews *storage.PreviewService, hub *websocket.HubService) http.Handler {
	r := mux.NewRouter()

	// Static files
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir))))

	// Page and form posts
	r.HandleFunc("/", handler.PageHandler(sessions, logger)).Methods(http.MethodGet)
	r.HandleFunc("/select", handler.SelectHandler(sessions, cfg, logger)).Methods(http.MethodPost)
	r.HandleFunc("/predict", handler.PredictHandler(sessions)).Methods(http.MethodPost)
	r.HandleFunc(storage.PreviewPathPrefix+"{id}", handler.PreviewHandler(previews)).Methods(http.MethodGet)

	// API endpoints
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/state", handler.StateHandler(sessions, logger)).Methods(http.MethodGet)
	api.HandleFunc("/select", handler.SelectAPIHandler(sessions, cfg, logger)).Methods(http.MethodPost)
	api.HandleFunc("/predict", handler.PredictAPIHandler(sessions, logger)).Methods(http.MethodPost)
	api.HandleFunc("/view", handler.ViewWebsocketHandler(sessions, hub, logger)).Methods(http.MethodGet)

	// Log endpoints
	logs := r.PathPrefix("/logs").Subrouter()
	logs.Use(middleware.AdminOnly(cfg.AdminToken))
	logs.HandleFunc("/{level}", handler.ShowLogsHandler(logger)).Methods(http.MethodGet)
	logs.HandleFunc("/{level}/clear", handler.ClearLogsHandler(logger)).Methods(http.MethodPost)

	r.HandleFunc("/health", handler.HealthHandler).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return sessions.Middleware(r)
}
