package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"cropdetector/internal/config"
	"cropdetector/internal/controller"
	"cropdetector/internal/dto"
	"cropdetector/internal/logger"
	"cropdetector/internal/repository"
	"cropdetector/internal/repository/sqlite"
	"cropdetector/internal/route"
	"cropdetector/internal/service/predict"
	"cropdetector/internal/service/storage"
	"cropdetector/internal/service/websocket"
	"cropdetector/internal/session"
)

type App struct {
	config   *config.Config
	logger   *logger.Logger
	db       *sqlite.DB
	history  repository.HistoryRepository
	client   *predict.Client
	previews *storage.PreviewService
	hub      *websocket.HubService
	sessions *session.Manager
}

func NewApp(cfg *config.Config) (*App, error) {
	log, err := logger.NewLogger(cfg)
	if err != nil {
		return nil, err
	}

	a := &App{
		config:   cfg,
		logger:   log,
		client:   predict.NewClient(predict.DefaultEndpoint, cfg.RequestTimeout),
		previews: storage.NewPreviewService(cfg.SessionTTL),
		hub:      websocket.NewHubService(log),
	}

	if cfg.HistoryDB != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.HistoryDB), 0755); err != nil {
			log.Close()
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
		db, err := sqlite.New(cfg.HistoryDB)
		if err != nil {
			log.Close()
			return nil, err
		}
		a.db = db
		a.history = sqlite.NewHistoryRepository(db)
	}

	a.sessions = session.NewManager(a.newController, cfg.SessionTTL)
	return a, nil
}

// newController mounts the detector for one session.
func (a *App) newController(id string) *controller.Controller {
	return controller.New(a.client, controller.Options{
		SessionID: id,
		Previews:  a.previews,
		History:   a.history,
		Logger:    a.logger,
		OnChange: func(view dto.View) {
			a.hub.Publish(id, view)
		},
	})
}

// Handler returns the fully wired HTTP handler.
func (a *App) Handler() http.Handler {
	return route.SetupRoutes(a.config, a.logger, a.sessions, a.previews, a.hub)
}

// Run serves until SIGINT or SIGTERM.
func (a *App) Run() error {
	defer a.Close()

	stop := make(chan struct{})
	go a.previews.Run(a.config.SweepInterval, stop)
	go a.sessions.Run(a.config.SweepInterval, stop)
	go a.hub.Run()
	defer close(stop)
	defer a.hub.Stop()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.config.Port),
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	fmt.Printf("🌾 Crop Disease Detector\n")
	fmt.Printf("📍 URL: http://localhost:%d\n", a.config.Port)
	fmt.Printf("🤖 Prediction service: %s\n", a.client.Endpoint())
	if a.config.HistoryDB != "" {
		fmt.Printf("🗂  History: %s\n", a.config.HistoryDB)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- server.ListenAndServe() }()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case sig := <-signals:
		a.logger.Info("Received %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}

// Close releases the history database and log files.
func (a *App) Close() {
	if a.db != nil {
		a.db.Close()
	}
	a.logger.Close()
}
