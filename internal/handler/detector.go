package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"cropdetector/internal/config"
	"cropdetector/internal/controller"
	"cropdetector/internal/logger"
	"cropdetector/internal/service/predict"
	"cropdetector/internal/service/storage"
	"cropdetector/internal/session"

	"github.com/gorilla/mux"
)

// SelectHandler handles POST /select: the upload replaces the session's image
// and the browser is sent back to the page.
func SelectHandler(sessions *session.Manager, cfg *config.Config, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !selectImage(w, r, sessions, cfg, logger) {
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// SelectAPIHandler handles POST /api/select and answers with the JSON view.
func SelectAPIHandler(sessions *session.Manager, cfg *config.Config, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !selectImage(w, r, sessions, cfg, logger) {
			return
		}
		writeView(w, sessions.Get(session.IDFromContext(r.Context())), logger)
	}
}

// PredictHandler handles POST /predict and redirects back to the page.
func PredictHandler(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runPredict(r, sessions)
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// PredictAPIHandler handles POST /api/predict and answers with the JSON view.
// Failures are part of the view, so the status is always 200.
func PredictAPIHandler(sessions *session.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctrl := runPredict(r, sessions)
		writeView(w, ctrl, logger)
	}
}

// StateHandler handles GET /api/state.
func StateHandler(sessions *session.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeView(w, sessions.Get(session.IDFromContext(r.Context())), logger)
	}
}

// PreviewHandler serves the image behind a preview reference.
func PreviewHandler(previews *storage.PreviewService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := previews.Get(mux.Vars(r)["id"])
		if p == nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", p.ContentType)
		w.Header().Set("Cache-Control", "private, max-age=3600")
		w.Write(p.Data)
	}
}

// HealthHandler reports liveness.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}

// runPredict predicts for the request's session. The request context's
// values are kept but its cancellation is not: leaving the page does not
// abort an in-flight prediction.
func runPredict(r *http.Request, sessions *session.Manager) *controller.Controller {
	ctrl := sessions.Get(session.IDFromContext(r.Context()))
	ctrl.Predict(context.WithoutCancel(r.Context()))
	return ctrl
}

// selectImage reads the "file" part and hands it to the session controller.
// A form without a file leaves the state untouched.
func selectImage(w http.ResponseWriter, r *http.Request, sessions *session.Manager, cfg *config.Config, logger *logger.Logger) bool {
	img, ok, err := readUpload(r, cfg.MaxUploadBytes())
	if err != nil {
		logger.Warning("Rejected upload: %v", err)
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return false
	}
	ctrl := sessions.Get(session.IDFromContext(r.Context()))
	if ok {
		ctrl.SelectImage(img)
	}
	return true
}

func readUpload(r *http.Request, maxBytes int64) (controller.Image, bool, error) {
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return controller.Image{}, false, fmt.Errorf("parse multipart form: %w", err)
	}

	file, header, err := r.FormFile(predict.FileField)
	if errors.Is(err, http.ErrMissingFile) {
		return controller.Image{}, false, nil
	}
	if err != nil {
		return controller.Image{}, false, fmt.Errorf("read form file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return controller.Image{}, false, fmt.Errorf("read upload: %w", err)
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	return controller.Image{
		Filename:    header.Filename,
		ContentType: contentType,
		Data:        data,
	}, true, nil
}

func writeView(w http.ResponseWriter, ctrl *controller.Controller, logger *logger.Logger) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(ctrl.View()); err != nil {
		logger.Error("Error encoding JSON response: %v", err)
	}
}
