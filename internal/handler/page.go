package handler

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"cropdetector/internal/logger"
	"cropdetector/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// PageHandler renders the detector page from the session's current view.
func PageHandler(sessions *session.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view := sessions.Get(session.IDFromContext(r.Context())).View()

		var buf bytes.Buffer
		if err := pageTemplate.Execute(&buf, view); err != nil {
			logger.Error("Error rendering page: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		w.Write(buf.Bytes())
	}
}
