package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"slices"

	"cropdetector/internal/logger"

	"github.com/gorilla/mux"
)

// ShowLogsHandler serves the log file of the {level} route variable as text/plain.
func ShowLogsHandler(log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		level, ok := logLevel(w, r)
		if !ok {
			return
		}
		serveLogFile(w, r, log.Dir(), logger.FileName(level))
	}
}

// ClearLogsHandler truncates the log file of the {level} route variable.
func ClearLogsHandler(log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		level, ok := logLevel(w, r)
		if !ok {
			return
		}
		if err := log.CleanLogs(level); err != nil {
			log.Error("Error clearing logs: %v", err)
			http.Error(w, "Unable to clear logs", http.StatusInternalServerError)
			return
		}
		log.Info("Cleared %s log", level)
		w.WriteHeader(http.StatusNoContent)
	}
}

func logLevel(w http.ResponseWriter, r *http.Request) (string, bool) {
	level := mux.Vars(r)["level"]
	if !slices.Contains(logger.Levels, level) {
		http.NotFound(w, r)
		return "", false
	}
	return level, true
}

// serveLogFile is a helper that sets headers and serves a log file if it exists.
func serveLogFile(w http.ResponseWriter, r *http.Request, logDir, filename string) {
	filePath := filepath.Join(logDir, filename)

	if _, err := os.Stat(filePath); logDir == "" || os.IsNotExist(err) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("Log file not found: " + filename))
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")

	http.ServeFile(w, r, filePath)
}
