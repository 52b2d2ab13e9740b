// Package mockservice is a local stand-in for the prediction service. It
// answers uploads with a deterministic label so the detector can be run
// without the real model.
package mockservice

import (
	"encoding/json"
	"hash/crc32"
	"io"
	"math"
	"net/http"

	"cropdetector/internal/logger"
	"cropdetector/internal/service/predict"

	"github.com/gorilla/mux"
)

// Classes are the labels the stand-in picks from, in the service's
// "Crop___Condition" format.
var Classes = []string{
	"Apple___Apple_scab",
	"Apple___healthy",
	"Corn_(maize)___Common_rust_",
	"Grape___Black_rot",
	"Potato___Early_blight",
	"Tomato___Late_blight",
	"Tomato___healthy",
}

// Response mirrors the service reply.
type Response struct {
	Prediction string  `json:"prediction"`
	Confidence float64 `json:"confidence"`
}

// Classify maps image bytes to a label and a confidence in [50, 100).
func Classify(data []byte) Response {
	sum := crc32.ChecksumIEEE(data)
	confidence := 50 + float64(sum%5000)/100
	return Response{
		Prediction: Classes[int(sum%uint32(len(Classes)))],
		Confidence: math.Round(confidence*100) / 100,
	}
}

// Handler is the stand-in's HTTP surface.
type Handler struct {
	logger *logger.Logger
}

func NewHandler(logger *logger.Logger) *Handler {
	return &Handler{logger: logger}
}

// Router exposes POST /predict and GET /health.
func (h *Handler) Router() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/predict", h.Predict).Methods(http.MethodPost)
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	return r
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}

// Predict reads the "file" part and replies with a classification. Errors are
// JSON bodies with a "detail" field and a 4xx status.
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	// Parse multipart form (10MB max)
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		h.fail(w, http.StatusBadRequest, "Failed to parse form")
		return
	}

	file, header, err := r.FormFile(predict.FileField)
	if err != nil {
		h.fail(w, http.StatusUnprocessableEntity, "No image file provided. Use 'file' as the form field name")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.fail(w, http.StatusBadRequest, "Failed to read file")
		return
	}

	resp := Classify(data)
	h.logger.Info("Classified %s (%d bytes) as %s", header.Filename, len(data), resp.Prediction)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *Handler) fail(w http.ResponseWriter, status int, detail string) {
	h.logger.Warning("Rejected request: %s", detail)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
