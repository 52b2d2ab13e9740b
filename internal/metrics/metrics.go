package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PredictRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crop_predict_requests_total",
			Help: "Predict attempts by outcome",
		},
		[]string{"outcome"},
	)

	PredictDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "crop_predict_duration_seconds",
			Help:    "Round trip to the prediction service",
			Buckets: prometheus.DefBuckets,
		},
	)

	PredictionsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "crop_predictions_in_flight",
			Help: "Requests currently awaiting the prediction service",
		},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "crop_active_sessions",
			Help: "Mounted detector sessions",
		},
	)

	ImageSelections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crop_image_selections_total",
			Help: "Images chosen by users",
		},
	)
)
