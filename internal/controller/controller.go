// Package controller holds the detector's per-session UI state and the
// select/predict operations that drive it.
package controller

import (
	"context"
	"io"
	"sync"
	"time"

	"cropdetector/internal/dto"
	"cropdetector/internal/logger"
	"cropdetector/internal/metrics"
	"cropdetector/internal/models"
	"cropdetector/internal/repository"
	"cropdetector/internal/service/predict"
	"cropdetector/internal/service/storage"
)

// User-facing messages.
const (
	MsgNoImage      = "Please upload an image first."
	MsgConnectError = "Failed to connect to prediction service."
)

// Button captions.
const (
	LabelPredict   = "Predict Disease"
	LabelAnalyzing = "Analyzing..."
)

// Phase is the position in Idle → Selected → Predicting → {Succeeded | Failed}.
type Phase int

const (
	Idle Phase = iota
	Selected
	Predicting
	Succeeded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Selected:
		return "selected"
	case Predicting:
		return "predicting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Image is a user-chosen file.
type Image struct {
	Filename    string
	ContentType string
	Data        []byte
}

// State is the controller's transient UI state.
//
// A new selection clears Result and Error. A failed predict sets Error but
// leaves a Result from an earlier success in place, and a success does not
// clear a stale Error, so both may be set at once.
type State struct {
	Phase      Phase
	Image      *Image
	PreviewURL string
	Result     *predict.Prediction
	Error      string
	Loading    bool

	previewID string
}

// Options are the optional collaborators of a Controller.
type Options struct {
	SessionID string
	Previews  *storage.PreviewService
	History   repository.HistoryRepository
	Logger    *logger.Logger
	// OnChange receives the view after every state change, outside the lock.
	OnChange func(dto.View)
}

// Controller owns one session's State. The lock guards state only and is
// never held across the network call; overlapping predicts are not prevented.
type Controller struct {
	predictor predict.Predictor
	opts      Options
	log       *logger.Logger
	ref       string

	mu    sync.Mutex
	state State
}

func New(predictor predict.Predictor, opts Options) *Controller {
	if opts.Previews == nil {
		opts.Previews = storage.NewPreviewService(0)
	}
	log := opts.Logger
	if log == nil {
		log = logger.New(io.Discard)
	}
	return &Controller{
		predictor: predictor,
		opts:      opts,
		log:       log,
		ref:       logger.SessionRef(opts.SessionID),
	}
}

// SelectImage stores img, derives a fresh preview reference and clears any
// previous result and error. No type or size validation is done.
func (c *Controller) SelectImage(img Image) dto.View {
	preview := c.opts.Previews.Add(img.Filename, img.ContentType, img.Data)

	c.mu.Lock()
	oldPreview := c.state.previewID
	c.state.Image = &Image{Filename: img.Filename, ContentType: img.ContentType, Data: preview.Data}
	c.state.previewID = preview.ID
	c.state.PreviewURL = preview.URL()
	c.state.Result = nil
	c.state.Error = ""
	c.state.Phase = Selected
	view := Render(c.state)
	c.mu.Unlock()

	if oldPreview != "" {
		c.opts.Previews.Release(oldPreview)
	}
	metrics.ImageSelections.Inc()
	c.log.Info("session %s selected %q (%d bytes)", c.ref, img.Filename, len(img.Data))
	c.notify(view)
	return view
}

// Predict sends the selected image to the prediction service. Loading is true
// from dispatch until the outcome is applied.
func (c *Controller) Predict(ctx context.Context) predict.Outcome {
	c.mu.Lock()
	img := c.state.Image
	if img == nil {
		c.state.Error = MsgNoImage
		c.state.Phase = Failed
		view := Render(c.state)
		c.mu.Unlock()

		metrics.PredictRequests.WithLabelValues(predict.PreconditionFailed.String()).Inc()
		c.log.Warning("session %s: predict requested without an image", c.ref)
		c.notify(view)
		return predict.NoImage()
	}
	c.state.Loading = true
	c.state.Phase = Predicting
	view := Render(c.state)
	c.mu.Unlock()
	c.notify(view)

	metrics.PredictionsInFlight.Inc()
	start := time.Now()
	out := c.predictor.Predict(ctx, img.Filename, img.Data)
	metrics.PredictDuration.Observe(time.Since(start).Seconds())
	metrics.PredictionsInFlight.Dec()
	metrics.PredictRequests.WithLabelValues(out.Kind.String()).Inc()

	c.mu.Lock()
	switch out.Kind {
	case predict.Succeeded:
		c.state.Result = out.Prediction
		c.state.Phase = Succeeded
	default:
		c.state.Error = MsgConnectError
		c.state.Phase = Failed
	}
	c.state.Loading = false
	view = Render(c.state)
	c.mu.Unlock()

	switch {
	case out.Kind != predict.Succeeded:
		c.log.Error("session %s: predict failed: %v", c.ref, out.Err)
	case out.Prediction == nil:
		c.log.Warning("session %s: %q -> empty reply", c.ref, img.Filename)
	default:
		c.log.Info("session %s: %q -> %s (%s)", c.ref, img.Filename,
			out.Prediction.LabelText(), out.Prediction.ConfidenceText())
		c.record(img, out.Prediction)
	}
	c.notify(view)
	return out
}

// View renders the current state.
func (c *Controller) View() dto.View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Render(c.state)
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Close releases the preview held by the controller.
func (c *Controller) Close() {
	c.mu.Lock()
	id := c.state.previewID
	c.state.previewID = ""
	c.mu.Unlock()

	if id != "" {
		c.opts.Previews.Release(id)
	}
}

func (c *Controller) record(img *Image, p *predict.Prediction) {
	if c.opts.History == nil {
		return
	}
	_, err := c.opts.History.Insert(&models.PredictionRecord{
		SessionID:  c.opts.SessionID,
		Filename:   img.Filename,
		Label:      p.LabelText(),
		Confidence: p.ConfidenceText(),
		CreatedAt:  time.Now(),
	})
	if err != nil {
		c.log.Error("session %s: failed to record prediction: %v", c.ref, err)
	}
}

func (c *Controller) notify(view dto.View) {
	if c.opts.OnChange != nil {
		c.opts.OnChange(view)
	}
}
