package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// DefaultEndpoint is the prediction service address. It is not configurable.
const DefaultEndpoint = "http://127.0.0.1:8000/predict"

// FileField is the multipart part name the service reads the image from.
const FileField = "file"

var (
	// ErrNoImage is returned when predict is requested before any selection.
	ErrNoImage = errors.New("no image selected")
	// ErrTransport covers every network or decode failure.
	ErrTransport = errors.New("prediction service unreachable")
)

// Kind classifies an Outcome.
type Kind int

const (
	Succeeded Kind = iota
	PreconditionFailed
	TransportFailed
)

func (k Kind) String() string {
	switch k {
	case Succeeded:
		return "succeeded"
	case PreconditionFailed:
		return "precondition_failed"
	case TransportFailed:
		return "transport_failed"
	default:
		return "unknown"
	}
}

// Outcome is the result of one predict attempt. Prediction is set only when
// Kind is Succeeded, and is nil when the service answered a literal null.
// Err is set for both failure kinds.
type Outcome struct {
	Kind       Kind
	Prediction *Prediction
	Err        error
}

// Success wraps a decoded prediction. p may be nil.
func Success(p *Prediction) Outcome {
	return Outcome{Kind: Succeeded, Prediction: p}
}

// NoImage is the outcome of predicting without a selection.
func NoImage() Outcome {
	return Outcome{Kind: PreconditionFailed, Err: ErrNoImage}
}

// Transport wraps a network or decode failure.
func Transport(err error) Outcome {
	return Outcome{Kind: TransportFailed, Err: fmt.Errorf("%w: %w", ErrTransport, err)}
}

// Predictor is the collaborator the controller calls. *Client implements it.
type Predictor interface {
	Predict(ctx context.Context, filename string, data []byte) Outcome
}

// Client posts images to the prediction service.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a Client for endpoint. A zero timeout means no limit.
func NewClient(endpoint string, timeout time.Duration) *Client {
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Endpoint returns the URL the client posts to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Predict uploads data as the multipart part "file" and decodes the JSON reply.
// The HTTP status is not inspected: any body that is one complete JSON value
// is a success.
func (c *Client) Predict(ctx context.Context, filename string, data []byte) Outcome {
	body, contentType, err := encodeForm(filename, data)
	if err != nil {
		return Transport(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return Transport(err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Transport(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Transport(fmt.Errorf("read response (status %d): %w", resp.StatusCode, err))
	}
	prediction, err := decodePrediction(raw)
	if err != nil {
		return Transport(fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err))
	}
	return Success(prediction)
}

// decodePrediction parses a whole reply body. A null reply carries no
// prediction; any other value that is not an object decodes to an empty one.
func decodePrediction(raw []byte) (*Prediction, error) {
	var value json.RawMessage
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, err
	}

	value = bytes.TrimSpace(value)
	switch {
	case string(value) == "null":
		return nil, nil
	case value[0] != '{':
		return &Prediction{}, nil
	}

	var prediction Prediction
	if err := json.Unmarshal(value, &prediction); err != nil {
		return nil, err
	}
	return &prediction, nil
}

func encodeForm(filename string, data []byte) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if filename == "" {
		filename = "blob"
	}
	part, err := w.CreateFormFile(FileField, filename)
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", fmt.Errorf("write form file: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
