package predict

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Prediction is the service reply. Fields are kept raw so that a reply of the
// wrong shape still decodes and renders blank or verbatim instead of failing.
type Prediction struct {
	Label      json.RawMessage `json:"prediction"`
	Confidence json.RawMessage `json:"confidence"`
}

// NewPrediction builds a well-formed Prediction.
func NewPrediction(label string, confidence float64) *Prediction {
	l, _ := json.Marshal(label)
	return &Prediction{
		Label:      l,
		Confidence: json.RawMessage(strconv.FormatFloat(confidence, 'f', -1, 64)),
	}
}

// LabelText returns the label as sent, or "" when absent or p is nil.
func (p *Prediction) LabelText() string {
	if p == nil {
		return ""
	}
	return rawText(p.Label)
}

// ConfidenceText returns the confidence as sent, or "" when absent. Numbers are
// printed the way a browser prints them: shortest form, exponent notation
// from 1e21 up and below 1e-6.
func (p *Prediction) ConfidenceText() string {
	if p == nil {
		return ""
	}
	raw := bytes.TrimSpace(p.Confidence)
	if f, err := strconv.ParseFloat(string(raw), 64); err == nil {
		return formatNumber(f)
	}
	return rawText(raw)
}

// ConfidenceValue returns the numeric confidence, false when it is not a number.
func (p *Prediction) ConfidenceValue() (float64, bool) {
	if p == nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(string(bytes.TrimSpace(p.Confidence)), 64)
	return f, err == nil
}

func formatNumber(f float64) string {
	abs := math.Abs(f)
	if abs == 0 {
		return "0"
	}
	if abs < 1e21 && abs >= 1e-6 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}

	// Go pads the exponent to two digits ("1e-07"); browsers do not.
	s := strconv.FormatFloat(f, 'e', -1, 64)
	mantissa, exp, _ := strings.Cut(s, "e")
	sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
	return mantissa + "e" + sign + digits
}

func rawText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// DisplayLabel rewrites every "___" category separator to an en-dash.
func DisplayLabel(label string) string {
	return strings.ReplaceAll(label, "___", " – ")
}

// DisplayConfidence appends a literal percent sign.
func DisplayConfidence(confidence string) string {
	return confidence + "%"
}
