package predict

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Tomato___Late_blight", "Tomato – Late_blight"},
		{"Corn_(maize)___Common_rust_", "Corn_(maize) – Common_rust_"},
		{"a___b___c", "a – b – c"},
		{"healthy", "healthy"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DisplayLabel(tt.in), "label %q", tt.in)
	}
}

func TestPrediction_Texts(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		label      string
		confidence string
	}{
		{"well formed", `{"prediction":"Tomato___Late_blight","confidence":92.4}`, "Tomato___Late_blight", "92.4"},
		{"integer confidence", `{"prediction":"x","confidence":100}`, "x", "100"},
		{"trailing zeros kept short", `{"prediction":"x","confidence":92.40}`, "x", "92.4"},
		{"no rounding", `{"prediction":"x","confidence":97.12345678}`, "x", "97.12345678"},
		{"string confidence", `{"prediction":"x","confidence":"high"}`, "x", "high"},
		{"missing fields", `{"detail":"Not Found"}`, "", ""},
		{"null fields", `{"prediction":null,"confidence":null}`, "", ""},
		{"numeric label", `{"prediction":7,"confidence":1}`, "7", "1"},
		{"huge confidence", `{"prediction":"x","confidence":1e21}`, "x", "1e+21"},
		{"just below exponent range", `{"prediction":"x","confidence":123456789012345680000}`, "x", "123456789012345680000"},
		{"tiny confidence", `{"prediction":"x","confidence":1e-7}`, "x", "1e-7"},
		{"tiny fractional confidence", `{"prediction":"x","confidence":0.00000015}`, "x", "1.5e-7"},
		{"smallest plain decimal", `{"prediction":"x","confidence":0.000001}`, "x", "0.000001"},
		{"negative zero", `{"prediction":"x","confidence":-0}`, "x", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Prediction
			assert.NoError(t, json.Unmarshal([]byte(tt.body), &p))
			assert.Equal(t, tt.label, p.LabelText())
			assert.Equal(t, tt.confidence, p.ConfidenceText())
		})
	}
}

func TestPrediction_NilIsBlank(t *testing.T) {
	var p *Prediction

	assert.Equal(t, "", p.LabelText())
	assert.Equal(t, "", p.ConfidenceText())
	_, ok := p.ConfidenceValue()
	assert.False(t, ok)
}

func TestNewPrediction(t *testing.T) {
	p := NewPrediction("Apple___healthy", 88.5)

	assert.Equal(t, "Apple___healthy", p.LabelText())
	assert.Equal(t, "88.5%", DisplayConfidence(p.ConfidenceText()))

	v, ok := p.ConfidenceValue()
	assert.True(t, ok)
	assert.Equal(t, 88.5, v)
}
