package dto

// View is everything the detector page renders, derived from controller state.
type View struct {
	State       string      `json:"state"`
	PreviewURL  string      `json:"previewUrl,omitempty"`
	Filename    string      `json:"filename,omitempty"`
	Loading     bool        `json:"loading"`
	ButtonLabel string      `json:"buttonLabel"`
	Error       string      `json:"error,omitempty"`
	Result      *ResultView `json:"result,omitempty"`
}

// ResultView holds the display strings of a prediction.
type ResultView struct {
	Disease    string `json:"disease"`
	Confidence string `json:"confidence"`
}
