package controller

import (
	"cropdetector/internal/dto"
	"cropdetector/internal/service/predict"
)

// Render derives the view from state.
func Render(s State) dto.View {
	view := dto.View{
		State:       s.Phase.String(),
		PreviewURL:  s.PreviewURL,
		Loading:     s.Loading,
		ButtonLabel: LabelPredict,
		Error:       s.Error,
	}
	if s.Image != nil {
		view.Filename = s.Image.Filename
	}
	if s.Loading {
		view.ButtonLabel = LabelAnalyzing
	}
	if s.Result != nil {
		view.Result = &dto.ResultView{
			Disease:    predict.DisplayLabel(s.Result.LabelText()),
			Confidence: predict.DisplayConfidence(s.Result.ConfidenceText()),
		}
	}
	return view
}
