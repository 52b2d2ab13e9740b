package models

import "time"

// PredictionRecord is one successful prediction kept in the history.
type PredictionRecord struct {
	ID         int64     `json:"id"`
	SessionID  string    `json:"session_id"`
	Filename   string    `json:"filename"`
	Label      string    `json:"label"`
	Confidence string    `json:"confidence"`
	CreatedAt  time.Time `json:"created_at"`
}

// HistoryFilter narrows history queries.
type HistoryFilter struct {
	SessionID string
	Label     string
	Limit     int
	Offset    int
}

// HistoryStats summarizes the history.
type HistoryStats struct {
	Total    int            `json:"total"`
	PerLabel map[string]int `json:"per_label"`
}
