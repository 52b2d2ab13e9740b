package repository

import (
	"cropdetector/internal/models"
)

// HistoryRepository defines the operations on recorded predictions.
type HistoryRepository interface {
	// Create operations
	Insert(rec *models.PredictionRecord) (int64, error)

	// Read operations
	GetAll(filter *models.HistoryFilter) ([]models.PredictionRecord, error)
	GetStats() (*models.HistoryStats, error)

	// Delete operations
	DeleteAll() error
}
