package sqlite

import (
	"fmt"

	"cropdetector/internal/models"
)

// HistoryRepository implements repository.HistoryRepository for SQLite.
type HistoryRepository struct {
	db *DB
}

// NewHistoryRepository creates a new SQLite history repository.
func NewHistoryRepository(db *DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Insert adds a prediction record.
func (r *HistoryRepository) Insert(rec *models.PredictionRecord) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	result, err := r.db.Conn().Exec(`
		INSERT INTO predictions (session_id, filename, label, confidence, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, rec.SessionID, rec.Filename, rec.Label, rec.Confidence, rec.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert prediction: %w", err)
	}

	return result.LastInsertId()
}

// GetAll retrieves records newest first.
func (r *HistoryRepository) GetAll(filter *models.HistoryFilter) ([]models.PredictionRecord, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	query := `
		SELECT id, session_id, filename, label, confidence, created_at
		FROM predictions
		WHERE 1=1
	`
	args := []interface{}{}

	if filter == nil {
		filter = &models.HistoryFilter{}
	}

	if filter.SessionID != "" {
		query += " AND session_id = ?"
		args = append(args, filter.SessionID)
	}

	if filter.Label != "" {
		query += " AND label = ?"
		args = append(args, filter.Label)
	}

	query += " ORDER BY created_at DESC, id DESC"

	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := r.db.Conn().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	var records []models.PredictionRecord
	for rows.Next() {
		var rec models.PredictionRecord
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.Filename, &rec.Label, &rec.Confidence, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// GetStats counts records in total and per label.
func (r *HistoryRepository) GetStats() (*models.HistoryStats, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	stats := &models.HistoryStats{PerLabel: make(map[string]int)}

	rows, err := r.db.Conn().Query(`SELECT label, COUNT(*) FROM predictions GROUP BY label`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var label string
		var count int
		if err := rows.Scan(&label, &count); err != nil {
			return nil, fmt.Errorf("failed to scan stats: %w", err)
		}
		stats.PerLabel[label] = count
		stats.Total += count
	}

	return stats, rows.Err()
}

// DeleteAll removes every record.
func (r *HistoryRepository) DeleteAll() error {
	r.db.Lock()
	defer r.db.Unlock()

	if _, err := r.db.Conn().Exec(`DELETE FROM predictions`); err != nil {
		return fmt.Errorf("failed to delete predictions: %w", err)
	}
	return nil
}
