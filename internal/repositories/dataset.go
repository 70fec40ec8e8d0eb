package repositories

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/moodset/internal/models"
)

const datasetColumns = `track_id, name, popularity, danceability, energy, key, loudness, mode, speechiness,
	acousticness, instrumentalness, liveness, valence, tempo, duration_ms, time_signature, label`

// DatasetRepository stores the labeled rows of a run.
type DatasetRepository struct {
	db *sql.DB
}

// NewDatasetRepository creates a new DatasetRepository with the given database connection
func NewDatasetRepository(db *sql.DB) *DatasetRepository {
	return &DatasetRepository{db: db}
}

// SaveRecords inserts records for runID in a single transaction, keeping their order.
// Either every row is stored or none is.
func (r *DatasetRepository) SaveRecords(runID string, records []models.MergedRecord) error {
	if runID == "" {
		return fmt.Errorf("run id is required")
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO dataset_tracks (run_id, position, ` + datasetColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		_, err := stmt.Exec(
			runID, i,
			rec.ID, rec.Name, rec.Popularity,
			rec.Danceability, rec.Energy, rec.Key, rec.Loudness, rec.Mode, rec.Speechiness,
			rec.Acousticness, rec.Instrumentalness, rec.Liveness, rec.Valence, rec.Tempo,
			rec.DurationMS, rec.TimeSignature, rec.Label,
		)
		if err != nil {
			return fmt.Errorf("failed to insert track %s: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit dataset: %w", err)
	}
	return nil
}

// ListByRun returns a run's rows in the order they were saved.
func (r *DatasetRepository) ListByRun(runID string) ([]models.MergedRecord, error) {
	query := "SELECT " + datasetColumns + " FROM dataset_tracks WHERE run_id = ? ORDER BY position ASC"

	rows, err := r.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query dataset: %w", err)
	}
	defer rows.Close()

	records := []models.MergedRecord{}
	for rows.Next() {
		var rec models.MergedRecord
		err := rows.Scan(
			&rec.ID, &rec.Name, &rec.Popularity,
			&rec.Danceability, &rec.Energy, &rec.Key, &rec.Loudness, &rec.Mode, &rec.Speechiness,
			&rec.Acousticness, &rec.Instrumentalness, &rec.Liveness, &rec.Valence, &rec.Tempo,
			&rec.DurationMS, &rec.TimeSignature, &rec.Label,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dataset row: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return records, nil
}

// CountByLabel tallies a run's rows per label.
func (r *DatasetRepository) CountByLabel(runID string) (map[string]int, error) {
	rows, err := r.db.Query("SELECT label, COUNT(*) FROM dataset_tracks WHERE run_id = ? GROUP BY label", runID)
	if err != nil {
		return nil, fmt.Errorf("failed to count labels: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			label string
			n     int
		)
		if err := rows.Scan(&label, &n); err != nil {
			return nil, fmt.Errorf("failed to scan label count: %w", err)
		}
		counts[label] = n
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return counts, nil
}
