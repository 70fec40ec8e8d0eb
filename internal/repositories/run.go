package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/desertthunder/moodset/internal/models"
	"github.com/desertthunder/moodset/internal/shared"
)

const runColumns = "id, sequence, started_at, finished_at, playlists, tracks, records, failures, output_path"

// RunRepository stores [models.Run] summaries.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts run, assigning its sequence (and an ID when it has none).
func (r *RunRepository) Create(run *models.Run) error {
	if run.ID == "" {
		run.ID = shared.GenerateID()
	}
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}
	run.Sequence = sequence

	query := `
		INSERT INTO runs (` + runColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		run.ID,
		run.Sequence,
		run.StartedAt.UTC(),
		run.FinishedAt.UTC(),
		run.Playlists,
		run.Tracks,
		run.Records,
		run.Failures,
		run.OutputPath,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	return nil
}

// Get retrieves a run by ID.
func (r *RunRepository) Get(id string) (*models.Run, error) {
	query := "SELECT " + runColumns + " FROM runs WHERE id = ?"
	return r.scanOne(r.db.QueryRow(query, id), id)
}

// Find resolves ref as a sequence number when it is numeric, otherwise as an ID.
func (r *RunRepository) Find(ref string) (*models.Run, error) {
	if seq, err := strconv.Atoi(ref); err == nil {
		query := "SELECT " + runColumns + " FROM runs WHERE sequence = ?"
		return r.scanOne(r.db.QueryRow(query, seq), ref)
	}
	return r.Get(ref)
}

// Delete removes a run and, through the cascade, its dataset rows.
func (r *RunRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrRunNotFound, id)
	}

	return nil
}

// List returns runs newest first. A limit of zero or less returns every run.
func (r *RunRepository) List(limit int) ([]*models.Run, error) {
	query := "SELECT " + runColumns + " FROM runs ORDER BY sequence DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

func (r *RunRepository) scanOne(row *sql.Row, ref string) (*models.Run, error) {
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrRunNotFound, ref)
	}
	return run, err
}

func scanRun(s scanner) (*models.Run, error) {
	var (
		run        models.Run
		startedAt  time.Time
		finishedAt time.Time
	)

	err := s.Scan(
		&run.ID,
		&run.Sequence,
		&startedAt,
		&finishedAt,
		&run.Playlists,
		&run.Tracks,
		&run.Records,
		&run.Failures,
		&run.OutputPath,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	run.StartedAt = startedAt
	run.FinishedAt = finishedAt
	return &run, nil
}
