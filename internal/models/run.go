package models

import (
	"fmt"
	"time"
)

// Run summarizes one collection run as stored in the runs table.
type Run struct {
	ID          string         `json:"id"`
	Sequence    int            `json:"sequence"`
	StartedAt   time.Time      `json:"started_at"`
	FinishedAt  time.Time      `json:"finished_at"`
	Playlists   int            `json:"playlists"`
	Tracks      int            `json:"tracks"`
	Records     int            `json:"records"`
	Failures    int            `json:"failures"`
	OutputPath  string         `json:"output_path,omitempty"`
	LabelCounts map[string]int `json:"label_counts,omitempty"`
}

// Duration is the wall time between start and finish.
func (r Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

func (r Run) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("run id is required")
	}
	if r.FinishedAt.Before(r.StartedAt) {
		return fmt.Errorf("run %s finished before it started", r.ID)
	}
	if r.Records > r.Tracks {
		return fmt.Errorf("run %s has more records (%d) than tracks (%d)", r.ID, r.Records, r.Tracks)
	}
	return nil
}
