// package formatter writes the labeled dataset (CSV, JSON), the run manifest, and terminal tables
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/desertthunder/moodset/internal/models"
	"github.com/desertthunder/moodset/internal/shared"
)

const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// Columns is the dataset header, in output order.
var Columns = []string{
	"id", "name", "popularity",
	"danceability", "energy", "key", "loudness", "mode", "speechiness", "acousticness",
	"instrumentalness", "liveness", "valence", "tempo", "duration_ms", "time_signature",
	"mood",
}

// ParseFormat normalizes a format name. An empty name falls back to the path's extension, then CSV.
func ParseFormat(format, path string) (string, error) {
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(path), ".")
	}
	switch strings.ToLower(format) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unsupported format %q (use csv or json)", shared.ErrInvalidArgument, format)
	}
}

func row(r models.MergedRecord) []string {
	float := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return []string{
		r.ID,
		r.Name,
		strconv.Itoa(r.Popularity),
		float(r.Danceability),
		float(r.Energy),
		strconv.Itoa(r.Key),
		float(r.Loudness),
		strconv.Itoa(r.Mode),
		float(r.Speechiness),
		float(r.Acousticness),
		float(r.Instrumentalness),
		float(r.Liveness),
		float(r.Valence),
		float(r.Tempo),
		strconv.Itoa(r.DurationMS),
		strconv.Itoa(r.TimeSignature),
		r.Label,
	}
}

// ExportToCSV renders records with the [Columns] header, one row per record.
func ExportToCSV(records []models.MergedRecord) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(Columns); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, r := range records {
		if err := writer.Write(row(r)); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToJSON renders records as an indented JSON array. No records gives `[]`.
func ExportToJSON(records []models.MergedRecord) ([]byte, error) {
	if records == nil {
		records = []models.MergedRecord{}
	}
	return shared.MarshalJSON(records, true)
}

// Export dispatches on format.
func Export(records []models.MergedRecord, format string) ([]byte, error) {
	switch format {
	case FormatCSV:
		return ExportToCSV(records)
	case FormatJSON:
		return ExportToJSON(records)
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", shared.ErrInvalidArgument, format)
	}
}

// WriteDataset writes records to path in format, creating parent directories.
func WriteDataset(records []models.MergedRecord, path, format string) error {
	if path == "" {
		return fmt.Errorf("%w: output path is required", shared.ErrMissingArgument)
	}

	data, err := Export(records, format)
	if err != nil {
		return fmt.Errorf("failed to generate %s: %w", format, err)
	}

	if err := writeFile(path, data); err != nil {
		return fmt.Errorf("failed to write dataset: %w", err)
	}
	return nil
}

// Manifest describes one written dataset.
type Manifest struct {
	Run      models.Run `json:"run"`
	Format   string     `json:"format"`
	Columns  []string   `json:"columns"`
	Duration string     `json:"duration"`
	Failures []string   `json:"failures,omitempty"`
}

// ManifestPath returns the manifest location for a dataset: `data/out.csv` → `data/out.manifest.json`.
func ManifestPath(datasetPath string) string {
	return strings.TrimSuffix(datasetPath, filepath.Ext(datasetPath)) + ".manifest.json"
}

// WriteManifest writes a JSON [Manifest] for run to path.
func WriteManifest(run models.Run, failures []string, format, path string) error {
	manifest := Manifest{
		Run:      run,
		Format:   format,
		Columns:  Columns,
		Duration: shared.FormatDuration(run.Duration()),
		Failures: failures,
	}

	data, err := shared.MarshalJSON(manifest, true)
	if err != nil {
		return fmt.Errorf("failed to generate manifest: %w", err)
	}

	if err := writeFile(path, data); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

// SummaryTable renders per-label record counts with a total row.
func SummaryTable(run models.Run) string {
	labels := make([]string, 0, len(run.LabelCounts))
	for label := range run.LabelCounts {
		labels = append(labels, label)
	}
	slices.Sort(labels)

	rows := make([][]string, 0, len(labels)+1)
	for _, label := range labels {
		rows = append(rows, []string{label, strconv.Itoa(run.LabelCounts[label])})
	}
	rows = append(rows, []string{"total", strconv.Itoa(run.Records)})

	return RenderTable([]string{"Mood", "Records"}, rows, []Alignment{AlignLeft, AlignRight})
}

// RunsTable renders one row per persisted run.
func RunsTable(runs []models.Run) string {
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			strconv.Itoa(r.Sequence),
			r.ID,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			strconv.Itoa(r.Playlists),
			strconv.Itoa(r.Tracks),
			strconv.Itoa(r.Records),
			strconv.Itoa(r.Failures),
		})
	}
	return RenderTable(
		[]string{"#", "ID", "Started", "Playlists", "Tracks", "Records", "Failures"},
		rows,
		[]Alignment{AlignRight, AlignLeft, AlignLeft, AlignRight, AlignRight, AlignRight, AlignRight},
	)
}

// KeywordsTable renders the keyword catalog, one row per phrase.
func KeywordsTable(catalog *models.KeywordCatalog) string {
	entries := catalog.Entries()
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.Label, e.Phrase})
	}
	return RenderTable([]string{"Mood", "Phrase"}, rows, nil)
}
