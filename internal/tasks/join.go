package tasks

import (
	"github.com/desertthunder/moodset/internal/models"
)

// LabelLookup resolves the label a track id was claimed with. [TrackSet] implements it.
type LabelLookup interface {
	Label(id string) (string, bool)
}

// LabelMap is a fixed [LabelLookup].
type LabelMap map[string]string

func (m LabelMap) Label(id string) (string, bool) {
	label, ok := m[id]
	return label, ok
}

// NormalizeInfo replaces nil entries with an empty [models.InfoRecord], keeping length and order.
func NormalizeInfo(records []*models.InfoRecord) []models.InfoRecord {
	out := make([]models.InfoRecord, len(records))
	for i, r := range records {
		if r != nil {
			out[i] = *r
		}
	}
	return out
}

// Join inner-joins features and infos on track id and attaches each id's label.
//
// Nil features and infos without an id never match. Rows come out in feature order; when the same id
// appears twice on either side only its first occurrence is used. Ids without a label are dropped.
func Join(features []*models.FeatureRecord, infos []models.InfoRecord, labels LabelLookup) []models.MergedRecord {
	byID := make(map[string]models.InfoRecord, len(infos))
	for _, info := range infos {
		if info.ID == nil || *info.ID == "" {
			continue
		}
		if _, ok := byID[*info.ID]; !ok {
			byID[*info.ID] = info
		}
	}

	records := make([]models.MergedRecord, 0, min(len(features), len(byID)))
	emitted := make(map[string]bool, len(features))
	for _, f := range features {
		if f == nil || f.ID == "" || emitted[f.ID] {
			continue
		}
		info, ok := byID[f.ID]
		if !ok {
			continue
		}
		label, ok := labels.Label(f.ID)
		if !ok {
			continue
		}

		record := models.MergedRecord{FeatureRecord: *f, Label: label}
		if info.Name != nil {
			record.Name = *info.Name
		}
		if info.Popularity != nil {
			record.Popularity = *info.Popularity
		}
		records = append(records, record)
		emitted[f.ID] = true
	}
	return records
}

// CountByLabel tallies records per label.
func CountByLabel(records []models.MergedRecord) map[string]int {
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.Label]++
	}
	return counts
}
