package models

// FeatureRecord holds the numeric audio attributes of one track.
type FeatureRecord struct {
	ID               string  `json:"id"`
	Danceability     float64 `json:"danceability"`
	Energy           float64 `json:"energy"`
	Key              int     `json:"key"`
	Loudness         float64 `json:"loudness"`
	Mode             int     `json:"mode"`
	Speechiness      float64 `json:"speechiness"`
	Acousticness     float64 `json:"acousticness"`
	Instrumentalness float64 `json:"instrumentalness"`
	Liveness         float64 `json:"liveness"`
	Valence          float64 `json:"valence"`
	Tempo            float64 `json:"tempo"`
	DurationMS       int     `json:"duration_ms"`
	TimeSignature    int     `json:"time_signature"`
}

// InfoRecord carries descriptive metadata. A missing catalog entry normalizes to the zero value,
// whose fields are all nil.
type InfoRecord struct {
	ID         *string `json:"id"`
	Name       *string `json:"name"`
	Popularity *int    `json:"popularity"`
}

// NewInfoRecord builds a fully populated [InfoRecord].
func NewInfoRecord(id, name string, popularity int) InfoRecord {
	return InfoRecord{ID: &id, Name: &name, Popularity: &popularity}
}

// IsEmpty reports whether every field is nil.
func (r InfoRecord) IsEmpty() bool {
	return r.ID == nil && r.Name == nil && r.Popularity == nil
}

// MergedRecord is one labeled dataset row: audio features plus name and popularity.
type MergedRecord struct {
	FeatureRecord
	Name       string `json:"name"`
	Popularity int    `json:"popularity"`
	Label      string `json:"mood"`
}
