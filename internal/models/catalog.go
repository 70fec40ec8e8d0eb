package models

// PlaylistSummary is a playlist as returned by keyword search.
type PlaylistSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Owner      string `json:"owner,omitempty"`
	TrackCount int    `json:"track_count"`
}

// PlaylistRef ties a discovered playlist to the label and phrase that found it.
type PlaylistRef struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Phrase string `json:"phrase"`
}

// TrackRef identifies a track inside a playlist listing.
type TrackRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// PlaylistItem is one playlist entry. Track is nil for removed, local, or non-music items.
type PlaylistItem struct {
	Track *TrackRef `json:"track"`
}
