package testing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/desertthunder/moodset/internal/models"
)

// MockCatalog is an in-memory [services.Catalog]. Unknown phrases and playlists return empty results;
// unknown ids in batch calls come back as nil entries.
type MockCatalog struct {
	Playlists map[string][]models.PlaylistSummary // phrase → search results
	Items     map[string][]models.PlaylistItem    // playlist id → entries
	Features  map[string]*models.FeatureRecord
	Infos     map[string]*models.InfoRecord

	AuthErr     error
	SearchErr   map[string]error // phrase → error
	ItemsErr    map[string]error // playlist id → error
	FeaturesErr error
	InfoErr     error
	ItemsDelay  map[string]time.Duration // playlist id → delay before responding

	// ShortFeatures drops the last entry of every feature response.
	ShortFeatures bool

	mu             sync.Mutex
	calls          map[string]int
	featureBatches [][]string
	infoBatches    [][]string
	inflight       int
	maxInflight    int
}

func NewMockCatalog() *MockCatalog {
	return &MockCatalog{
		Playlists: make(map[string][]models.PlaylistSummary),
		Items:     make(map[string][]models.PlaylistItem),
		Features:  make(map[string]*models.FeatureRecord),
		Infos:     make(map[string]*models.InfoRecord),
		SearchErr: make(map[string]error),
		ItemsErr:  make(map[string]error),
	}
}

func (m *MockCatalog) Name() string { return "mock" }

func (m *MockCatalog) begin(method string) func() {
	m.mu.Lock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[method]++
	m.inflight++
	m.maxInflight = max(m.maxInflight, m.inflight)
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		m.inflight--
		m.mu.Unlock()
	}
}

// Calls returns how many times method was invoked.
func (m *MockCatalog) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

// MaxInflight is the highest number of overlapping calls observed.
func (m *MockCatalog) MaxInflight() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxInflight
}

// FeatureBatches returns the id lists sent to AudioFeatures, in call order.
func (m *MockCatalog) FeatureBatches() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]string(nil), m.featureBatches...)
}

// InfoBatches returns the id lists sent to SeveralTracks, in call order.
func (m *MockCatalog) InfoBatches() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]string(nil), m.infoBatches...)
}

func (m *MockCatalog) Authenticate(ctx context.Context) error {
	defer m.begin("Authenticate")()
	return m.AuthErr
}

func (m *MockCatalog) SearchPlaylists(ctx context.Context, query string, limit int) ([]models.PlaylistSummary, error) {
	defer m.begin("SearchPlaylists")()
	if err := m.SearchErr[query]; err != nil {
		return nil, err
	}
	results := m.Playlists[query]
	if len(results) > limit {
		results = results[:limit]
	}
	return append([]models.PlaylistSummary(nil), results...), nil
}

func (m *MockCatalog) PlaylistItems(ctx context.Context, playlistID string) ([]models.PlaylistItem, error) {
	defer m.begin("PlaylistItems")()
	if d := m.ItemsDelay[playlistID]; d > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(d):
		}
	}
	if err := m.ItemsErr[playlistID]; err != nil {
		return nil, err
	}
	return append([]models.PlaylistItem(nil), m.Items[playlistID]...), nil
}

func (m *MockCatalog) AudioFeatures(ctx context.Context, ids []string) ([]*models.FeatureRecord, error) {
	defer m.begin("AudioFeatures")()
	m.mu.Lock()
	m.featureBatches = append(m.featureBatches, append([]string(nil), ids...))
	m.mu.Unlock()

	if m.FeaturesErr != nil {
		return nil, m.FeaturesErr
	}
	out := make([]*models.FeatureRecord, len(ids))
	for i, id := range ids {
		out[i] = m.Features[id]
	}
	if m.ShortFeatures && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (m *MockCatalog) SeveralTracks(ctx context.Context, ids []string) ([]*models.InfoRecord, error) {
	defer m.begin("SeveralTracks")()
	m.mu.Lock()
	m.infoBatches = append(m.infoBatches, append([]string(nil), ids...))
	m.mu.Unlock()

	if m.InfoErr != nil {
		return nil, m.InfoErr
	}
	out := make([]*models.InfoRecord, len(ids))
	for i, id := range ids {
		out[i] = m.Infos[id]
	}
	return out, nil
}

// AddTrack registers features and info for id so batch calls return data for it.
func (m *MockCatalog) AddTrack(id, name string, popularity int) {
	m.Features[id] = Feature(id)
	info := models.NewInfoRecord(id, name, popularity)
	m.Infos[id] = &info
}

// AddPlaylist registers a search result for phrase and the playlist's track ids.
func (m *MockCatalog) AddPlaylist(phrase, playlistID string, trackIDs ...string) {
	m.Playlists[phrase] = append(m.Playlists[phrase], models.PlaylistSummary{ID: playlistID, Name: playlistID})
	m.Items[playlistID] = Items(trackIDs...)
}

// Items builds playlist entries for ids; an empty id becomes an entry without a track.
func Items(ids ...string) []models.PlaylistItem {
	items := make([]models.PlaylistItem, len(ids))
	for i, id := range ids {
		if id != "" {
			items[i] = models.PlaylistItem{Track: &models.TrackRef{ID: id, Name: "track " + id}}
		}
	}
	return items
}

// Feature returns a feature record whose values are derived from id's length.
func Feature(id string) *models.FeatureRecord {
	n := float64(len(id)%10) / 10
	return &models.FeatureRecord{
		ID:               id,
		Danceability:     n,
		Energy:           1 - n,
		Key:              len(id) % 12,
		Loudness:         -5.5,
		Mode:             1,
		Speechiness:      0.05,
		Acousticness:     0.2,
		Instrumentalness: 0,
		Liveness:         0.1,
		Valence:          n,
		Tempo:            120,
		DurationMS:       180000,
		TimeSignature:    4,
	}
}

// IDs returns n ids with the given prefix: prefix0, prefix1, ...
func IDs(prefix string, n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("%s%d", prefix, i)
	}
	return ids
}
