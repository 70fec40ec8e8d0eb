package tasks

import (
	"sync"

	"github.com/desertthunder/moodset/internal/models"
)

// TrackSet is the run-wide set of claimed track ids and their labels. Safe for concurrent use.
type TrackSet struct {
	mu     sync.Mutex
	labels map[string]string
	order  []string
}

func NewTrackSet() *TrackSet {
	return &TrackSet{labels: make(map[string]string)}
}

// Claim inserts id with label unless id is already present. The check and insert are one atomic step,
// so exactly one concurrent caller wins for a given id.
func (s *TrackSet) Claim(id, label string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.labels[id]; ok {
		return false
	}
	s.labels[id] = label
	s.order = append(s.order, id)
	return true
}

// ClaimAll claims each id under label and returns how many were new.
func (s *TrackSet) ClaimAll(ids []string, label string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, id := range ids {
		if _, ok := s.labels[id]; ok {
			continue
		}
		s.labels[id] = label
		s.order = append(s.order, id)
		n++
	}
	return n
}

// Label returns the label id was claimed with.
func (s *TrackSet) Label(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	label, ok := s.labels[id]
	return label, ok
}

// IDs returns claimed ids in claim order.
func (s *TrackSet) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s *TrackSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// TrackIDs extracts ids from playlist items, dropping entries without a track or id.
func TrackIDs(items []models.PlaylistItem) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if item.Track == nil || item.Track.ID == "" {
			continue
		}
		ids = append(ids, item.Track.ID)
	}
	return ids
}
