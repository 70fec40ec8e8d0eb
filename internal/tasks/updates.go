package tasks

import (
	"fmt"

	"github.com/desertthunder/moodset/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Failed  bool   // Step failed and was skipped
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	Authenticate Phase = iota
	Discover
	Enumerate
	FetchFeatures
	FetchInfo
	JoinRecords
)

// Phases lists every phase in execution order.
var Phases = []Phase{Authenticate, Discover, Enumerate, FetchFeatures, FetchInfo, JoinRecords}

func (p Phase) String() string {
	switch p {
	case Authenticate:
		return "authenticate"
	case Discover:
		return "discover"
	case Enumerate:
		return "enumerate"
	case FetchFeatures:
		return "fetch_features"
	case FetchInfo:
		return "fetch_info"
	case JoinRecords:
		return "join"
	default:
		return ""
	}
}

// Title is the display name used by progress views.
func (p Phase) Title() string {
	switch p {
	case Authenticate:
		return "Authenticating"
	case Discover:
		return "Discovering playlists"
	case Enumerate:
		return "Listing tracks"
	case FetchFeatures:
		return "Fetching audio features"
	case FetchInfo:
		return "Fetching track info"
	case JoinRecords:
		return "Joining records"
	default:
		return p.String()
	}
}

func authenticatingUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Authenticate,
		Step:    0,
		Total:   1,
		Message: fmt.Sprintf("Authenticating with %s...", name),
	}
}

func authenticatedUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Authenticate,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Authenticated with %s", name),
	}
}

func searchedUpdate(step, total int, entry models.KeywordEntry, found int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Discover,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s: %q → %d playlists", step, total, entry.Label, entry.Phrase, found),
		Data:    entry,
	}
}

func listedUpdate(step, total int, ref models.PlaylistRef, tracks, claimed int) ProgressUpdate {
	msg := fmt.Sprintf("[%d/%d] %s (%s): %d tracks", step, total, ref.ID, ref.Label, tracks)
	if claimed >= 0 {
		msg = fmt.Sprintf("[%d/%d] %s (%s): %d tracks, %d new", step, total, ref.ID, ref.Label, tracks, claimed)
	}
	return ProgressUpdate{
		Phase:   Enumerate,
		Step:    step,
		Total:   total,
		Message: msg,
		Data:    ref,
	}
}

func batchUpdate(phase Phase, step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phase,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] batches", step, total),
	}
}

func failedUpdate(phase Phase, step, total int, err *PhaseError) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phase,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, err.Key, err.Err),
		Failed:  true,
		Data:    err,
	}
}

func joinedUpdate(records, tracks int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   JoinRecords,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Joined %d records from %d tracks", records, tracks),
	}
}
