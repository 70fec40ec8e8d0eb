// package services defines the [Catalog] interface for the remote music catalog
package services

import (
	"context"

	"github.com/desertthunder/moodset/internal/models"
)

// Catalog is the remote music catalog a dataset is collected from.
//
// Batch methods return one entry per requested id, in request order, with nil where the catalog has no data.
type Catalog interface {
	// Authenticate obtains an application token. Failures wrap [shared.ErrAuthFailed].
	Authenticate(ctx context.Context) error

	// SearchPlaylists returns up to limit playlists matching query, skipping empty result slots.
	SearchPlaylists(ctx context.Context, query string, limit int) ([]models.PlaylistSummary, error)

	// PlaylistItems lists every entry of a playlist, following pagination.
	PlaylistItems(ctx context.Context, playlistID string) ([]models.PlaylistItem, error)

	// AudioFeatures fetches audio attributes for up to [shared.MaxFeatureBatch] ids.
	AudioFeatures(ctx context.Context, ids []string) ([]*models.FeatureRecord, error)

	// SeveralTracks fetches name and popularity for up to [shared.MaxInfoBatch] ids.
	SeveralTracks(ctx context.Context, ids []string) ([]*models.InfoRecord, error)

	// Name returns the catalog's display name (e.g., "Spotify")
	Name() string
}
