package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodset/internal/metrics"
	"github.com/desertthunder/moodset/internal/models"
	"github.com/desertthunder/moodset/internal/shared"
	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	playlistPageSize = 100
	playlistFields   = "items(track(id,name,type,is_local)),next"
)

// Owner is the account that published a playlist.
type Owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type simplePlaylistTrack struct {
	Total int `json:"total"`
}

// SpotifySimplePlaylist represents a simplified playlist object (used in search results).
type SpotifySimplePlaylist struct {
	ID     string              `json:"id"`
	Name   string              `json:"name"`
	Owner  Owner               `json:"owner"`
	Tracks simplePlaylistTrack `json:"tracks"`
}

type spotifySearchResponse struct {
	Playlists struct {
		Items []*SpotifySimplePlaylist `json:"items"`
		Next  *string                  `json:"next"`
	} `json:"playlists"`
}

// SpotifyPlaylistTrack is one playlist entry. Track is null for removed items.
type SpotifyPlaylistTrack struct {
	Track *SpotifyTrack `json:"track"`
}

// SpotifyPlaylistPage is a page of playlist entries.
type SpotifyPlaylistPage struct {
	Items []SpotifyPlaylistTrack `json:"items"`
	Next  *string                `json:"next"`
}

// SpotifyTrack represents the track fields the collector reads.
type SpotifyTrack struct {
	ID         *string `json:"id"`
	Name       *string `json:"name"`
	Popularity *int    `json:"popularity"`
	Type       string  `json:"type"`
	IsLocal    bool    `json:"is_local"`
	// LinkedFrom is set when a market was given and the catalog relinked the requested track.
	LinkedFrom *SpotifyLinkedTrack `json:"linked_from"`
}

// SpotifyLinkedTrack is the originally requested track behind a relinked one.
type SpotifyLinkedTrack struct {
	ID string `json:"id"`
}

// SpotifyAudioFeatures mirrors the audio-features object.
type SpotifyAudioFeatures struct {
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

// SpotifyOpts configures a [SpotifyService]. Zero values fall back to the public endpoints and no throttling.
type SpotifyOpts struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	TokenURL     string
	Market       string
	RateLimit    float64       // requests per second; 0 disables the limiter
	MaxRetries   int           // retries on 429 and 5xx
	RetryWait    time.Duration // initial backoff between retries
	Timeout      time.Duration // per-request deadline
	HTTPClient   *http.Client  // base transport for token and API calls
	Logger       *log.Logger   // receives transport warnings; defaults to stderr
}

// SpotifyService implements [Catalog] against the Spotify Web API using the client-credentials grant.
type SpotifyService struct {
	opts    SpotifyOpts
	config  *clientcredentials.Config
	limiter *rate.Limiter

	mu     sync.RWMutex
	client *resty.Client
}

// NewSpotifyService validates credentials and prepares an unauthenticated client.
func NewSpotifyService(opts SpotifyOpts) (*SpotifyService, error) {
	if opts.ClientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}
	if opts.ClientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}
	if opts.BaseURL == "" {
		opts.BaseURL = spotifyBaseURL
	}
	if opts.TokenURL == "" {
		opts.TokenURL = spotifyTokenURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.RetryWait <= 0 {
		opts.RetryWait = 500 * time.Millisecond
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	return &SpotifyService{
		opts: opts,
		config: &clientcredentials.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			TokenURL:     opts.TokenURL,
		},
		limiter: limiter,
	}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// Authenticate exchanges the client credentials for a token and builds the API client.
// The token source refreshes on expiry for the lifetime of the service.
func (s *SpotifyService) Authenticate(ctx context.Context) error {
	tokenCtx, cancel := s.requestContext(ctx)
	defer cancel()

	token, err := s.config.Token(context.WithValue(tokenCtx, oauth2.HTTPClient, s.opts.HTTPClient))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	base := context.WithValue(context.Background(), oauth2.HTTPClient, s.opts.HTTPClient)
	src := oauth2.ReuseTokenSource(token, s.config.TokenSource(base))

	client := resty.NewWithClient(oauth2.NewClient(base, src)).
		SetBaseURL(strings.TrimRight(s.opts.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetLogger(shared.WithLogger(s.opts.Logger, "catalog", s.Name())).
		SetRetryCount(s.opts.MaxRetries).
		SetRetryWaitTime(s.opts.RetryWait).
		SetRetryMaxWaitTime(8 * s.opts.RetryWait).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if r == nil {
				return false
			}
			code := r.StatusCode()
			return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
		}).
		SetRetryAfter(retryAfter).
		OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
			return s.limiter.Wait(r.Context())
		})

	s.mu.Lock()
	s.client = client
	s.mu.Unlock()
	return nil
}

// retryAfter honors a Retry-After header in seconds, else defers to resty's backoff.
func retryAfter(_ *resty.Client, r *resty.Response) (time.Duration, error) {
	if r == nil {
		return 0, nil
	}
	if secs, err := strconv.Atoi(r.Header().Get("Retry-After")); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second, nil
	}
	return 0, nil
}

func (s *SpotifyService) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.Timeout > 0 {
		return context.WithTimeout(ctx, s.opts.Timeout)
	}
	return context.WithCancel(ctx)
}

// doRequest performs a GET against endpoint (relative to the base URL, or absolute for pagination)
// and decodes the JSON body into result.
func (s *SpotifyService) doRequest(ctx context.Context, name, endpoint string, params url.Values, result any) error {
	s.mu.RLock()
	client := s.client
	s.mu.RUnlock()
	if client == nil {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	ctx, cancel := s.requestContext(ctx)
	defer cancel()

	start := time.Now()
	resp, err := client.R().
		SetContext(ctx).
		SetQueryParamsFromValues(params).
		Get(endpoint)

	status := 0
	if resp != nil && resp.RawResponse != nil {
		status = resp.StatusCode()
	}
	metrics.ObserveCatalogRequest(name, status, time.Since(start))

	if err != nil {
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) {
			return fmt.Errorf("%w: token refresh: %v", shared.ErrAuthFailed, err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w: %s: %w", shared.ErrAPIRequest, name, ctxErr)
		}
		return fmt.Errorf("%w: %s: %v", shared.ErrAPIRequest, name, err)
	}

	switch code := resp.StatusCode(); {
	case code == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s returned 401", shared.ErrAuthFailed, name)
	case code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s returned 429", shared.ErrRateLimited, name)
	case code < 200 || code >= 300:
		return fmt.Errorf("%w: %s returned status %d", shared.ErrAPIRequest, name, code)
	}

	if result != nil {
		if err := json.Unmarshal(resp.Body(), result); err != nil {
			return fmt.Errorf("%w: %s: failed to decode response: %v", shared.ErrAPIRequest, name, err)
		}
	}
	return nil
}

// SearchPlaylists runs a playlist search for query.
func (s *SpotifyService) SearchPlaylists(ctx context.Context, query string, limit int) ([]models.PlaylistSummary, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty search query", shared.ErrInvalidArgument)
	}
	if limit < 1 || limit > shared.MaxSearchLimit {
		return nil, fmt.Errorf("%w: search limit must be within 1..%d", shared.ErrInvalidArgument, shared.MaxSearchLimit)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "playlist")
	params.Set("limit", strconv.Itoa(limit))
	if s.opts.Market != "" {
		params.Set("market", s.opts.Market)
	}

	var response spotifySearchResponse
	if err := s.doRequest(ctx, "search", "/search", params, &response); err != nil {
		return nil, err
	}

	playlists := make([]models.PlaylistSummary, 0, len(response.Playlists.Items))
	for _, item := range response.Playlists.Items {
		if item == nil || item.ID == "" {
			continue
		}
		playlists = append(playlists, models.PlaylistSummary{
			ID:         item.ID,
			Name:       item.Name,
			Owner:      item.Owner.DisplayName,
			TrackCount: item.Tracks.Total,
		})
	}
	return playlists, nil
}

// PlaylistItems pages through a playlist's entries. Removed, local, and non-track entries come back with a nil Track.
func (s *SpotifyService) PlaylistItems(ctx context.Context, playlistID string) ([]models.PlaylistItem, error) {
	if playlistID == "" {
		return nil, fmt.Errorf("%w: empty playlist id", shared.ErrInvalidArgument)
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(playlistPageSize))
	params.Set("fields", playlistFields)
	if s.opts.Market != "" {
		params.Set("market", s.opts.Market)
	}

	endpoint := "/playlists/" + url.PathEscape(playlistID) + "/tracks"
	var items []models.PlaylistItem
	for endpoint != "" {
		var page SpotifyPlaylistPage
		if err := s.doRequest(ctx, "playlist_items", endpoint, params, &page); err != nil {
			return nil, err
		}

		for _, entry := range page.Items {
			items = append(items, models.PlaylistItem{Track: toTrackRef(entry.Track)})
		}

		endpoint, params = "", nil
		if page.Next != nil {
			endpoint = *page.Next
		}
	}
	return items, nil
}

func toTrackRef(t *SpotifyTrack) *models.TrackRef {
	if t == nil || t.ID == nil || *t.ID == "" || t.IsLocal {
		return nil
	}
	if t.Type != "" && t.Type != "track" {
		return nil
	}
	ref := &models.TrackRef{ID: *t.ID}
	if t.Name != nil {
		ref.Name = *t.Name
	}
	return ref
}

// AudioFeatures fetches audio attributes for ids, aligned with the request.
func (s *SpotifyService) AudioFeatures(ctx context.Context, ids []string) ([]*models.FeatureRecord, error) {
	if len(ids) == 0 {
		return []*models.FeatureRecord{}, nil
	}
	if len(ids) > shared.MaxFeatureBatch {
		return nil, fmt.Errorf("%w: %d ids for audio features (max %d)", shared.ErrBatchTooLarge, len(ids), shared.MaxFeatureBatch)
	}

	params := url.Values{}
	params.Set("ids", strings.Join(ids, ","))

	var response struct {
		AudioFeatures []*SpotifyAudioFeatures `json:"audio_features"`
	}
	if err := s.doRequest(ctx, "audio_features", "/audio-features", params, &response); err != nil {
		return nil, err
	}
	if len(response.AudioFeatures) != len(ids) {
		return nil, fmt.Errorf("%w: audio features returned %d entries for %d ids", shared.ErrMisaligned, len(response.AudioFeatures), len(ids))
	}

	records := make([]*models.FeatureRecord, len(ids))
	for i, f := range response.AudioFeatures {
		if f == nil {
			continue
		}
		record := models.FeatureRecord(*f)
		records[i] = &record
	}
	return records, nil
}

// SeveralTracks fetches name and popularity for ids, aligned with the request.
func (s *SpotifyService) SeveralTracks(ctx context.Context, ids []string) ([]*models.InfoRecord, error) {
	if len(ids) == 0 {
		return []*models.InfoRecord{}, nil
	}
	if len(ids) > shared.MaxInfoBatch {
		return nil, fmt.Errorf("%w: %d ids for tracks (max %d)", shared.ErrBatchTooLarge, len(ids), shared.MaxInfoBatch)
	}

	params := url.Values{}
	params.Set("ids", strings.Join(ids, ","))
	if s.opts.Market != "" {
		params.Set("market", s.opts.Market)
	}

	var response struct {
		Tracks []*SpotifyTrack `json:"tracks"`
	}
	if err := s.doRequest(ctx, "tracks", "/tracks", params, &response); err != nil {
		return nil, err
	}
	if len(response.Tracks) != len(ids) {
		return nil, fmt.Errorf("%w: tracks returned %d entries for %d ids", shared.ErrMisaligned, len(response.Tracks), len(ids))
	}

	records := make([]*models.InfoRecord, len(ids))
	for i, t := range response.Tracks {
		if t == nil {
			continue
		}
		// Relinked tracks carry a substitute id; keep the requested one so the join still matches.
		id := ids[i]
		if t.LinkedFrom != nil && t.LinkedFrom.ID != "" && t.LinkedFrom.ID != id {
			return nil, fmt.Errorf("%w: tracks entry %d relinked from %s, requested %s", shared.ErrMisaligned, i, t.LinkedFrom.ID, id)
		}
		records[i] = &models.InfoRecord{ID: &id, Name: t.Name, Popularity: t.Popularity}
	}
	return records, nil
}
