package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/moodset/internal/shared"
)

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprint(w, body)
}

// newTestCatalog starts a fake API with a token endpoint and the given routes, and returns an authenticated service.
func newTestCatalog(t *testing.T, routes map[string]http.HandlerFunc, mutate ...func(*SpotifyOpts)) (*SpotifyService, *httptest.Server) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"access_token":"test-token","token_type":"Bearer","expires_in":3600}`)
	})
	for pattern, h := range routes {
		mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
				t.Errorf("%s: expected bearer token, got %q", pattern, got)
			}
			h(w, r)
		})
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	opts := SpotifyOpts{
		ClientID:     "id",
		ClientSecret: "secret",
		BaseURL:      srv.URL,
		TokenURL:     srv.URL + "/token",
		RetryWait:    time.Millisecond,
	}
	for _, fn := range mutate {
		fn(&opts)
	}

	svc, err := NewSpotifyService(opts)
	if err != nil {
		t.Fatalf("NewSpotifyService() error = %v", err)
	}
	if err := svc.Authenticate(context.Background()); err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	return svc, srv
}

func TestSpotifyService(t *testing.T) {
	t.Run("NewSpotifyService", func(t *testing.T) {
		t.Run("With Valid Credentials", func(t *testing.T) {
			srv, err := NewSpotifyService(SpotifyOpts{ClientID: "id", ClientSecret: "secret"})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if srv.Name() != "Spotify" {
				t.Errorf("expected service name 'Spotify', got %s", srv.Name())
			}
			if srv.opts.BaseURL != spotifyBaseURL || srv.config.TokenURL != spotifyTokenURL {
				t.Errorf("expected public endpoints by default, got %s / %s", srv.opts.BaseURL, srv.config.TokenURL)
			}
		})

		t.Run("Missing Client ID", func(t *testing.T) {
			_, err := NewSpotifyService(SpotifyOpts{ClientSecret: "secret"})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Missing Client Secret", func(t *testing.T) {
			_, err := NewSpotifyService(SpotifyOpts{ClientID: "id"})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})
	})

	t.Run("Authenticate", func(t *testing.T) {
		t.Run("Rejected Credentials", func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusUnauthorized, `{"error":"invalid_client"}`)
			}))
			defer srv.Close()

			svc, _ := NewSpotifyService(SpotifyOpts{ClientID: "id", ClientSecret: "bad", TokenURL: srv.URL})
			err := svc.Authenticate(context.Background())
			if !errors.Is(err, shared.ErrAuthFailed) {
				t.Fatalf("expected ErrAuthFailed, got %v", err)
			}
		})

		t.Run("Requests Before Authenticate", func(t *testing.T) {
			svc, _ := NewSpotifyService(SpotifyOpts{ClientID: "id", ClientSecret: "secret"})
			_, err := svc.SearchPlaylists(context.Background(), "happy", 5)
			if !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}
		})
	})

	t.Run("SearchPlaylists", func(t *testing.T) {
		svc, _ := newTestCatalog(t, map[string]http.HandlerFunc{
			"GET /search": func(w http.ResponseWriter, r *http.Request) {
				q := r.URL.Query()
				if q.Get("q") != "feel good songs" || q.Get("type") != "playlist" || q.Get("limit") != "7" {
					t.Errorf("unexpected query %v", q)
				}
				if q.Get("market") != "US" {
					t.Errorf("expected market US, got %q", q.Get("market"))
				}
				writeJSON(w, http.StatusOK, `{"playlists":{"items":[
					{"id":"p1","name":"Good Vibes","owner":{"display_name":"alice"},"tracks":{"total":12}},
					null,
					{"id":"","name":"broken"},
					{"id":"p2","name":"Sunny"}
				]}}`)
			},
		}, func(o *SpotifyOpts) { o.Market = "US" })

		playlists, err := svc.SearchPlaylists(context.Background(), "feel good songs", 7)
		if err != nil {
			t.Fatalf("SearchPlaylists() error = %v", err)
		}
		if len(playlists) != 2 {
			t.Fatalf("expected 2 playlists, got %d: %+v", len(playlists), playlists)
		}
		if playlists[0].ID != "p1" || playlists[0].Owner != "alice" || playlists[0].TrackCount != 12 {
			t.Errorf("unexpected first playlist %+v", playlists[0])
		}
		if playlists[1].ID != "p2" {
			t.Errorf("expected p2 second, got %s", playlists[1].ID)
		}
	})

	t.Run("SearchPlaylists Invalid Arguments", func(t *testing.T) {
		svc, _ := newTestCatalog(t, nil)
		for _, tc := range []struct {
			query string
			limit int
		}{{"", 5}, {"happy", 0}, {"happy", 51}} {
			if _, err := svc.SearchPlaylists(context.Background(), tc.query, tc.limit); !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("SearchPlaylists(%q, %d) expected ErrInvalidArgument, got %v", tc.query, tc.limit, err)
			}
		}
	})

	t.Run("PlaylistItems Follows Pagination", func(t *testing.T) {
		var srvURL string
		svc, srv := newTestCatalog(t, map[string]http.HandlerFunc{
			"GET /playlists/p1/tracks": func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Query().Get("offset") == "" {
					if r.URL.Query().Get("limit") != "100" {
						t.Errorf("expected limit=100 on first page, got %q", r.URL.Query().Get("limit"))
					}
					writeJSON(w, http.StatusOK, fmt.Sprintf(`{"items":[
						{"track":{"id":"t1","name":"One","type":"track"}},
						{"track":null},
						{"track":{"id":null,"name":"Local","type":"track","is_local":true}}
					],"next":"%s/playlists/p1/tracks?offset=100&limit=100"}`, srvURL))
					return
				}
				writeJSON(w, http.StatusOK, `{"items":[
					{"track":{"id":"e1","name":"Podcast","type":"episode"}},
					{"track":{"id":"t2","name":"Two","type":"track"}}
				],"next":null}`)
			},
		})
		srvURL = srv.URL

		items, err := svc.PlaylistItems(context.Background(), "p1")
		if err != nil {
			t.Fatalf("PlaylistItems() error = %v", err)
		}
		if len(items) != 5 {
			t.Fatalf("expected 5 items across pages, got %d", len(items))
		}

		var ids []string
		for _, it := range items {
			if it.Track != nil {
				ids = append(ids, it.Track.ID)
			}
		}
		if strings.Join(ids, ",") != "t1,t2" {
			t.Errorf("expected tracks t1,t2, got %v", ids)
		}
	})

	t.Run("AudioFeatures", func(t *testing.T) {
		var calls atomic.Int32
		svc, _ := newTestCatalog(t, map[string]http.HandlerFunc{
			"GET /audio-features": func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				ids := strings.Split(r.URL.Query().Get("ids"), ",")
				var parts []string
				for _, id := range ids {
					if id == "missing" {
						parts = append(parts, "null")
						continue
					}
					parts = append(parts, fmt.Sprintf(`{"id":%q,"danceability":0.5,"energy":0.8,"key":5,"loudness":-6.2,"mode":1,"tempo":120.5,"duration_ms":200000,"time_signature":4}`, id))
				}
				writeJSON(w, http.StatusOK, `{"audio_features":[`+strings.Join(parts, ",")+`]}`)
			},
		})

		t.Run("Aligned With Nulls", func(t *testing.T) {
			records, err := svc.AudioFeatures(context.Background(), []string{"a", "missing", "b"})
			if err != nil {
				t.Fatalf("AudioFeatures() error = %v", err)
			}
			if len(records) != 3 {
				t.Fatalf("expected 3 records, got %d", len(records))
			}
			if records[0] == nil || records[0].ID != "a" || records[0].Tempo != 120.5 || records[0].Key != 5 {
				t.Errorf("unexpected first record %+v", records[0])
			}
			if records[1] != nil {
				t.Errorf("expected nil for missing id, got %+v", records[1])
			}
			if records[2] == nil || records[2].ID != "b" {
				t.Errorf("unexpected third record %+v", records[2])
			}
		})

		t.Run("Empty Input Makes No Request", func(t *testing.T) {
			before := calls.Load()
			records, err := svc.AudioFeatures(context.Background(), nil)
			if err != nil || len(records) != 0 {
				t.Fatalf("expected empty result, got %v, %v", records, err)
			}
			if calls.Load() != before {
				t.Error("expected no request for empty input")
			}
		})

		t.Run("Oversized Batch", func(t *testing.T) {
			before := calls.Load()
			ids := make([]string, shared.MaxFeatureBatch+1)
			for i := range ids {
				ids[i] = fmt.Sprintf("id%d", i)
			}
			if _, err := svc.AudioFeatures(context.Background(), ids); !errors.Is(err, shared.ErrBatchTooLarge) {
				t.Errorf("expected ErrBatchTooLarge, got %v", err)
			}
			if calls.Load() != before {
				t.Error("expected oversized batch to be rejected before sending")
			}
		})
	})

	t.Run("AudioFeatures Misaligned Response", func(t *testing.T) {
		svc, _ := newTestCatalog(t, map[string]http.HandlerFunc{
			"GET /audio-features": func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, `{"audio_features":[{"id":"a"}]}`)
			},
		})
		if _, err := svc.AudioFeatures(context.Background(), []string{"a", "b"}); !errors.Is(err, shared.ErrMisaligned) {
			t.Errorf("expected ErrMisaligned, got %v", err)
		}
	})

	t.Run("SeveralTracks", func(t *testing.T) {
		svc, _ := newTestCatalog(t, map[string]http.HandlerFunc{
			"GET /tracks": func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Query().Get("ids") != "t1,t2,t3" {
					t.Errorf("unexpected ids %q", r.URL.Query().Get("ids"))
				}
				writeJSON(w, http.StatusOK, `{"tracks":[
					{"id":"t1","name":"One","popularity":70},
					null,
					{"id":"t3","name":"Three","popularity":0}
				]}`)
			},
		})

		records, err := svc.SeveralTracks(context.Background(), []string{"t1", "t2", "t3"})
		if err != nil {
			t.Fatalf("SeveralTracks() error = %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("expected 3 records, got %d", len(records))
		}
		if records[0] == nil || *records[0].Name != "One" || *records[0].Popularity != 70 {
			t.Errorf("unexpected first record %+v", records[0])
		}
		if records[1] != nil {
			t.Errorf("expected nil for null track, got %+v", records[1])
		}
		if records[2] == nil || *records[2].Popularity != 0 {
			t.Errorf("expected zero popularity kept, got %+v", records[2])
		}

		ids := make([]string, shared.MaxInfoBatch+1)
		if _, err := svc.SeveralTracks(context.Background(), ids); !errors.Is(err, shared.ErrBatchTooLarge) {
			t.Errorf("expected ErrBatchTooLarge, got %v", err)
		}
	})

	t.Run("SeveralTracks keeps requested ids for relinked tracks", func(t *testing.T) {
		svc, _ := newTestCatalog(t, map[string]http.HandlerFunc{
			"GET /tracks": func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Query().Get("market") != "US" {
					t.Errorf("expected market=US, got %q", r.URL.Query().Get("market"))
				}
				writeJSON(w, http.StatusOK, `{"tracks":[
					{"id":"t1-relinked","name":"One","popularity":70,"linked_from":{"id":"t1"}},
					{"id":"t2","name":"Two","popularity":10}
				]}`)
			},
		}, func(o *SpotifyOpts) { o.Market = "US" })

		records, err := svc.SeveralTracks(context.Background(), []string{"t1", "t2"})
		if err != nil {
			t.Fatalf("SeveralTracks() error = %v", err)
		}
		for i, want := range []string{"t1", "t2"} {
			if records[i] == nil || records[i].ID == nil || *records[i].ID != want {
				t.Errorf("record %d: expected id %s, got %+v", i, want, records[i])
			}
		}
	})

	t.Run("SeveralTracks rejects a relink for another id", func(t *testing.T) {
		svc, _ := newTestCatalog(t, map[string]http.HandlerFunc{
			"GET /tracks": func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, `{"tracks":[{"id":"x","name":"X","linked_from":{"id":"t2"}}]}`)
			},
		}, func(o *SpotifyOpts) { o.Market = "US" })

		if _, err := svc.SeveralTracks(context.Background(), []string{"t1"}); !errors.Is(err, shared.ErrMisaligned) {
			t.Errorf("expected ErrMisaligned, got %v", err)
		}
	})

	t.Run("Status Mapping", func(t *testing.T) {
		tc := []struct {
			name   string
			status int
			want   error
		}{
			{name: "unauthorized", status: http.StatusUnauthorized, want: shared.ErrAuthFailed},
			{name: "rate limited", status: http.StatusTooManyRequests, want: shared.ErrRateLimited},
			{name: "server error", status: http.StatusInternalServerError, want: shared.ErrAPIRequest},
			{name: "not found", status: http.StatusNotFound, want: shared.ErrAPIRequest},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				svc, _ := newTestCatalog(t, map[string]http.HandlerFunc{
					"GET /search": func(w http.ResponseWriter, r *http.Request) {
						writeJSON(w, tt.status, `{"error":{"status":`+fmt.Sprint(tt.status)+`}}`)
					},
				})
				_, err := svc.SearchPlaylists(context.Background(), "happy", 5)
				if !errors.Is(err, tt.want) {
					t.Errorf("expected %v, got %v", tt.want, err)
				}
			})
		}
	})

	t.Run("Retries Rate Limited Requests", func(t *testing.T) {
		var calls atomic.Int32
		svc, _ := newTestCatalog(t, map[string]http.HandlerFunc{
			"GET /search": func(w http.ResponseWriter, r *http.Request) {
				if calls.Add(1) == 1 {
					w.Header().Set("Retry-After", "0")
					writeJSON(w, http.StatusTooManyRequests, `{}`)
					return
				}
				writeJSON(w, http.StatusOK, `{"playlists":{"items":[{"id":"p1"}]}}`)
			},
		}, func(o *SpotifyOpts) { o.MaxRetries = 2 })

		playlists, err := svc.SearchPlaylists(context.Background(), "happy", 5)
		if err != nil {
			t.Fatalf("expected retry to succeed, got %v", err)
		}
		if len(playlists) != 1 || calls.Load() != 2 {
			t.Errorf("expected 1 playlist after 2 calls, got %d after %d", len(playlists), calls.Load())
		}
	})

	t.Run("Request Timeout", func(t *testing.T) {
		svc, _ := newTestCatalog(t, map[string]http.HandlerFunc{
			"GET /search": func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
				writeJSON(w, http.StatusOK, `{"playlists":{"items":[]}}`)
			},
		}, func(o *SpotifyOpts) { o.Timeout = 50 * time.Millisecond })

		_, err := svc.SearchPlaylists(context.Background(), "happy", 5)
		if !errors.Is(err, shared.ErrAPIRequest) || !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected timeout wrapped in ErrAPIRequest, got %v", err)
		}
	})

	t.Run("Decode Failure", func(t *testing.T) {
		svc, _ := newTestCatalog(t, map[string]http.HandlerFunc{
			"GET /tracks": func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, `{"tracks": [`)
			},
		})
		_, err := svc.SeveralTracks(context.Background(), []string{"t1"})
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			t.Error("decode errors should be flattened into the message")
		}
	})
}
