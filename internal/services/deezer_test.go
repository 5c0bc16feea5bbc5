package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/tunetx/internal/shared"
)

func newTestDeezer(t *testing.T, handler http.HandlerFunc) (*DeezerService, string) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewDeezerService("42", WithBaseURL(server.URL), WithRetry(1, 0)), server.URL
}

func TestDeezerService(t *testing.T) {
	ctx := context.Background()

	t.Run("Descriptor", func(t *testing.T) {
		d := NewDeezerService("1").Descriptor()
		if d.SupportsAuth || d.CanBulkAdd || d.Token != "deezer" {
			t.Errorf("unexpected descriptor %+v", d)
		}
	})

	t.Run("Mutations are unsupported", func(t *testing.T) {
		svc := NewDeezerService("1")

		if _, err := svc.CreatePlaylist(ctx, "x", ""); !errors.Is(err, shared.ErrUnsupported) {
			t.Errorf("CreatePlaylist: expected ErrUnsupported, got %v", err)
		}
		if err := svc.AddTrack(ctx, "p", "s"); !errors.Is(err, shared.ErrUnsupported) {
			t.Errorf("AddTrack: expected ErrUnsupported, got %v", err)
		}
		if err := svc.AddTracks(ctx, "p", []string{"s"}); !errors.Is(err, shared.ErrUnsupported) {
			t.Errorf("AddTracks: expected ErrUnsupported, got %v", err)
		}
		if err := svc.LikeTrack(ctx, "s"); !errors.Is(err, shared.ErrUnsupported) {
			t.Errorf("LikeTrack: expected ErrUnsupported, got %v", err)
		}
		if err := svc.LikeTracks(ctx, []string{"s"}); !errors.Is(err, shared.ErrUnsupported) {
			t.Errorf("LikeTracks: expected ErrUnsupported, got %v", err)
		}
		if _, err := svc.CurrentUserID(ctx); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("CurrentUserID: expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("Missing user id", func(t *testing.T) {
		svc := NewDeezerService(" ")
		if _, err := svc.ListPlaylists(ctx); !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("ListPlaylists excludes Loved Tracks and follows next", func(t *testing.T) {
		var base string
		svc, url := newTestDeezer(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/user/42/playlists" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if r.URL.Query().Get("index") == "" {
				fmt.Fprintf(w, `{"data":[{"id":1,"title":"Loved Tracks","is_loved_track":true},{"id":2,"title":"Chill"}],"next":"%s/user/42/playlists?index=2"}`, base)
				return
			}
			w.Write([]byte(`{"data":[{"id":3,"title":"Focus","description":"work"}]}`))
		})
		base = url

		playlists, err := svc.ListPlaylists(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(playlists) != 2 || playlists[0].ID != "2" || playlists[1].Name != "Focus" {
			t.Errorf("unexpected playlists %+v", playlists)
		}
	})

	t.Run("ListPlaylistTracks", func(t *testing.T) {
		svc, _ := newTestDeezer(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/playlist/7/tracks" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			w.Write([]byte(`{"data":[{"id":100,"title":"Song","artist":{"name":"Band"}}]}`))
		})

		songs, err := svc.ListPlaylistTracks(ctx, "7")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(songs) != 1 || songs[0].ID != "100" || songs[0].Artist != "Band" {
			t.Errorf("unexpected songs %+v", songs)
		}
	})

	t.Run("ListPlaylistTracks maps no-data errors", func(t *testing.T) {
		svc, _ := newTestDeezer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"error":{"type":"DataException","message":"no data","code":800}}`))
		})

		if _, err := svc.ListPlaylistTracks(ctx, "404"); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
	})

	t.Run("ListPlaylistTracks without data", func(t *testing.T) {
		svc, _ := newTestDeezer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{}`))
		})

		if _, err := svc.ListPlaylistTracks(ctx, "7"); !errors.Is(err, shared.ErrRetrievalFailed) {
			t.Errorf("expected ErrRetrievalFailed, got %v", err)
		}
	})

	t.Run("ListLikedSongs reads Loved Tracks", func(t *testing.T) {
		svc, _ := newTestDeezer(t, func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/user/42/playlists":
				w.Write([]byte(`{"data":[{"id":2,"title":"Chill"},{"id":9,"title":"Loved Tracks"}]}`))
			case "/playlist/9/tracks":
				w.Write([]byte(`{"data":[{"id":1,"title":"Fav","artist":{"name":"A"}}]}`))
			default:
				t.Errorf("unexpected path %s", r.URL.Path)
			}
		})

		songs, err := svc.ListLikedSongs(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(songs) != 1 || songs[0].Name != "Fav" {
			t.Errorf("unexpected songs %+v", songs)
		}
	})

	t.Run("SearchTrack", func(t *testing.T) {
		t.Run("structured query hit", func(t *testing.T) {
			var queries []string
			svc, _ := newTestDeezer(t, func(w http.ResponseWriter, r *http.Request) {
				queries = append(queries, r.URL.Query().Get("q"))
				w.Write([]byte(`{"data":[{"id":5,"title":"Yesterday","artist":{"name":"The Beatles"}}]}`))
			})

			song, err := svc.SearchTrack(ctx, "Yesterday", "The Beatles")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if song == nil || song.ID != "5" {
				t.Errorf("unexpected song %+v", song)
			}
			if len(queries) != 1 || queries[0] != `artist:"The Beatles" track:"Yesterday"` {
				t.Errorf("unexpected queries %q", queries)
			}
		})

		t.Run("falls back to concatenated query", func(t *testing.T) {
			var queries []string
			svc, _ := newTestDeezer(t, func(w http.ResponseWriter, r *http.Request) {
				q := r.URL.Query().Get("q")
				queries = append(queries, q)
				if q == "Yesterday The Beatles" {
					w.Write([]byte(`{"data":[{"id":6,"title":"Yesterday"}]}`))
					return
				}
				w.Write([]byte(`{"data":[]}`))
			})

			song, err := svc.SearchTrack(ctx, "Yesterday", "The Beatles")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if song == nil || song.ID != "6" {
				t.Errorf("unexpected song %+v", song)
			}
			if len(queries) != 2 {
				t.Errorf("expected 2 queries, got %q", queries)
			}
		})

		t.Run("nothing found", func(t *testing.T) {
			svc, _ := newTestDeezer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"data":[]}`))
			})

			song, err := svc.SearchTrack(ctx, "Nothing", "Nobody")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if song != nil {
				t.Errorf("expected nil, got %+v", song)
			}
		})
	})
}
