// Deezer public API implementation of [Service]
//
// Deezer is read from a public profile and cannot be written to.
package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/desertthunder/tunetx/internal/models"
	"github.com/desertthunder/tunetx/internal/shared"
)

const (
	deezerBaseURL = "https://api.deezer.com"

	// Title of the playlist Deezer keeps favourite tracks in.
	deezerLovedTracks = "Loved Tracks"

	// Deezer answers quota and lookup failures with HTTP 200 and an error code.
	deezerQuotaExceeded = 4
	deezerNoData        = 800
)

// Public quota: 50 requests every 5 seconds.
var deezerLimit = rate.Every(5 * time.Second / 50)

type deezerError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

type deezerTrack struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Artist struct {
		Name string `json:"name"`
	} `json:"artist"`
}

func (t deezerTrack) song() models.Song {
	return models.Song{ID: fmt.Sprint(t.ID), Name: t.Title, Artist: t.Artist.Name}
}

type deezerPlaylist struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	IsLovedTrack bool   `json:"is_loved_track"`
}

func (p deezerPlaylist) loved() bool {
	return p.IsLovedTrack || p.Title == deezerLovedTracks
}

type deezerPage[T any] struct {
	Data  *[]T         `json:"data"`
	Next  string       `json:"next"`
	Error *deezerError `json:"error"`
}

// DeezerService implements [Service] for a public Deezer profile.
type DeezerService struct {
	api    *transport
	userID string
}

// NewDeezerService creates a read-only Deezer service for userID.
func NewDeezerService(userID string, opts ...Option) *DeezerService {
	opts = append([]Option{WithRateLimit(deezerLimit, 50)}, opts...)
	return &DeezerService{
		api:    newTransport("deezer", deezerBaseURL, opts...),
		userID: strings.TrimSpace(userID),
	}
}

func (d *DeezerService) Descriptor() Descriptor { return DeezerDescriptor }

// CurrentUserID always fails: the public API has no user session.
func (d *DeezerService) CurrentUserID(context.Context) (string, error) {
	return "", fmt.Errorf("%w: deezer has no user session", shared.ErrNotAuthenticated)
}

func (d *DeezerService) requireUser() error {
	if d.userID == "" {
		return fmt.Errorf("%w: deezer user_id", shared.ErrMissingCredentials)
	}
	return nil
}

// ListPlaylists returns the profile's playlists without Loved Tracks.
func (d *DeezerService) ListPlaylists(ctx context.Context) ([]models.Playlist, error) {
	all, err := d.playlists(ctx)
	if err != nil {
		return nil, err
	}

	playlists := make([]models.Playlist, 0, len(all))
	for _, p := range all {
		if p.loved() {
			continue
		}
		playlists = append(playlists, models.Playlist{ID: fmt.Sprint(p.ID), Name: p.Title, Description: p.Description})
	}
	return playlists, nil
}

func (d *DeezerService) playlists(ctx context.Context) ([]deezerPlaylist, error) {
	if err := d.requireUser(); err != nil {
		return nil, err
	}
	return deezerCollect[deezerPlaylist](ctx, d.api, fmt.Sprintf("/user/%s/playlists?limit=100", url.PathEscape(d.userID)))
}

// ListPlaylistTracks pages through /playlist/{id}/tracks.
func (d *DeezerService) ListPlaylistTracks(ctx context.Context, playlistID string) ([]models.Song, error) {
	if playlistID == "" {
		return nil, fmt.Errorf("%w: empty playlist id", shared.ErrPlaylistNotFound)
	}

	tracks, err := deezerCollect[deezerTrack](ctx, d.api, fmt.Sprintf("/playlist/%s/tracks?limit=100", url.PathEscape(playlistID)))
	if err != nil {
		return nil, err
	}

	songs := make([]models.Song, len(tracks))
	for i, t := range tracks {
		songs[i] = t.song()
	}
	return songs, nil
}

// ListLikedSongs reads the tracks of the profile's Loved Tracks playlist. A profile without one has no liked songs.
func (d *DeezerService) ListLikedSongs(ctx context.Context) ([]models.Song, error) {
	all, err := d.playlists(ctx)
	if err != nil {
		return nil, err
	}

	for _, p := range all {
		if p.loved() {
			return d.ListPlaylistTracks(ctx, fmt.Sprint(p.ID))
		}
	}
	return []models.Song{}, nil
}

// SearchTrack tries a structured artist/track query first and falls back to "name artist".
func (d *DeezerService) SearchTrack(ctx context.Context, name, artist string) (*models.Song, error) {
	var queries []string
	if artist != "" {
		queries = append(queries, fmt.Sprintf(`artist:"%s" track:"%s"`, quoteless(artist), quoteless(name)))
	}
	queries = append(queries, strings.TrimSpace(name+" "+artist))

	for _, q := range queries {
		var page deezerPage[deezerTrack]
		if err := d.api.do(ctx, http.MethodGet, "/search?limit=1&q="+url.QueryEscape(q), nil, &page); err != nil {
			return nil, err
		}
		if err := page.err(); err != nil {
			return nil, err
		}
		if page.Data != nil && len(*page.Data) > 0 {
			song := (*page.Data)[0].song()
			return &song, nil
		}
	}
	return nil, nil
}

func (d *DeezerService) CreatePlaylist(context.Context, string, string) (string, error) {
	return "", fmt.Errorf("%w: deezer cannot create playlists", shared.ErrUnsupported)
}

func (d *DeezerService) AddTrack(context.Context, string, string) error {
	return fmt.Errorf("%w: deezer cannot add tracks", shared.ErrUnsupported)
}

func (d *DeezerService) AddTracks(context.Context, string, []string) error {
	return fmt.Errorf("%w: deezer cannot add tracks", shared.ErrUnsupported)
}

func (d *DeezerService) LikeTrack(context.Context, string) error {
	return fmt.Errorf("%w: deezer cannot like tracks", shared.ErrUnsupported)
}

func (d *DeezerService) LikeTracks(context.Context, []string) error {
	return fmt.Errorf("%w: deezer cannot like tracks", shared.ErrUnsupported)
}

func (p deezerPage[T]) err() error {
	if p.Error == nil {
		return nil
	}
	switch p.Error.Code {
	case deezerNoData:
		return fmt.Errorf("%w: deezer: %s", shared.ErrPlaylistNotFound, p.Error.Message)
	case deezerQuotaExceeded:
		return fmt.Errorf("%w: deezer quota: %s", shared.ErrServiceUnavailable, p.Error.Message)
	default:
		return fmt.Errorf("%w: deezer %s: %s", shared.ErrAPIRequest, p.Error.Type, p.Error.Message)
	}
}

// deezerCollect follows next links until the last page.
func deezerCollect[T any](ctx context.Context, api *transport, next string) ([]T, error) {
	items := []T{}
	for first := true; next != ""; first = false {
		var page deezerPage[T]
		if err := api.do(ctx, http.MethodGet, next, nil, &page); err != nil {
			return nil, err
		}
		if err := page.err(); err != nil {
			return nil, err
		}
		if page.Data == nil {
			if first {
				return nil, fmt.Errorf("%w: deezer %s returned no data", shared.ErrRetrievalFailed, next)
			}
			break
		}
		items = append(items, *page.Data...)
		next = page.Next
	}
	return items, nil
}

func quoteless(s string) string {
	return strings.ReplaceAll(s, `"`, "")
}
