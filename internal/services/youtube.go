// YouTube Music implementation of [Service]
//
// Communicates with the FastAPI proxy wrapping the ytmusicapi library.
package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/tunetx/internal/models"
	"github.com/desertthunder/tunetx/internal/shared"
)

const defaultYTBaseURL = "http://127.0.0.1:8080"

// Library ids that stand for liked songs and automatic mixes rather than user playlists.
var youtubeReservedPlaylists = map[string]struct{}{
	"LM":   {},
	"RDPN": {},
	"SE":   {},
}

type youtubeArtist struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

type youtubeTrack struct {
	VideoID string          `json:"videoId"`
	Title   string          `json:"title"`
	Artists []youtubeArtist `json:"artists"`
}

func (t youtubeTrack) song() models.Song {
	s := models.Song{ID: t.VideoID, Name: t.Title}
	if len(t.Artists) > 0 {
		s.Artist = t.Artists[0].Name
	}
	return s
}

type youtubePlaylist struct {
	PlaylistID  string `json:"playlistId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Count       int    `json:"count"`
}

type youtubeTrackList struct {
	ID     string          `json:"id"`
	Title  string          `json:"title"`
	Tracks *[]youtubeTrack `json:"tracks"`
}

// YouTubeService implements [Service] through the ytmusicapi proxy.
type YouTubeService struct {
	api      *transport
	authFile string
}

// NewYouTubeService creates a YouTube Music service for the proxy at baseURL.
//
// authFile is the browser.json or oauth.json path forwarded to the proxy; without it the service is unauthenticated.
func NewYouTubeService(baseURL, authFile string, opts ...Option) *YouTubeService {
	if baseURL == "" {
		baseURL = defaultYTBaseURL
	}

	api := newTransport("ytmusic", strings.TrimRight(baseURL, "/"), opts...)
	if authFile != "" {
		api.header.Set("X-Auth-File", authFile)
	}

	return &YouTubeService{api: api, authFile: authFile}
}

func (y *YouTubeService) Descriptor() Descriptor { return YouTubeDescriptor }

func (y *YouTubeService) requireSession() error {
	if y.authFile == "" {
		return fmt.Errorf("%w: ytmusic auth_file not configured", shared.ErrNotAuthenticated)
	}
	return nil
}

// CurrentUserID returns the channel handle of the account behind the auth file.
func (y *YouTubeService) CurrentUserID(ctx context.Context) (string, error) {
	if err := y.requireSession(); err != nil {
		return "", err
	}

	var account struct {
		AccountName   string `json:"accountName"`
		ChannelHandle string `json:"channelHandle"`
	}
	if err := y.api.do(ctx, http.MethodGet, "/api/account", nil, &account); err != nil {
		return "", err
	}

	switch {
	case account.ChannelHandle != "":
		return account.ChannelHandle, nil
	case account.AccountName != "":
		return account.AccountName, nil
	default:
		return "", fmt.Errorf("%w: ytmusic account has no handle", shared.ErrNotAuthenticated)
	}
}

// ListPlaylists calls GET /api/library/playlists and drops the reserved library ids.
func (y *YouTubeService) ListPlaylists(ctx context.Context) ([]models.Playlist, error) {
	if err := y.requireSession(); err != nil {
		return nil, err
	}

	var raw []youtubePlaylist
	if err := y.api.do(ctx, http.MethodGet, "/api/library/playlists", nil, &raw); err != nil {
		return nil, err
	}

	playlists := make([]models.Playlist, 0, len(raw))
	for _, p := range raw {
		if _, reserved := youtubeReservedPlaylists[p.PlaylistID]; reserved {
			continue
		}
		playlists = append(playlists, models.Playlist{ID: p.PlaylistID, Name: p.Title, Description: p.Description})
	}
	return playlists, nil
}

// ListPlaylistTracks calls GET /api/playlists/{id}.
func (y *YouTubeService) ListPlaylistTracks(ctx context.Context, playlistID string) ([]models.Song, error) {
	if playlistID == "" {
		return nil, fmt.Errorf("%w: empty playlist id", shared.ErrPlaylistNotFound)
	}
	return y.trackList(ctx, "/api/playlists/"+url.PathEscape(playlistID))
}

// ListLikedSongs calls GET /api/library/liked-songs.
func (y *YouTubeService) ListLikedSongs(ctx context.Context) ([]models.Song, error) {
	if err := y.requireSession(); err != nil {
		return nil, err
	}
	return y.trackList(ctx, "/api/library/liked-songs")
}

func (y *YouTubeService) trackList(ctx context.Context, endpoint string) ([]models.Song, error) {
	var list youtubeTrackList
	if err := y.api.do(ctx, http.MethodGet, endpoint, nil, &list); err != nil {
		return nil, err
	}
	if list.Tracks == nil {
		return nil, fmt.Errorf("%w: ytmusic %s returned no tracks", shared.ErrRetrievalFailed, endpoint)
	}

	songs := make([]models.Song, 0, len(*list.Tracks))
	for _, t := range *list.Tracks {
		if t.VideoID == "" {
			continue
		}
		songs = append(songs, t.song())
	}
	return songs, nil
}

// SearchTrack calls GET /api/search?q={name} {artist}&filter=songs and returns the first playable result.
func (y *YouTubeService) SearchTrack(ctx context.Context, name, artist string) (*models.Song, error) {
	q := url.Values{}
	q.Set("q", strings.TrimSpace(name+" "+artist))
	q.Set("filter", "songs")

	var results []youtubeTrack
	if err := y.api.do(ctx, http.MethodGet, "/api/search?"+q.Encode(), nil, &results); err != nil {
		return nil, err
	}

	for _, r := range results {
		if r.VideoID != "" {
			song := r.song()
			return &song, nil
		}
	}
	return nil, nil
}

// CreatePlaylist calls POST /api/playlists and returns the new playlist id.
func (y *YouTubeService) CreatePlaylist(ctx context.Context, name, description string) (string, error) {
	if err := y.requireSession(); err != nil {
		return "", err
	}

	body := map[string]string{"title": name, "description": description, "privacy_status": "PRIVATE"}
	var resp struct {
		PlaylistID string `json:"playlist_id"`
	}
	if err := y.api.do(ctx, http.MethodPost, "/api/playlists", body, &resp); err != nil {
		return "", err
	}
	if resp.PlaylistID == "" {
		return "", fmt.Errorf("%w: ytmusic returned no playlist id", shared.ErrAPIRequest)
	}
	return resp.PlaylistID, nil
}

// AddTrack calls POST /api/playlists/{id}/items with a single video id.
func (y *YouTubeService) AddTrack(ctx context.Context, playlistID, songID string) error {
	if err := y.requireSession(); err != nil {
		return err
	}

	endpoint := fmt.Sprintf("/api/playlists/%s/items", url.PathEscape(playlistID))
	return y.api.do(ctx, http.MethodPost, endpoint, map[string][]string{"video_ids": {songID}}, nil)
}

func (y *YouTubeService) AddTracks(ctx context.Context, playlistID string, songIDs []string) error {
	return addEach(ctx, songIDs, func(ctx context.Context, id string) error {
		return y.AddTrack(ctx, playlistID, id)
	})
}

// LikeTrack calls POST /api/songs/{id}/rate with a LIKE rating.
func (y *YouTubeService) LikeTrack(ctx context.Context, songID string) error {
	if err := y.requireSession(); err != nil {
		return err
	}

	endpoint := fmt.Sprintf("/api/songs/%s/rate", url.PathEscape(songID))
	return y.api.do(ctx, http.MethodPost, endpoint, map[string]string{"rating": "LIKE"}, nil)
}

func (y *YouTubeService) LikeTracks(ctx context.Context, songIDs []string) error {
	return addEach(ctx, songIDs, y.LikeTrack)
}
