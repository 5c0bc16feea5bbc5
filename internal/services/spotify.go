// Spotify Web API implementation of [Service]
//
// Response types follow https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/oauth2"

	"github.com/desertthunder/tunetx/internal/models"
	"github.com/desertthunder/tunetx/internal/shared"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	spotifyTrackURI = "spotify:track:"

	spotifyAddChunk  = 100
	spotifyLikeChunk = 50
)

// spotifyLikedID is never a real playlist id; a playlist carrying it is the liked collection.
const spotifyLikedID = "liked"

var spotifyScopes = []string{
	"user-read-private",
	"playlist-read-private",
	"playlist-read-collaborative",
	"playlist-modify-private",
	"playlist-modify-public",
	"user-library-read",
	"user-library-modify",
}

type spotifyArtist struct {
	Name string `json:"name"`
}

type spotifyTrack struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	URI     string          `json:"uri"`
	Artists []spotifyArtist `json:"artists"`
}

func (t spotifyTrack) song() models.Song {
	s := models.Song{ID: t.URI, Name: t.Name}
	if s.ID == "" && t.ID != "" {
		s.ID = spotifyTrackURI + t.ID
	}
	if len(t.Artists) > 0 {
		s.Artist = t.Artists[0].Name
	}
	return s
}

type spotifyItem struct {
	Track *spotifyTrack `json:"track"`
}

type spotifyPage[T any] struct {
	Items []T     `json:"items"`
	Next  *string `json:"next"`
}

type spotifyPlaylist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SpotifyService implements [Service] for the Spotify Web API.
type SpotifyService struct {
	config  *oauth2.Config
	opts    []Option
	api     *transport
	session bool

	mu     sync.Mutex
	userID string
}

// NewSpotifyService creates a Spotify service from client credentials.
//
// The service is unauthenticated until [SpotifyService.Authenticate] is called.
func NewSpotifyService(credentials map[string]string, opts ...Option) (*SpotifyService, error) {
	clientID := credentials["client_id"]
	if clientID == "" {
		return nil, fmt.Errorf("%w: spotify client_id", shared.ErrMissingCredentials)
	}

	clientSecret := credentials["client_secret"]
	if clientSecret == "" {
		return nil, fmt.Errorf("%w: spotify client_secret", shared.ErrMissingCredentials)
	}

	redirectURI := credentials["redirect_uri"]
	if redirectURI == "" {
		redirectURI = "http://127.0.0.1:3000/callback"
	}

	return &SpotifyService{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       spotifyScopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  spotifyAuthURL,
				TokenURL: spotifyTokenURL,
			},
		},
		opts: opts,
		api:  newTransport("spotify", spotifyBaseURL, opts...),
	}, nil
}

func (s *SpotifyService) Descriptor() Descriptor { return SpotifyDescriptor }

// OAuthConfig exposes the OAuth2 configuration for the callback server.
func (s *SpotifyService) OAuthConfig() *oauth2.Config { return s.config }

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades an authorization code for a token.
func (s *SpotifyService) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	return token, nil
}

// Authenticate starts a session from token. onRefresh, if set, receives every newly refreshed token.
func (s *SpotifyService) Authenticate(ctx context.Context, token *oauth2.Token, onRefresh func(*oauth2.Token)) error {
	if token == nil || (token.AccessToken == "" && token.RefreshToken == "") {
		return fmt.Errorf("%w: spotify token missing, run `tunetx spotify auth`", shared.ErrNotAuthenticated)
	}

	base := s.config.TokenSource(ctx, token)
	ts := oauth2.ReuseTokenSource(token, &notifyingSource{src: base, last: token.AccessToken, notify: onRefresh})

	// The oauth2 client must wrap whatever client the caller configured.
	api := newTransport("spotify", spotifyBaseURL, s.opts...)
	api.httpClient = &http.Client{
		Transport: &oauth2.Transport{Source: ts, Base: api.httpClient.Transport},
		Timeout:   api.httpClient.Timeout,
	}

	s.api = api
	s.session = true
	return nil
}

// notifyingSource reports tokens that differ from the last one seen.
type notifyingSource struct {
	src    oauth2.TokenSource
	notify func(*oauth2.Token)

	mu   sync.Mutex
	last string
}

func (n *notifyingSource) Token() (*oauth2.Token, error) {
	t, err := n.src.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrTokenExpired, err)
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if t.AccessToken != n.last {
		n.last = t.AccessToken
		if n.notify != nil {
			n.notify(t)
		}
	}
	return t, nil
}

func (s *SpotifyService) requireSession() error {
	if !s.session {
		return fmt.Errorf("%w: spotify", shared.ErrNotAuthenticated)
	}
	return nil
}

// CurrentUserID returns the Spotify user id of the session, cached after the first call.
func (s *SpotifyService) CurrentUserID(ctx context.Context) (string, error) {
	if err := s.requireSession(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.userID != "" {
		return s.userID, nil
	}

	var me struct {
		ID string `json:"id"`
	}
	if err := s.api.do(ctx, http.MethodGet, "/me", nil, &me); err != nil {
		return "", err
	}
	if me.ID == "" {
		return "", fmt.Errorf("%w: spotify returned no user id", shared.ErrNotAuthenticated)
	}
	s.userID = me.ID
	return me.ID, nil
}

// ListPlaylists pages through /me/playlists.
func (s *SpotifyService) ListPlaylists(ctx context.Context) ([]models.Playlist, error) {
	if err := s.requireSession(); err != nil {
		return nil, err
	}

	playlists := []models.Playlist{}
	next := "/me/playlists?limit=50"
	for next != "" {
		var page spotifyPage[spotifyPlaylist]
		if err := s.api.do(ctx, http.MethodGet, next, nil, &page); err != nil {
			return nil, err
		}

		for _, p := range page.Items {
			if p.ID == "" || p.ID == spotifyLikedID {
				continue
			}
			playlists = append(playlists, models.Playlist{ID: p.ID, Name: p.Name, Description: p.Description})
		}
		next = deref(page.Next)
	}
	return playlists, nil
}

// ListPlaylistTracks pages through /playlists/{id}/tracks, skipping removed and local-only items.
func (s *SpotifyService) ListPlaylistTracks(ctx context.Context, playlistID string) ([]models.Song, error) {
	if err := s.requireSession(); err != nil {
		return nil, err
	}
	if playlistID == "" {
		return nil, fmt.Errorf("%w: empty playlist id", shared.ErrPlaylistNotFound)
	}

	return s.collectTracks(ctx, fmt.Sprintf("/playlists/%s/tracks?limit=100", url.PathEscape(playlistID)))
}

// ListLikedSongs pages through /me/tracks.
func (s *SpotifyService) ListLikedSongs(ctx context.Context) ([]models.Song, error) {
	if err := s.requireSession(); err != nil {
		return nil, err
	}
	return s.collectTracks(ctx, "/me/tracks?limit=50")
}

func (s *SpotifyService) collectTracks(ctx context.Context, next string) ([]models.Song, error) {
	songs := []models.Song{}
	for next != "" {
		var page spotifyPage[spotifyItem]
		if err := s.api.do(ctx, http.MethodGet, next, nil, &page); err != nil {
			return nil, err
		}
		if page.Items == nil && len(songs) == 0 && page.Next == nil {
			return nil, fmt.Errorf("%w: spotify returned no items", shared.ErrRetrievalFailed)
		}

		for _, item := range page.Items {
			if item.Track == nil || item.Track.ID == "" {
				continue
			}
			songs = append(songs, item.Track.song())
		}
		next = deref(page.Next)
	}
	return songs, nil
}

// SearchTrack returns the top track for "name artist".
func (s *SpotifyService) SearchTrack(ctx context.Context, name, artist string) (*models.Song, error) {
	if err := s.requireSession(); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("q", strings.TrimSpace(name+" "+artist))
	q.Set("type", "track")
	q.Set("limit", "1")

	var resp struct {
		Tracks spotifyPage[spotifyTrack] `json:"tracks"`
	}
	if err := s.api.do(ctx, http.MethodGet, "/search?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	if len(resp.Tracks.Items) == 0 {
		return nil, nil
	}

	song := resp.Tracks.Items[0].song()
	return &song, nil
}

// CreatePlaylist creates a private playlist owned by the session user.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, name, description string) (string, error) {
	userID, err := s.CurrentUserID(ctx)
	if err != nil {
		return "", err
	}

	body := map[string]any{"name": name, "description": description, "public": false}
	var created spotifyPlaylist
	if err := s.api.do(ctx, http.MethodPost, fmt.Sprintf("/users/%s/playlists", url.PathEscape(userID)), body, &created); err != nil {
		return "", err
	}
	if created.ID == "" {
		return "", fmt.Errorf("%w: spotify returned no playlist id", shared.ErrAPIRequest)
	}
	return created.ID, nil
}

func (s *SpotifyService) AddTrack(ctx context.Context, playlistID, songID string) error {
	return s.AddTracks(ctx, playlistID, []string{songID})
}

// AddTracks appends songIDs (track URIs) in chunks of 100.
func (s *SpotifyService) AddTracks(ctx context.Context, playlistID string, songIDs []string) error {
	if err := s.requireSession(); err != nil {
		return err
	}

	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))
	added := 0
	for _, uris := range chunk(toSpotifyURIs(songIDs), spotifyAddChunk) {
		if err := s.api.do(ctx, http.MethodPost, endpoint, map[string][]string{"uris": uris}, nil); err != nil {
			return partial(added, err)
		}
		added += len(uris)
	}
	return nil
}

func (s *SpotifyService) LikeTrack(ctx context.Context, songID string) error {
	return s.LikeTracks(ctx, []string{songID})
}

// LikeTracks saves tracks to the library in chunks of 50.
func (s *SpotifyService) LikeTracks(ctx context.Context, songIDs []string) error {
	if err := s.requireSession(); err != nil {
		return err
	}

	ids := make([]string, len(songIDs))
	for i, id := range songIDs {
		ids[i] = strings.TrimPrefix(id, spotifyTrackURI)
	}

	added := 0
	for _, batch := range chunk(ids, spotifyLikeChunk) {
		if err := s.api.do(ctx, http.MethodPut, "/me/tracks", map[string][]string{"ids": batch}, nil); err != nil {
			return partial(added, err)
		}
		added += len(batch)
	}
	return nil
}

func toSpotifyURIs(ids []string) []string {
	uris := make([]string, len(ids))
	for i, id := range ids {
		if strings.HasPrefix(id, "spotify:") {
			uris[i] = id
		} else {
			uris[i] = spotifyTrackURI + id
		}
	}
	return uris
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
