package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/tunetx/internal/models"
	"github.com/desertthunder/tunetx/internal/shared"
)

// Descriptor is the static capability record a backend advertises.
type Descriptor struct {
	Name         string // human-readable name
	Token        string // short argument token, e.g. "spotify"
	SupportsAuth bool   // can act as a user and mutate state
	CanBulkAdd   bool   // playlist population may be committed in one call
}

func (d Descriptor) String() string { return d.Name }

var (
	SpotifyDescriptor = Descriptor{Name: "Spotify", Token: "spotify", SupportsAuth: true, CanBulkAdd: true}
	YouTubeDescriptor = Descriptor{Name: "YouTube Music", Token: "ytmusic", SupportsAuth: true, CanBulkAdd: false}
	DeezerDescriptor  = Descriptor{Name: "Deezer", Token: "deezer", SupportsAuth: false, CanBulkAdd: false}
	LocalDescriptor   = Descriptor{Name: "Local Library", Token: "local", SupportsAuth: true, CanBulkAdd: true}
)

// Service is the capability surface every music backend implements.
//
// Backends that cannot mutate state fail every write with [shared.ErrUnsupported].
type Service interface {
	Descriptor() Descriptor

	// ListPlaylists returns the user's playlists, never including the liked-songs pseudo-playlist.
	ListPlaylists(ctx context.Context) ([]models.Playlist, error)

	// ListPlaylistTracks fails with [shared.ErrPlaylistNotFound] for unknown ids.
	ListPlaylistTracks(ctx context.Context, playlistID string) ([]models.Song, error)

	ListLikedSongs(ctx context.Context) ([]models.Song, error)

	// SearchTrack returns the top candidate for name and artist, or nil when there is none.
	SearchTrack(ctx context.Context, name, artist string) (*models.Song, error)

	CreatePlaylist(ctx context.Context, name, description string) (string, error)
	AddTrack(ctx context.Context, playlistID, songID string) error
	AddTracks(ctx context.Context, playlistID string, songIDs []string) error
	LikeTrack(ctx context.Context, songID string) error
	LikeTracks(ctx context.Context, songIDs []string) error

	// CurrentUserID fails with [shared.ErrNotAuthenticated] when there is no session.
	CurrentUserID(ctx context.Context) (string, error)
}

var registry = []Descriptor{SpotifyDescriptor, YouTubeDescriptor, DeezerDescriptor, LocalDescriptor}

// Descriptors lists every known backend in display order.
func Descriptors() []Descriptor {
	return append([]Descriptor(nil), registry...)
}

// Lookup resolves an argument token (case-insensitive) to its descriptor.
func Lookup(token string) (Descriptor, error) {
	token = strings.ToLower(strings.TrimSpace(token))
	for _, d := range registry {
		if d.Token == token {
			return d, nil
		}
	}
	return Descriptor{}, fmt.Errorf("%w: unknown service %q (expected one of %s)",
		shared.ErrInvalidArgument, token, strings.Join(OriginTokens(), ", "))
}

// OriginTokens lists the tokens of every backend that can be read from.
func OriginTokens() []string {
	tokens := make([]string, 0, len(registry))
	for _, d := range registry {
		tokens = append(tokens, d.Token)
	}
	return tokens
}

// DestinationTokens lists the tokens of backends that can be written to.
func DestinationTokens() []string {
	var tokens []string
	for _, d := range registry {
		if d.SupportsAuth {
			tokens = append(tokens, d.Token)
		}
	}
	return tokens
}

// PartialAddError is returned by a bulk add or like that failed after committing the first Added ids.
type PartialAddError struct {
	Added int
	Err   error
}

func (e *PartialAddError) Error() string {
	return fmt.Sprintf("%d added before failure: %v", e.Added, e.Err)
}

func (e *PartialAddError) Unwrap() error { return e.Err }

// partial wraps err when some ids were already written.
func partial(added int, err error) error {
	if added == 0 {
		return err
	}
	return &PartialAddError{Added: added, Err: err}
}

// addEach implements a bulk add for backends that only accept one track per call.
func addEach(ctx context.Context, songIDs []string, add func(context.Context, string) error) error {
	for i, id := range songIDs {
		if err := add(ctx, id); err != nil {
			return partial(i, err)
		}
	}
	return nil
}

// chunk splits ids into consecutive slices of at most size elements.
func chunk(ids []string, size int) [][]string {
	var out [][]string
	for len(ids) > size {
		out = append(out, ids[:size])
		ids = ids[size:]
	}
	if len(ids) > 0 {
		out = append(out, ids)
	}
	return out
}
