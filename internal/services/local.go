package services

import (
	"context"
	"database/sql"
	"strings"

	"github.com/desertthunder/tunetx/internal/models"
	"github.com/desertthunder/tunetx/internal/repositories"
)

// localUserID identifies the single owner of a local library.
const localUserID = "local"

// LocalService implements [Service] over the SQLite library.
type LocalService struct {
	playlists *repositories.PlaylistRepository
	tracks    *repositories.TrackRepository
}

// NewLocalService serves the library in db. The schema must already be migrated.
func NewLocalService(db *sql.DB) *LocalService {
	return &LocalService{
		playlists: repositories.NewPlaylistRepository(db),
		tracks:    repositories.NewTrackRepository(db),
	}
}

func (l *LocalService) Descriptor() Descriptor { return LocalDescriptor }

func (l *LocalService) CurrentUserID(context.Context) (string, error) { return localUserID, nil }

func (l *LocalService) ListPlaylists(ctx context.Context) ([]models.Playlist, error) {
	return l.playlists.List(ctx)
}

func (l *LocalService) ListPlaylistTracks(ctx context.Context, playlistID string) ([]models.Song, error) {
	return l.playlists.Tracks(ctx, playlistID)
}

func (l *LocalService) ListLikedSongs(ctx context.Context) ([]models.Song, error) {
	return l.playlists.Tracks(ctx, repositories.LikedPlaylistID)
}

// SearchTrack looks for an exact name/artist row first, then any track containing every query word.
func (l *LocalService) SearchTrack(ctx context.Context, name, artist string) (*models.Song, error) {
	if strings.TrimSpace(artist) != "" {
		song, err := l.tracks.Find(ctx, name, artist)
		if err != nil || song != nil {
			return song, err
		}
	}
	return l.tracks.Search(ctx, name+" "+artist)
}

func (l *LocalService) CreatePlaylist(ctx context.Context, name, description string) (string, error) {
	return l.playlists.Create(ctx, name, description)
}

func (l *LocalService) AddTrack(ctx context.Context, playlistID, songID string) error {
	return l.playlists.Append(ctx, playlistID, songID)
}

// AddTracks appends every song in one transaction.
func (l *LocalService) AddTracks(ctx context.Context, playlistID string, songIDs []string) error {
	return l.playlists.Append(ctx, playlistID, songIDs...)
}

func (l *LocalService) LikeTrack(ctx context.Context, songID string) error {
	return l.playlists.Append(ctx, repositories.LikedPlaylistID, songID)
}

func (l *LocalService) LikeTracks(ctx context.Context, songIDs []string) error {
	return l.playlists.Append(ctx, repositories.LikedPlaylistID, songIDs...)
}

// Import adds songs to the catalog and appends them to the playlist called name, creating it if needed.
//
// Returns the playlist id.
func (l *LocalService) Import(ctx context.Context, name string, songs []models.Song) (string, error) {
	var playlistID string
	if name == "" || strings.EqualFold(name, repositories.LikedPlaylistID) {
		playlistID = repositories.LikedPlaylistID
	} else {
		existing, err := l.playlists.FindByName(ctx, name)
		if err != nil {
			return "", err
		}
		if existing != nil {
			playlistID = existing.ID
		} else if playlistID, err = l.playlists.Create(ctx, name, ""); err != nil {
			return "", err
		}
	}

	ids := make([]string, 0, len(songs))
	for _, s := range songs {
		track, err := l.tracks.FindOrCreate(ctx, s.Name, s.Artist)
		if err != nil {
			return "", err
		}
		ids = append(ids, track.ID)
	}

	if err := l.playlists.Append(ctx, playlistID, ids...); err != nil {
		return "", err
	}
	return playlistID, nil
}
