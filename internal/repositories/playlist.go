package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/tunetx/internal/models"
	"github.com/desertthunder/tunetx/internal/shared"
)

// PlaylistRepository stores playlists and their ordered membership.
type PlaylistRepository struct {
	db *sql.DB
}

// NewPlaylistRepository creates a new PlaylistRepository with the given database connection
func NewPlaylistRepository(db *sql.DB) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

// Create inserts an empty playlist and returns its generated ID.
func (r *PlaylistRepository) Create(ctx context.Context, name, description string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("%w: playlist name is required", shared.ErrInvalidInput)
	}

	id := shared.GenerateID()
	if _, err := r.db.ExecContext(ctx,
		"INSERT INTO playlists (id, name, description) VALUES (?, ?, ?)",
		id, name, description,
	); err != nil {
		return "", fmt.Errorf("failed to insert playlist: %w", err)
	}
	return id, nil
}

// Get retrieves a playlist by ID.
func (r *PlaylistRepository) Get(ctx context.Context, id string) (models.Playlist, error) {
	var p models.Playlist
	err := r.db.QueryRowContext(ctx, "SELECT id, name, description FROM playlists WHERE id = ?", id).
		Scan(&p.ID, &p.Name, &p.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Playlist{}, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
	}
	if err != nil {
		return models.Playlist{}, fmt.Errorf("failed to get playlist: %w", err)
	}
	return p, nil
}

// FindByName returns the first playlist named name, or nil.
func (r *PlaylistRepository) FindByName(ctx context.Context, name string) (*models.Playlist, error) {
	var p models.Playlist
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, description FROM playlists WHERE name = ? AND id != ? ORDER BY rowid LIMIT 1",
		name, LikedPlaylistID,
	).Scan(&p.ID, &p.Name, &p.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find playlist: %w", err)
	}
	return &p, nil
}

// List returns every playlist except the reserved liked-songs row, oldest first.
func (r *PlaylistRepository) List(ctx context.Context) ([]models.Playlist, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, description FROM playlists WHERE id != ? ORDER BY created_at, rowid",
		LikedPlaylistID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	playlists := []models.Playlist{}
	for rows.Next() {
		var p models.Playlist
		if err := rows.Scan(&p.ID, &p.Name, &p.Description); err != nil {
			return nil, fmt.Errorf("failed to scan playlist: %w", err)
		}
		playlists = append(playlists, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return playlists, nil
}

// Tracks returns the songs of a playlist in position order.
func (r *PlaylistRepository) Tracks(ctx context.Context, playlistID string) ([]models.Song, error) {
	if _, err := r.Get(ctx, playlistID); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT t.id, t.name, t.artist
		FROM playlist_tracks pt
		JOIN tracks t ON t.id = pt.track_id
		WHERE pt.playlist_id = ?
		ORDER BY pt.position
	`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlist tracks: %w", err)
	}
	defer rows.Close()

	songs := []models.Song{}
	for rows.Next() {
		var s models.Song
		if err := rows.Scan(&s.ID, &s.Name, &s.Artist); err != nil {
			return nil, fmt.Errorf("failed to scan track: %w", err)
		}
		songs = append(songs, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return songs, nil
}

// Append adds trackIDs to the end of a playlist in one transaction.
//
// Either every track is added or none is.
func (r *PlaylistRepository) Append(ctx context.Context, playlistID string, trackIDs ...string) error {
	if len(trackIDs) == 0 {
		return nil
	}

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		var exists bool
		if err := tx.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM playlists WHERE id = ?)", playlistID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check playlist: %w", err)
		}
		if !exists {
			return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
		}

		var next int
		if err := tx.QueryRowContext(ctx,
			"SELECT COALESCE(MAX(position), -1) + 1 FROM playlist_tracks WHERE playlist_id = ?", playlistID,
		).Scan(&next); err != nil {
			return fmt.Errorf("failed to read playlist position: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx,
			"INSERT INTO playlist_tracks (playlist_id, track_id, position) SELECT ?, id, ? FROM tracks WHERE id = ?")
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for i, trackID := range trackIDs {
			res, err := stmt.ExecContext(ctx, playlistID, next+i, trackID)
			if err != nil {
				return fmt.Errorf("failed to add track %s: %w", trackID, err)
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return fmt.Errorf("%w: unknown track %s", shared.ErrInvalidInput, trackID)
			}
		}
		return nil
	})
}
