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

// TrackRepository stores catalog tracks for the local library.
type TrackRepository struct {
	db *sql.DB
}

// NewTrackRepository creates a new TrackRepository with the given database connection
func NewTrackRepository(db *sql.DB) *TrackRepository {
	return &TrackRepository{db: db}
}

// Create inserts a track and returns it with a generated ID.
func (r *TrackRepository) Create(ctx context.Context, name, artist string) (models.Song, error) {
	name, artist = strings.TrimSpace(name), strings.TrimSpace(artist)
	if name == "" {
		return models.Song{}, fmt.Errorf("%w: track name is required", shared.ErrInvalidInput)
	}

	song := models.Song{ID: shared.GenerateID(), Name: name, Artist: artist}
	if _, err := r.db.ExecContext(ctx,
		"INSERT INTO tracks (id, name, artist) VALUES (?, ?, ?)",
		song.ID, song.Name, song.Artist,
	); err != nil {
		return models.Song{}, fmt.Errorf("failed to insert track: %w", err)
	}
	return song, nil
}

// FindOrCreate returns the track with exactly this name and artist (ignoring case), creating it if needed.
func (r *TrackRepository) FindOrCreate(ctx context.Context, name, artist string) (models.Song, error) {
	song, err := r.Find(ctx, name, artist)
	if err != nil {
		return models.Song{}, err
	}
	if song != nil {
		return *song, nil
	}
	return r.Create(ctx, name, artist)
}

// Find looks up a track by name and, when given, artist. Comparison ignores case.
//
// Returns nil without error when nothing matches.
func (r *TrackRepository) Find(ctx context.Context, name, artist string) (*models.Song, error) {
	query := "SELECT id, name, artist FROM tracks WHERE name = ? COLLATE NOCASE"
	args := []any{strings.TrimSpace(name)}
	if artist = strings.TrimSpace(artist); artist != "" {
		query += " AND artist = ? COLLATE NOCASE"
		args = append(args, artist)
	}
	query += " ORDER BY rowid LIMIT 1"

	return r.first(ctx, query, args...)
}

// Search returns the first track whose name plus artist contains every word of query.
func (r *TrackRepository) Search(ctx context.Context, query string) (*models.Song, error) {
	words := strings.Fields(query)
	if len(words) == 0 {
		return nil, nil
	}

	var (
		clauses []string
		args    []any
	)
	for _, w := range words {
		clauses = append(clauses, "(name || ' ' || artist) LIKE ? ESCAPE '\\'")
		args = append(args, "%"+escapeLike(w)+"%")
	}

	return r.first(ctx,
		"SELECT id, name, artist FROM tracks WHERE "+strings.Join(clauses, " AND ")+" ORDER BY rowid LIMIT 1",
		args...,
	)
}

func (r *TrackRepository) first(ctx context.Context, query string, args ...any) (*models.Song, error) {
	var s models.Song
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&s.ID, &s.Name, &s.Artist)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to search tracks: %w", err)
	}
	return &s, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
}
