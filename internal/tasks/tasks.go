// package tasks implements playlist transfer operations between music services.
package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/tunetx/internal/match"
	"github.com/desertthunder/tunetx/internal/models"
	"github.com/desertthunder/tunetx/internal/services"
	"github.com/desertthunder/tunetx/internal/shared"
)

const (
	// DryRunHandle stands in for the destination playlist id when nothing is created.
	DryRunHandle = "DRY-RUN"
	// LikedHandle is the target handle of a liked-songs transfer.
	LikedHandle = "LIKED"
)

// Logger is the diagnostic sink of a [Transferer]. *log.Logger from charmbracelet/log satisfies it.
type Logger interface {
	Debug(msg any, keyvals ...any)
	Info(msg any, keyvals ...any)
	Warn(msg any, keyvals ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(any, ...any) {}
func (nopLogger) Info(any, ...any)  {}
func (nopLogger) Warn(any, ...any)  {}

// Option configures a [Transferer].
type Option func(*Transferer)

// WithDryRun makes the transfer perform reads only.
func WithDryRun(dry bool) Option {
	return func(t *Transferer) { t.dryRun = dry }
}

// WithLogger sets the diagnostic sink. A nil logger is ignored.
func WithLogger(l Logger) Option {
	return func(t *Transferer) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithProgress sets the channel that receives progress updates.
func WithProgress(ch chan<- ProgressUpdate) Option {
	return func(t *Transferer) { t.progress = ch }
}

// Transferer copies playlists and liked songs from origin to destination.
//
// It holds no per-playlist state. Runs are sequential and a Transferer must not be shared between goroutines.
type Transferer struct {
	origin      services.Service
	destination services.Service
	dryRun      bool
	logger      Logger
	progress    chan<- ProgressUpdate
}

// NewTransferer binds origin and destination.
func NewTransferer(origin, destination services.Service, opts ...Option) *Transferer {
	t := &Transferer{
		origin:      origin,
		destination: destination,
		logger:      nopLogger{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// DryRun reports whether writes are suppressed.
func (t *Transferer) DryRun() bool { return t.dryRun }

// Preflight checks that the destination can be written to before any playlist is touched.
func (t *Transferer) Preflight(ctx context.Context) error {
	d := t.destination.Descriptor()
	if !d.SupportsAuth {
		return fmt.Errorf("%w: %s cannot be a transfer destination", shared.ErrUnsupported, d.Name)
	}
	user, err := t.destination.CurrentUserID(ctx)
	if err != nil {
		if errors.Is(err, shared.ErrNotAuthenticated) {
			return fmt.Errorf("%s: %w", d.Name, err)
		}
		return fmt.Errorf("%w: %s: %w", shared.ErrNotAuthenticated, d.Name, err)
	}
	t.logger.Debug("destination ready", "service", d.Token, "user", user, "dry_run", t.dryRun)
	return nil
}

// TransferPlaylist copies one playlist and returns the songs that found no acceptable match.
func (t *Transferer) TransferPlaylist(ctx context.Context, pl models.Playlist) ([]models.Song, error) {
	r, err := t.transferPlaylist(ctx, pl)
	return r.Unmatched, err
}

// TransferLikedSongs copies the origin's liked songs into the destination's liked songs.
func (t *Transferer) TransferLikedSongs(ctx context.Context) ([]models.Song, error) {
	r, err := t.transferLiked(ctx)
	return r.Unmatched, err
}

func (t *Transferer) transferPlaylist(ctx context.Context, pl models.Playlist) (PlaylistResult, error) {
	result := PlaylistResult{Playlist: pl}
	route := t.origin.Descriptor().Token + " -> " + t.destination.Descriptor().Token

	t.sendProgress(fetchingUpdate(pl.Name))
	songs, err := t.origin.ListPlaylistTracks(ctx, pl.ID)
	if err = fetchError(pl.Name, songs, err); err != nil {
		return result, err
	}
	result.Total = len(songs)
	t.logger.Info("transferring playlist", "playlist", pl.Name, "songs", len(songs), "route", route)

	handle := DryRunHandle
	if !t.dryRun {
		handle, err = t.destination.CreatePlaylist(ctx, pl.Name, pl.Description)
		if err != nil {
			return result, fmt.Errorf("creating %q on %s: %w", pl.Name, t.destination.Descriptor().Name, err)
		}
	}
	result.Handle = handle
	t.sendProgress(creatingUpdate(pl.Name, handle))

	unmatched, err := t.populate(ctx, songs, committer{
		one:  func(ctx context.Context, id string) error { return t.destination.AddTrack(ctx, handle, id) },
		bulk: func(ctx context.Context, ids []string) error { return t.destination.AddTracks(ctx, handle, ids) },
	})
	if err != nil {
		return result, fmt.Errorf("populating %q: %w", pl.Name, err)
	}
	result.Unmatched = unmatched
	t.sendProgress(doneUpdate(pl.Name, len(songs), unmatched))
	t.logger.Info("playlist done", "playlist", pl.Name, "matched", len(songs)-len(unmatched), "unmatched", len(unmatched))
	return result, nil
}

func (t *Transferer) transferLiked(ctx context.Context) (PlaylistResult, error) {
	result := PlaylistResult{Playlist: models.Playlist{ID: LikedHandle, Name: "Liked Songs"}, Handle: LikedHandle}

	t.sendProgress(fetchingUpdate("liked songs"))
	songs, err := t.origin.ListLikedSongs(ctx)
	if err = fetchError("liked songs", songs, err); err != nil {
		return result, err
	}
	result.Total = len(songs)
	t.logger.Info("transferring liked songs", "songs", len(songs))

	unmatched, err := t.populate(ctx, songs, committer{
		one:  t.destination.LikeTrack,
		bulk: t.destination.LikeTracks,
	})
	if err != nil {
		return result, fmt.Errorf("populating liked songs: %w", err)
	}
	result.Unmatched = unmatched
	t.sendProgress(doneUpdate("Liked Songs", len(songs), unmatched))
	return result, nil
}

// fetchError classifies a source read. Nil data without an error counts as a failed read.
func fetchError(name string, songs []models.Song, err error) error {
	switch {
	case err == nil && songs == nil:
		return fmt.Errorf("%w: %s: no data returned", shared.ErrRetrievalFailed, name)
	case err == nil:
		return nil
	case errors.Is(err, shared.ErrRetrievalFailed), errors.Is(err, shared.ErrPlaylistNotFound), shared.IsFatal(err):
		return fmt.Errorf("fetching %s: %w", name, err)
	default:
		return fmt.Errorf("%w: %s: %w", shared.ErrRetrievalFailed, name, err)
	}
}

// committer writes matched ids to the destination.
type committer struct {
	one  func(ctx context.Context, id string) error
	bulk func(ctx context.Context, ids []string) error
}

// populate searches every song in order and commits the matches.
//
// The strategy comes from the destination's CanBulkAdd alone. Songs whose commit
// fails are reported as unmatched; a bulk commit that stopped part way keeps the
// songs it wrote. A run-fatal commit error aborts.
func (t *Transferer) populate(ctx context.Context, songs []models.Song, c committer) ([]models.Song, error) {
	bulk := t.destination.Descriptor().CanBulkAdd
	matched := make([]string, len(songs)) // destination id per source index, "" when unmatched

	for i, song := range songs {
		t.sendProgress(populatingUpdate(i+1, len(songs), song))

		id, ok := t.find(ctx, song)
		if !ok {
			continue
		}
		matched[i] = id

		if bulk || t.dryRun {
			continue
		}
		if err := c.one(ctx, id); err != nil {
			if shared.IsFatal(err) {
				return nil, err
			}
			t.logger.Warn("add failed", "song", song.String(), "error", err)
			matched[i] = ""
		}
	}

	if bulk && !t.dryRun {
		ids := make([]string, 0, len(songs))
		for _, id := range matched {
			if id != "" {
				ids = append(ids, id)
			}
		}
		if len(ids) > 0 {
			t.sendProgress(committingUpdate(len(songs), len(ids)))
			if err := c.bulk(ctx, ids); err != nil {
				if shared.IsFatal(err) {
					return nil, err
				}
				committed := 0
				var partial *services.PartialAddError
				if errors.As(err, &partial) {
					committed = partial.Added
				}
				t.logger.Warn("bulk add failed", "songs", len(ids), "committed", committed, "error", err)
				// ids follow source order, so the first committed matches made it
				for i := range matched {
					switch {
					case matched[i] == "":
					case committed > 0:
						committed--
					default:
						matched[i] = ""
					}
				}
			}
		}
	}

	unmatched := []models.Song{}
	for i, song := range songs {
		if matched[i] == "" {
			unmatched = append(unmatched, song)
		}
	}
	return unmatched, nil
}

// find searches the destination for song and reports the candidate id when its name is acceptable.
func (t *Transferer) find(ctx context.Context, song models.Song) (string, bool) {
	candidate, err := t.destination.SearchTrack(ctx, song.Name, song.Artist)
	switch {
	case err != nil:
		t.logger.Warn("search failed", "song", song.String(), "error", err)
		return "", false
	case candidate == nil:
		t.logger.Debug("no candidate", "song", song.String())
		return "", false
	case !match.IsAcceptableMatch(song.Name, candidate.Name):
		t.logger.Debug("rejected candidate", "song", song.String(), "candidate", candidate.Name,
			"ratio", match.Ratio(song.Name, candidate.Name))
		return "", false
	case candidate.ID == "":
		t.logger.Warn("candidate has no id", "song", song.String())
		return "", false
	}
	return candidate.ID, true
}

// sendProgress sends a progress update without blocking.
func (t *Transferer) sendProgress(u ProgressUpdate) {
	if t.progress == nil {
		return
	}
	select {
	case t.progress <- u:
	default:
	}
}
