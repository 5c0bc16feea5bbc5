package tasks

import (
	"context"

	"github.com/desertthunder/tunetx/internal/models"
	"github.com/desertthunder/tunetx/internal/shared"
)

// PlaylistResult is the outcome of one playlist in a batch.
type PlaylistResult struct {
	Playlist  models.Playlist
	Handle    string        // destination playlist id, [DryRunHandle] or [LikedHandle]
	Total     int           // songs read from the origin
	Unmatched []models.Song // songs with no acceptable match, in source order
	Err       error         // set when the playlist was skipped
}

// Matched is the number of songs that made it to the destination (or would have, in dry-run).
func (r PlaylistResult) Matched() int { return r.Total - len(r.Unmatched) }

// BatchResult summarizes a run over several playlists.
type BatchResult struct {
	Results []PlaylistResult
	Failed  int // playlists skipped because of an error
}

// Unmatched counts unmatched songs across every playlist.
func (b BatchResult) Unmatched() int {
	n := 0
	for _, r := range b.Results {
		n += len(r.Unmatched)
	}
	return n
}

// TransferPlaylists transfers playlists one after another.
//
// Each result is handed to onResult (if non-nil) as soon as it is known. A playlist
// that fails with a skippable error is recorded and the batch continues; a run-fatal
// error stops the batch and is returned alongside the results gathered so far.
func (t *Transferer) TransferPlaylists(ctx context.Context, playlists []models.Playlist, onResult func(PlaylistResult)) (BatchResult, error) {
	return t.Run(ctx, false, playlists, onResult)
}

// Run transfers the liked songs (when liked is set) and then each playlist, with the
// same error handling as [Transferer.TransferPlaylists].
func (t *Transferer) Run(ctx context.Context, liked bool, playlists []models.Playlist, onResult func(PlaylistResult)) (BatchResult, error) {
	batch := BatchResult{Results: make([]PlaylistResult, 0, len(playlists)+1)}

	if liked {
		r, err := t.transferLiked(ctx)
		if fatal := batch.record(r, err, onResult, t.logger); fatal {
			return batch, err
		}
	}

	for i, pl := range playlists {
		t.logger.Debug("batch", "step", i+1, "of", len(playlists), "playlist", pl.Name)

		r, err := t.transferPlaylist(ctx, pl)
		if fatal := batch.record(r, err, onResult, t.logger); fatal {
			return batch, err
		}
	}
	return batch, nil
}

func (b *BatchResult) record(r PlaylistResult, err error, onResult func(PlaylistResult), logger Logger) bool {
	r.Err = err
	b.Results = append(b.Results, r)
	if err != nil {
		b.Failed++
		logger.Warn("playlist skipped", "playlist", r.Playlist.Name, "error", err)
	}
	if onResult != nil {
		onResult(r)
	}
	return shared.IsFatal(err)
}
