package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/tunetx/internal/formatter"
	"github.com/desertthunder/tunetx/internal/match"
	"github.com/desertthunder/tunetx/internal/models"
	"github.com/desertthunder/tunetx/internal/services"
	"github.com/desertthunder/tunetx/internal/shared"
)

// Services prints every backend and its capabilities.
func (r *Runner) Services(ctx context.Context, cmd *cli.Command) error {
	formatter.ServicesTable(r.output, services.Descriptors())
	return nil
}

type playlistListing struct {
	models.Playlist
	Songs []models.Song `json:"songs,omitempty"`
}

// Playlists lists the playlists of --service, optionally with their songs.
func (r *Runner) Playlists(ctx context.Context, cmd *cli.Command) error {
	svc, err := r.service(ctx, cmd.String("service"))
	if err != nil {
		return err
	}

	playlists, err := svc.ListPlaylists(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch playlists: %w", err)
	}

	listings := make([]playlistListing, 0, len(playlists))
	for _, pl := range playlists {
		listing := playlistListing{Playlist: pl}
		if cmd.Bool("tracks") {
			if listing.Songs, err = svc.ListPlaylistTracks(ctx, pl.ID); err != nil {
				r.logger.Warn("could not fetch tracks", "playlist", pl.Name, "error", err)
			}
		}
		listings = append(listings, listing)
	}

	if cmd.Bool("json") {
		return r.writeJSON(listings, cmd.Bool("pretty"))
	}

	if len(playlists) == 0 {
		return r.writePlain("No playlists on %s.\n", svc.Descriptor().Name)
	}
	formatter.PlaylistsTable(r.output, playlists)
	if !cmd.Bool("tracks") {
		return nil
	}
	for _, l := range listings {
		r.writePlainln("%s (%d songs)", l.Name, len(l.Songs))
		for i, song := range l.Songs {
			r.writePlain("  %d. %s\n", i+1, song)
		}
	}
	return nil
}

type searchResult struct {
	Query     string       `json:"query"`
	Candidate *models.Song `json:"candidate"`
	Ratio     int          `json:"ratio"`
	Accepted  bool         `json:"accepted"`
}

// Search looks up one song on --service and shows whether a transfer would accept the candidate.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	name := strings.TrimSpace(cmd.Args().Get(0))
	if name == "" {
		return fmt.Errorf("%w: song name", shared.ErrMissingArgument)
	}
	artist := strings.TrimSpace(strings.Join(cmd.Args().Slice()[1:], " "))

	svc, err := r.service(ctx, cmd.String("service"))
	if err != nil {
		return err
	}

	candidate, err := svc.SearchTrack(ctx, name, artist)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	res := searchResult{Query: models.Song{Name: name, Artist: artist}.String(), Candidate: candidate}
	if candidate != nil {
		res.Ratio = match.Ratio(name, candidate.Name)
		res.Accepted = match.IsAcceptableMatch(name, candidate.Name)
	}

	if cmd.Bool("json") {
		return r.writeJSON(res, true)
	}

	if candidate == nil {
		return r.writePlain("No result on %s for %s\n", svc.Descriptor().Name, res.Query)
	}
	verdict := "rejected"
	if res.Accepted {
		verdict = "accepted"
	}
	return r.writePlain("%s\n  id: %s\n  ratio: %d (%s, threshold %d)\n", candidate, candidate.ID, res.Ratio, verdict, match.Threshold)
}
