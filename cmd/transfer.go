package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/tunetx/internal/formatter"
	"github.com/desertthunder/tunetx/internal/models"
	"github.com/desertthunder/tunetx/internal/services"
	"github.com/desertthunder/tunetx/internal/shared"
	"github.com/desertthunder/tunetx/internal/tasks"
)

// Transfer copies the chosen playlists (and optionally liked songs) from one service to another.
//
// Missing --from/--to values and the playlist selection are prompted for on the runner's input.
func (r *Runner) Transfer(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("interactive") {
		return r.TUI(ctx, cmd)
	}

	from, to, err := r.route(cmd.String("from"), cmd.String("to"))
	if err != nil {
		return err
	}

	origin, err := r.service(ctx, from.Token)
	if err != nil {
		return fmt.Errorf("%s: %w", from.Name, err)
	}
	destination, err := r.service(ctx, to.Token)
	if err != nil {
		return fmt.Errorf("%s: %w", to.Name, err)
	}

	dry := cmd.Bool("dry")
	engine := tasks.NewTransferer(origin, destination,
		tasks.WithDryRun(dry),
		tasks.WithLogger(shared.WithLogger(r.logger, "from", from.Token, "to", to.Token)),
	)
	if err := engine.Preflight(ctx); err != nil {
		return err
	}

	playlists, err := origin.ListPlaylists(ctx)
	if err != nil {
		return fmt.Errorf("listing %s playlists: %w", from.Name, err)
	}
	selected, err := r.choosePlaylists(playlists, cmd.StringSlice("playlist"), cmd.StringSlice("exclude"), cmd.Bool("all"))
	if err != nil {
		return err
	}

	liked := cmd.Bool("liked")
	if len(selected) == 0 && !liked {
		return r.writePlain("Nothing to transfer.\n")
	}

	r.writePlainHeader(fmt.Sprintf("%s → %s", from.Name, to.Name))
	if dry {
		r.writePlain("Dry run: nothing will be created on %s.\n", to.Name)
	}

	batch, err := engine.Run(ctx, liked, selected, r.printResult)

	r.writePlainln("Summary")
	formatter.SummaryTable(r.output, batch.Results)
	r.writePlain("%d unmatched song(s), %d playlist(s) skipped\n", batch.Unmatched(), batch.Failed)

	if path := cmd.String("report"); path != "" {
		summary := formatter.Report{From: from.Name, To: to.Name, DryRun: dry, Results: batch.Results}
		if werr := formatter.WriteReport(summary, path); werr != nil {
			return errors.Join(err, werr)
		}
		r.writePlain("Report written to %s\n", path)
	}
	return err
}

// printResult reports one finished playlist as soon as it is done.
func (r *Runner) printResult(res tasks.PlaylistResult) {
	if res.Err != nil {
		r.writePlain("✗ %s: %v\n", res.Playlist.Name, res.Err)
		return
	}
	r.writePlain("✓ %s: %d/%d matched\n", res.Playlist.Name, res.Matched(), res.Total)
	if len(res.Unmatched) > 0 {
		r.writePlain("  Unmatched:\n")
		formatter.WriteUnmatched(r.output, res.Unmatched)
	}
}

// route resolves the origin and destination tokens, prompting for those left empty.
func (r *Runner) route(from, to string) (services.Descriptor, services.Descriptor, error) {
	var origin, destination services.Descriptor
	var err error

	if from == "" {
		origin, err = r.promptService("Transfer from:", services.Descriptors(), "")
	} else {
		origin, err = services.Lookup(from)
	}
	if err != nil {
		return origin, destination, err
	}

	if to == "" {
		destination, err = r.promptService("Transfer to:", destinations(), origin.Token)
		if err != nil {
			return origin, destination, err
		}
	} else {
		if destination, err = services.Lookup(to); err != nil {
			return origin, destination, err
		}
		if !destination.SupportsAuth {
			return origin, destination, fmt.Errorf("%w: %s cannot be a transfer destination", shared.ErrUnsupported, destination.Name)
		}
	}

	if origin.Token == destination.Token {
		return origin, destination, fmt.Errorf("%w: origin and destination are both %s", shared.ErrInvalidArgument, origin.Name)
	}
	return origin, destination, nil
}

func destinations() []services.Descriptor {
	var out []services.Descriptor
	for _, token := range services.DestinationTokens() {
		if d, err := services.Lookup(token); err == nil {
			out = append(out, d)
		}
	}
	return out
}

// promptService asks the user to pick one of options by number, leaving out skip.
func (r *Runner) promptService(title string, options []services.Descriptor, skip string) (services.Descriptor, error) {
	options = slices.DeleteFunc(slices.Clone(options), func(d services.Descriptor) bool { return d.Token == skip })
	if len(options) == 0 {
		return services.Descriptor{}, fmt.Errorf("%w: no service to choose from", shared.ErrInvalidArgument)
	}

	r.writePlain("%s\n", title)
	for i, d := range options {
		r.writePlain("  %d. %s\n", i+1, d.Name)
	}

	for {
		r.writePlain("Choose [1-%d]: ", len(options))
		line, err := r.readLine()
		if err != nil {
			return services.Descriptor{}, err
		}
		n, err := strconv.Atoi(line)
		if err == nil && n >= 1 && n <= len(options) {
			return options[n-1], nil
		}
		r.writePlain("Please enter a number between 1 and %d.\n", len(options))
	}
}

// choosePlaylists narrows playlists to what should be transferred.
//
// Named playlists win over --all; with neither, the user is asked which ones to leave out.
func (r *Runner) choosePlaylists(playlists []models.Playlist, names, exclude []string, all bool) ([]models.Playlist, error) {
	var selected []models.Playlist

	switch {
	case len(names) > 0:
		for _, name := range names {
			pl, ok := findPlaylist(playlists, name)
			if !ok {
				return nil, fmt.Errorf("%w: %q", shared.ErrPlaylistNotFound, name)
			}
			if !slices.Contains(selected, pl) {
				selected = append(selected, pl)
			}
		}
	case all:
		selected = slices.Clone(playlists)
	case len(playlists) == 0:
		r.writePlain("No playlists found.\n")
	default:
		formatter.PlaylistsTable(r.output, playlists)
		r.writePlain("Playlists to skip (e.g. 1 3 5-7), blank to transfer all: ")
		line, err := r.readLine()
		if err != nil {
			return nil, err
		}
		skip, err := parseSelection(line, len(playlists))
		if err != nil {
			return nil, err
		}
		for i, pl := range playlists {
			if !skip[i] {
				selected = append(selected, pl)
			}
		}
	}

	return slices.DeleteFunc(selected, func(pl models.Playlist) bool {
		return slices.ContainsFunc(exclude, func(x string) bool { return matchesPlaylist(pl, x) })
	}), nil
}

func findPlaylist(playlists []models.Playlist, name string) (models.Playlist, bool) {
	for _, pl := range playlists {
		if pl.ID == name {
			return pl, true
		}
	}
	for _, pl := range playlists {
		if matchesPlaylist(pl, name) {
			return pl, true
		}
	}
	return models.Playlist{}, false
}

func matchesPlaylist(pl models.Playlist, ref string) bool {
	return pl.ID == ref || strings.EqualFold(strings.TrimSpace(pl.Name), strings.TrimSpace(ref))
}

// parseSelection turns "1 3 5-7" (commas also accepted) into zero-based indexes below n.
func parseSelection(input string, n int) (map[int]bool, error) {
	selected := map[int]bool{}
	fields := strings.FieldsFunc(input, func(r rune) bool { return r == ' ' || r == ',' || r == '\t' })

	for _, f := range fields {
		lo, hi, isRange := strings.Cut(f, "-")
		if !isRange {
			hi = lo
		}
		start, err1 := strconv.Atoi(lo)
		end, err2 := strconv.Atoi(hi)
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("%w: %q is not a number or range", shared.ErrInvalidInput, f)
		}
		if start > end {
			start, end = end, start
		}
		if start < 1 || end > n {
			return nil, fmt.Errorf("%w: %q is outside 1-%d", shared.ErrInvalidInput, f, n)
		}
		for i := start; i <= end; i++ {
			selected[i-1] = true
		}
	}
	return selected, nil
}

// readLine reads one trimmed line of input. A final line without a newline is still returned.
func (r *Runner) readLine() (string, error) {
	line, err := r.input.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("%w: input closed", shared.ErrMissingArgument)
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}
