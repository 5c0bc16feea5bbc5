package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/tunetx/internal/formatter"
	"github.com/desertthunder/tunetx/internal/services"
	"github.com/desertthunder/tunetx/internal/shared"
)

// LocalImport reads songs from a CSV file into a local playlist, or into liked songs with --liked.
func (r *Runner) LocalImport(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("%w: CSV file", shared.ErrMissingArgument)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	songs, err := formatter.ReadSongsCSV(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	name := ""
	if !cmd.Bool("liked") {
		if name = strings.TrimSpace(cmd.String("playlist")); name == "" {
			name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
	}

	svc, err := r.service(ctx, services.LocalDescriptor.Token)
	if err != nil {
		return err
	}
	local, ok := svc.(*services.LocalService)
	if !ok {
		return fmt.Errorf("%w: local import needs the SQLite library", shared.ErrUnsupported)
	}

	id, err := local.Import(ctx, name, songs)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	r.logger.Info("imported songs", "file", path, "playlist", id, "songs", len(songs))

	if name == "" {
		return r.writePlain("Imported %d song(s) into liked songs\n", len(songs))
	}
	return r.writePlain("Imported %d song(s) into %q (%s)\n", len(songs), name, id)
}
