package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/tunetx/internal/shared"
)

// SetupConfig writes the example configuration to the --config path.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := r.configFile()
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}
	r.logger.Info("config file created", "path", path)
	return r.writePlain("Created %s. Fill in your credentials, then run `tunetx spotify auth`.\n", path)
}

// SetupLocal initializes the local library database and runs migrations.
func (r *Runner) SetupLocal(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("initializing database", "path", r.config.Database.Path)

	db, err := shared.OpenLibrary(r.config.Database)
	if err != nil {
		return fmt.Errorf("failed to set up local library: %w", err)
	}
	defer db.Close()

	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	return r.writePlain("Local library ready at %s\n", r.config.Database.Path)
}
