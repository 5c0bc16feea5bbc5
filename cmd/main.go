package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/tunetx/internal/shared"
)

func main() {
	runner := NewRunner(RunnerOpts{})
	defer runner.Close()

	if err := NewApp(runner).Run(context.Background(), os.Args); err != nil {
		code := report(runner.logger, err)
		runner.Close()
		os.Exit(code)
	}
}

// NewApp builds the root command around r.
func NewApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tunetx",
		Usage:   "Transfer playlists and liked songs between Spotify, YouTube Music, Deezer & a local library",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
				Sources: cli.EnvVars("TUNETX_CONFIG"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Log debug output",
			},
			&cli.BoolFlag{
				Name:  "logs",
				Usage: "Mirror the log file to stderr",
			},
		},
		Before:   r.Setup,
		Commands: r.register(),
	}
}

// Setup loads configuration and opens the log file before any command runs.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	r.configPath = cmd.String("config")
	config, err := shared.LoadConfigOrDefault(r.configPath)
	if err != nil {
		return ctx, err
	}
	r.config = config

	path := config.Logging.File
	if path == "" {
		path = "tunetx.log"
	}
	var mirror io.Writer
	if cmd.Bool("logs") {
		mirror = os.Stderr
	}

	logger, closer, err := shared.NewFileLogger(path, mirror)
	if err != nil {
		r.logger.Warn("logging to stderr only", "error", err)
		logger = r.logger
	} else {
		r.closers = append(r.closers, closer)
	}
	if cmd.Bool("debug") {
		shared.SetLogLevel(logger, log.DebugLevel)
	}
	r.SetLogger(logger)
	return ctx, nil
}

// report prints err for the user and returns the process exit code.
func report(logger *log.Logger, err error) int {
	switch {
	case errors.Is(err, context.Canceled):
		return 130
	case errors.Is(err, shared.ErrNotAuthenticated), errors.Is(err, shared.ErrTokenExpired):
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	case errors.Is(err, shared.ErrMissingCredentials), errors.Is(err, shared.ErrInvalidConfig), errors.Is(err, shared.ErrMissingConfig):
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return 2
	case errors.Is(err, shared.ErrMissingArgument), errors.Is(err, shared.ErrInvalidArgument):
		fmt.Fprintf(os.Stderr, "Usage error: %v\n", err)
		return 64
	}
	logger.Error("application error", "error", err)
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return 1
}
