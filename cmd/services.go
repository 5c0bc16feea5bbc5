package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/oauth2"

	"github.com/desertthunder/tunetx/internal/services"
	"github.com/desertthunder/tunetx/internal/shared"
)

// ServiceFactory builds the backend described by d.
type ServiceFactory func(ctx context.Context, d services.Descriptor) (services.Service, error)

// buildService is the default [ServiceFactory]. It reads credentials from the runner's config.
func (r *Runner) buildService(ctx context.Context, d services.Descriptor) (services.Service, error) {
	creds := r.config.Credentials
	opts := []services.Option{services.WithLogger(shared.WithLogger(r.logger, "service", d.Token))}

	switch d.Token {
	case services.SpotifyDescriptor.Token:
		svc, err := r.spotifyService(opts...)
		if err != nil {
			return nil, err
		}
		onRefresh := func(t *oauth2.Token) {
			if err := r.saveTokens(t); err != nil {
				r.logger.Warn("could not persist refreshed spotify token", "error", err)
			}
		}
		if err := svc.Authenticate(ctx, creds.Spotify.Token(), onRefresh); err != nil {
			return nil, err
		}
		return svc, nil

	case services.YouTubeDescriptor.Token:
		return services.NewYouTubeService(creds.YouTube.ProxyURL, creds.YouTube.AuthFile, opts...), nil

	case services.DeezerDescriptor.Token:
		return services.NewDeezerService(creds.Deezer.UserID, opts...), nil

	case services.LocalDescriptor.Token:
		db, err := shared.OpenLibrary(r.config.Database)
		if err != nil {
			return nil, fmt.Errorf("opening local library: %w", err)
		}
		r.closers = append(r.closers, db)
		return services.NewLocalService(db), nil
	}
	return nil, fmt.Errorf("%w: %s", shared.ErrUnsupported, d.Token)
}

// spotifyService builds an unauthenticated Spotify client from the configured credentials.
func (r *Runner) spotifyService(opts ...services.Option) (*services.SpotifyService, error) {
	svc, err := services.NewSpotifyService(r.config.Credentials.Spotify.Map(), opts...)
	if err != nil {
		return nil, fmt.Errorf("%w (set them in %s or SPOTIFY_CLIENT_ID/SPOTIFY_CLIENT_SECRET)", err, r.configFile())
	}
	return svc, nil
}

// saveTokens stores token in the running config and, when a config path is known, on disk.
//
// The file is re-read before writing so secrets taken from the environment never land in it.
func (r *Runner) saveTokens(token *oauth2.Token) error {
	if r.config == nil {
		return errors.New("config is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.config.Credentials.Spotify.Update(token); err != nil {
		return fmt.Errorf("failed to update spotify configuration: %w", err)
	}
	if r.configPath == "" {
		return nil
	}

	onDisk := shared.DefaultConfig()
	if _, err := os.Stat(r.configPath); err == nil {
		if onDisk, err = shared.LoadConfig(r.configPath); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
	}
	if err := onDisk.Credentials.Spotify.Update(token); err != nil {
		return fmt.Errorf("failed to update spotify configuration: %w", err)
	}
	if err := shared.SaveConfig(r.configPath, onDisk); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

func (r *Runner) configFile() string {
	if r.configPath == "" {
		return "config.toml"
	}
	return r.configPath
}
