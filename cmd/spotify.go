package main

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/tunetx/internal/server"
	"github.com/desertthunder/tunetx/internal/services"
	"github.com/desertthunder/tunetx/internal/shared"
)

const authTimeout = 2 * time.Minute

// SpotifyAuth runs the authorization code flow against a local callback server and saves the token.
func (r *Runner) SpotifyAuth(ctx context.Context, cmd *cli.Command) error {
	logger := shared.WithLogger(r.logger, "service", services.SpotifyDescriptor.Token)
	svc, err := r.spotifyService(services.WithLogger(logger))
	if err != nil {
		return err
	}

	state, err := shared.GenerateState()
	if err != nil {
		return fmt.Errorf("failed to generate state: %w", err)
	}

	addr, path, err := r.callbackAddr(svc.OAuthConfig().RedirectURL)
	if err != nil {
		return err
	}

	handler := server.NewOAuthHandler(svc, state, path)
	router := server.NewBasicRouter()
	router.Use(server.RequestLogger(logger))
	router.Handler(handler)

	srv, err := server.Serve(addr, router)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("callback server shutdown", "error", err)
		}
	}()
	logger.Debug("callback server listening", "addr", srv.Addr(), "path", path)

	authURL := svc.GetAuthURL(state)
	r.writePlain("Opening browser for Spotify authorization...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		logger.Debug("could not open browser", "error", err)
		r.writePlain("Open this URL in your browser:\n\n  %s\n\n", authURL)
	}
	r.writePlain("Waiting for the callback (timeout %s)...\n", authTimeout)

	waitCtx, cancel := context.WithTimeout(ctx, authTimeout)
	defer cancel()

	go func() {
		select {
		case err := <-srv.Errors():
			logger.Error("callback server failed", "error", err)
			cancel()
		case <-waitCtx.Done():
		}
	}()

	token, err := handler.Wait(waitCtx)
	if err != nil {
		return err
	}

	if err := r.saveTokens(token); err != nil {
		return err
	}

	if err := svc.Authenticate(ctx, token, nil); err != nil {
		return err
	}
	user, err := svc.CurrentUserID(ctx)
	if err != nil {
		logger.Warn("authorized but could not fetch the profile", "error", err)
		return r.writePlain("✓ Spotify authorized; token saved to %s\n", r.configFile())
	}
	return r.writePlain("✓ Authorized as %s; token saved to %s\n", user, r.configFile())
}

// SpotifyWhoAmI prints the user behind the saved token.
func (r *Runner) SpotifyWhoAmI(ctx context.Context, cmd *cli.Command) error {
	svc, err := r.service(ctx, services.SpotifyDescriptor.Token)
	if err != nil {
		return err
	}
	user, err := svc.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	return r.writePlain("%s\n", user)
}

// callbackAddr derives the listen address and callback path from the redirect URI.
//
// A redirect URI without a port falls back to the [server] section of the config.
func (r *Runner) callbackAddr(redirect string) (string, string, error) {
	u, err := url.Parse(redirect)
	if err != nil || u.Host == "" {
		return "", "", fmt.Errorf("%w: redirect_uri %q", shared.ErrInvalidConfig, redirect)
	}

	host, port := u.Hostname(), u.Port()
	if port == "" {
		port = strconv.Itoa(r.config.Server.Port)
	}
	if host == "" {
		host = r.config.Server.Host
	}

	path := u.Path
	if path == "" {
		path = "/callback"
	}
	return net.JoinHostPort(host, port), path, nil
}
