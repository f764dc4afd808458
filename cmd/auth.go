package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/tunesync/internal/server"
	"github.com/desertthunder/tunesync/internal/services"
	"github.com/desertthunder/tunesync/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

const authTimeout = 2 * time.Minute

// SpotifyAuth performs OAuth2 authentication flow for Spotify.
//
// Starts a local HTTP server on the redirect URI, opens the browser for user authorization and saves the token.
func (r *Runner) SpotifyAuth(ctx context.Context, cmd *cli.Command) error {
	if err := r.config.RequireSpotify(); err != nil {
		return err
	}
	cfg := r.config.Credentials.Spotify
	auth := services.NewSpotifyAuthenticator(cfg)

	token, err := r.doOAuth(ctx, cfg.RedirectURI, auth, auth.AuthURL)
	if err != nil {
		return err
	}

	if err := services.SaveToken(cfg.TokenPath, token); err != nil {
		return err
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Token saved to %s\n\n", cfg.TokenPath)
	r.writePlain("You can now use: tunesync reconcile --service spotify --collection liked --from-dir ./music\n")
	return nil
}

// doOAuth serves the redirect URI until the provider calls back or the flow times out.
func (r *Runner) doOAuth(ctx context.Context, redirectURI string, exchanger server.Exchanger, authURL func(state string, opts ...oauth2.AuthCodeOption) string) (*oauth2.Token, error) {
	state := shared.GenerateID()

	router := server.NewBasicRouter()
	router.Use(server.LoggingMiddleware(r.logger))

	srv, path, err := server.ListenRedirect(redirectURI, router)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidConfig, err)
	}
	handler := server.NewOAuthHandler(exchanger, state, path)
	router.Handler(handler)

	serverErrors := make(chan error, 1)
	r.logger.Infof("starting OAuth server at %v", srv.Addr())
	srv.Serve(serverErrors)
	defer func() {
		if err := srv.Shutdown(context.WithoutCancel(ctx)); err != nil {
			r.logger.Warn("error shutting down server", "error", err)
		}
	}()

	url := authURL(state)
	r.writePlain("→ Opening browser for Spotify authorization...\n")
	if err := shared.OpenBrowser(url); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", url)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	waitCtx, cancel := context.WithTimeout(ctx, authTimeout)
	defer cancel()

	var result server.OAuthResult
	select {
	case result = <-handler.Result():
	case err := <-serverErrors:
		return nil, fmt.Errorf("server error: %w", err)
	case <-waitCtx.Done():
		return nil, fmt.Errorf("%w: authorization timed out after %v", shared.ErrAuthFailed, authTimeout)
	}

	if err := result.Error(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	if result.Token == nil {
		return nil, fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
	}
	return result.Token, nil
}
