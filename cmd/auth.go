package main

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/spt/internal/server"
	"github.com/desertthunder/spt/internal/services"
	"github.com/desertthunder/spt/internal/shared"
	"github.com/desertthunder/spt/internal/tasks"
)

// Auth performs the OAuth2 authorization code flow for Spotify.
//
// Starts a local HTTP server, opens browser for user authorization, and saves the exchanged tokens
// to the config file.
func (r *Runner) Auth(ctx context.Context, cmd *cli.Command) error {
	config := r.currentConfig()
	creds := config.Credentials.Spotify
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return fmt.Errorf("%w: Spotify client_id and client_secret must be set in %s", shared.ErrMissingCredentials, r.configPath)
	}

	svc := r.spotify
	if svc == nil {
		var err error
		if svc, err = services.NewSpotifyService(creds.Map()); err != nil {
			return fmt.Errorf("failed to create Spotify service: %w", err)
		}
	}

	redirect, err := url.Parse(svc.Config().RedirectURL)
	if err != nil {
		return fmt.Errorf("%w: redirect_uri: %v", shared.ErrInvalidConfig, err)
	}
	addr := redirect.Host
	if addr == "" {
		addr = net.JoinHostPort(config.Server.Host, strconv.Itoa(config.Server.Port))
	}

	state, err := shared.GenerateState()
	if err != nil {
		return err
	}

	srv := &server.CallbackServer{Addr: addr, Timeout: cmd.Duration("timeout"), Logger: r.logger}
	if err := srv.Listen(); err != nil {
		return err
	}
	handler := server.NewOAuthHandler(svc.Config(), state, redirect.Path)

	authURL := svc.GetAuthURL(state)
	r.writePlainln("Opening browser for Spotify authorization...")
	r.writePlainln("If the browser does not open, visit:\n%s\n", authURL)
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warn("failed to open browser", "error", err)
	}

	r.logger.Info("waiting for authorization callback", "url", srv.URL()+redirect.Path)
	result, err := srv.Wait(ctx, handler)
	if err != nil {
		return err
	}

	if err := config.Credentials.Spotify.Update(result.Token); err != nil {
		return fmt.Errorf("failed to update spotify configuration: %w", err)
	}
	if err := shared.SaveConfig(r.configPath, config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlainln("✓ Tokens saved to %s", r.configPath)
	return r.writePlainln("You can now use: spt playback --status")
}

// AuthRefresh exchanges the stored refresh token for a new access token.
func (r *Runner) AuthRefresh(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.execute(ctx, tasks.RefreshAuthentication{}); err != nil {
		return err
	}
	return r.writePlainln("✓ Token refreshed")
}
