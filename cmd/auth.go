package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/tessera/internal/repositories"
	"github.com/desertthunder/tessera/internal/server"
	"github.com/desertthunder/tessera/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin runs the authorization code flow and stores the resulting token.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if err := r.login(ctx, !cmd.Bool("no-browser")); err != nil {
		return err
	}

	user, err := r.spotify.UserProfile(ctx)
	if err != nil {
		r.logger.Warn("logged in but failed to fetch profile", "error", err)
		return r.writePlain("✓ Logged in to Spotify\n")
	}
	return r.writePlain("✓ Logged in to Spotify as %s\n", displayName(user.DisplayName, user.ID))
}

// login opens the browser (or prints the URL), waits for the callback and saves the token.
func (r *Runner) login(ctx context.Context, openBrowser bool) error {
	if err := r.openSpotify(ctx); err != nil {
		return err
	}

	state, err := shared.GenerateState()
	if err != nil {
		return err
	}

	redirectURI := r.config.Credentials.Spotify.RedirectURI
	handler := server.NewOAuthHandler(r.spotify, redirectURI, state)
	authURL := r.spotify.GetAuthURL(state)

	r.logger.Debug("starting OAuth flow", "addr", r.config.Server.Addr(), "redirect_uri", redirectURI)

	if openBrowser {
		if err := r.openURL(authURL); err != nil {
			r.logger.Warn("failed to open browser", "error", err)
			r.writePlain("Open this URL to continue:\n%s\n", authURL)
		}
	} else {
		r.writePlain("Open this URL to continue:\n%s\n", authURL)
	}

	token, err := server.AwaitToken(ctx, r.config.Server.Addr(), handler, r.authWait, r.logger)
	if err != nil {
		return err
	}

	if err := repositories.NewTokenStore(r.store).Save(token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return r.bindToken(ctx, token)
}

// AuthLogout forgets the token and the cached catalog.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.openStore(); err != nil {
		return err
	}
	if err := repositories.NewTokenStore(r.store).Clear(); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	if err := r.catalogCache().Clear(); err != nil {
		return fmt.Errorf("failed to clear catalog cache: %w", err)
	}
	if r.spotify != nil {
		r.spotify.Logout()
	}
	return r.writePlain("✓ Logged out\n")
}

// AuthStatus reports the logged-in user by calling the profile endpoint.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(ctx); err != nil {
		return err
	}

	user, err := r.spotify.UserProfile(ctx)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(user, true)
	}

	r.writePlain("✓ Authenticated\n")
	r.writePlain("User: %s\n", displayName(user.DisplayName, user.ID))
	if user.Email != "" {
		r.writePlain("Email: %s\n", user.Email)
	}
	if user.Product != "" {
		r.writePlain("Plan: %s\n", user.Product)
	}
	return nil
}

func displayName(name, id string) string {
	if name == "" {
		return id
	}
	return fmt.Sprintf("%s (%s)", name, id)
}
