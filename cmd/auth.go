package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"
)

func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage Spotify authorization",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Authorize with Spotify via the browser consent flow",
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Show whether a valid Spotify token is cached",
				Action: r.AuthStatus,
			},
		},
	}
}

// AuthLogin runs the browser consent flow and caches the token on disk.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	authenticator, err := r.newAuthenticator()
	if err != nil {
		return err
	}

	if _, err := authenticator.Login(ctx); err != nil {
		return err
	}

	r.logger.Info("authentication successful", "token", r.config.Credentials.Spotify.TokenPath)
	return r.writePlain("✓ Logged in to Spotify\n")
}

// AuthStatus reports the cached token's state without refreshing it.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	authenticator, err := r.newAuthenticator()
	if err != nil {
		return err
	}

	valid, err := authenticator.Status()
	if err != nil {
		return err
	}

	if valid {
		return r.writePlain("✓ Logged in, token is valid\n")
	}

	token := r.config.Credentials.Spotify.TokenPath
	if _, statErr := os.Stat(token); statErr == nil {
		return r.writePlain("! Token cached but expired, it will refresh on next use\n")
	}
	return r.writePlain("✗ Not logged in, run 'encore auth login'\n")
}
