package main

import (
	"context"

	"github.com/urfave/cli/v3"
	"github.com/zetachan/encore/internal/shared"
)

// Setup initializes the checkpoint database and optionally writes a
// starter config file.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	if path := cmd.String("config"); path != "" {
		if err := shared.CreateConfigFile(path); err != nil {
			return err
		}
		r.writePlain("✓ Wrote starter config to %s\n", path)
	}

	if _, err := r.openStore(); err != nil {
		return err
	}

	r.logger.Info("database initialized", "path", r.config.Database.Path)
	return r.writePlain("✓ Checkpoint database ready at %s\n", r.config.Database.Path)
}
