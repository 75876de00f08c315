package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/spt/internal/shared"
)

// Setup writes the default config file when missing and initializes the track cache.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	if _, err := os.Stat(r.configPath); err == nil {
		r.logger.Info("config file exists", "path", r.configPath)
	} else {
		r.logger.Info("config file not found, creating from template", "path", r.configPath)
		if err := shared.CreateConfigFile(r.configPath); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		config, err := shared.LoadConfig(r.configPath)
		if err != nil {
			return err
		}
		r.config = config
	}

	dbPath, err := r.currentConfig().DatabasePath()
	if err != nil {
		return err
	}
	r.logger.Info("initializing database", "path", dbPath)

	db, err := shared.OpenCache(r.currentConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	r.writePlainln("✓ Config: %s", r.configPath)
	r.writePlainln("✓ Cache: %s", dbPath)
	r.writePlainln("\nNext steps:")
	r.writePlainln("1. Set credentials.spotify.client_id and client_secret in %s", r.configPath)
	return r.writePlainln("2. Run 'spt auth' to authorize this client")
}
