package shared

import (
	"fmt"
	"path/filepath"

	"github.com/adrg/xdg"
)

const appName = "spt"

// DefaultConfigPath returns $XDG_CONFIG_HOME/spt/config.toml, creating the directory.
func DefaultConfigPath() (string, error) {
	p, err := xdg.ConfigFile(filepath.Join(appName, "config.toml"))
	if err != nil {
		return "", fmt.Errorf("failed to resolve config path: %w", err)
	}
	return p, nil
}

// DefaultDatabasePath returns $XDG_DATA_HOME/spt/spt.db, creating the directory.
func DefaultDatabasePath() (string, error) {
	p, err := xdg.DataFile(filepath.Join(appName, "spt.db"))
	if err != nil {
		return "", fmt.Errorf("failed to resolve database path: %w", err)
	}
	return p, nil
}

// DefaultLogPath returns $XDG_STATE_HOME/spt/spt.log, creating the directory.
func DefaultLogPath() (string, error) {
	p, err := xdg.StateFile(filepath.Join(appName, "spt.log"))
	if err != nil {
		return "", fmt.Errorf("failed to resolve log path: %w", err)
	}
	return p, nil
}

// DatabasePath returns the configured database path or the XDG default when unset.
func (c *Config) DatabasePath() (string, error) {
	if c.Database.Path != "" {
		return c.Database.Path, nil
	}
	return DefaultDatabasePath()
}
