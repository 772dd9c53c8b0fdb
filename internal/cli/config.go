// Package cli implements the claw command line client for the registry.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
)

// DefaultServerURL is where claw points unless configured otherwise.
const DefaultServerURL = "http://localhost:8080"

// Config is the on-disk CLI configuration, stored as TOML under the XDG
// config directory (~/.config/clawhub/config.toml on Linux).
type Config struct {
	ServerURL string `toml:"server_url"`
	Token     string `toml:"token"` // publish token, minted via POST /api/tokens
}

func configPath() (string, error) {
	return xdg.ConfigFile(filepath.Join("clawhub", "config.toml"))
}

// LoadConfig reads the config file. A missing file is not an error; it
// yields the defaults so first-run commands work.
func LoadConfig() (*Config, error) {
	cfg := &Config{ServerURL: DefaultServerURL}

	path, err := configPath()
	if err != nil {
		return nil, fmt.Errorf("cli: resolving config path: %w", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("cli: parsing %s: %w", path, err)
	}
	if cfg.ServerURL == "" {
		cfg.ServerURL = DefaultServerURL
	}
	return cfg, nil
}

// Save writes the config back to disk. The file holds a credential, so it
// is not group or world readable.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return fmt.Errorf("cli: resolving config path: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("cli: opening %s: %w", path, err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("cli: writing %s: %w", path, err)
	}
	return nil
}
