package core

import (
	"context"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Backend base URL.
	BaseURL string `envconfig:"BASE_URL" default:"http://localhost:5000"`

	// Directory holding the session database.
	StateDir string `envconfig:"STATE_DIR"`
}

func (c *Config) Init(_ context.Context) error {
	if err := envconfig.Process("chirp", c); err != nil {
		return err
	}

	if c.StateDir == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return err
		}
		c.StateDir = filepath.Join(dir, "chirp")
	}

	return nil
}
