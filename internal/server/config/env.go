package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// dotenvFiles are loaded before the environment is parsed. Variables that
// are already set in the process environment win over file values.
var dotenvFiles = []string{".env"}

// parseEnv overlays values from .env files and environment variables.
// Only variables that are present change the corresponding field.
func parseEnv(cfg *Config) error {
	for _, f := range dotenvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
