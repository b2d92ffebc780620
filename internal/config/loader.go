package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if ARCTRACK_CONFIG is set
//  3. env (prefix ARCTRACK_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("ARCTRACK_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: ARCTRACK_ADDR, ARCTRACK_USER_DB_PATH, ...
	// Keys keep their underscores to match the koanf tags on the struct.
	envProvider := env.Provider("ARCTRACK_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "arctrack_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	switch {
	case cfg.Addr == "":
		return nil, fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case cfg.Store != StoreSQLite && cfg.Store != StoreMemory:
		return nil, fmt.Errorf("%w: unknown store %q", ErrInvalidConfig, cfg.Store)
	case cfg.Store == StoreSQLite && cfg.UserDBPath == "":
		return nil, fmt.Errorf("%w: user_db_path must not be empty", ErrInvalidConfig)
	case cfg.ChartDBPath == "":
		return nil, fmt.Errorf("%w: chart_db_path must not be empty", ErrInvalidConfig)
	}
	return &cfg, nil
}
