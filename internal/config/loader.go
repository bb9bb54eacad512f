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
//  2. file (YAML) if INSIGNIA_CONFIG is set
//  3. env (prefix INSIGNIA_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("INSIGNIA_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: INSIGNIA_ADDR, INSIGNIA_ACCEPT_SCORE, ...
	// Underscores are preserved to match the koanf tags on the struct.
	envProvider := env.Provider("INSIGNIA_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "insignia_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.ServerBase) == "":
		return fmt.Errorf("%w: server_base must not be empty", ErrInvalidConfig)
	case c.CacheDir == "":
		return fmt.Errorf("%w: cache_dir must not be empty", ErrInvalidConfig)
	case c.AcceptScore <= 0 || c.AcceptScore > 100:
		return fmt.Errorf("%w: accept_score must be in 1..100", ErrInvalidConfig)
	case c.ScrollStep <= 0:
		return fmt.Errorf("%w: scroll_step must be positive", ErrInvalidConfig)
	case c.LineHeight <= 0 || c.ScreenHeight <= 0:
		return fmt.Errorf("%w: display geometry must be positive", ErrInvalidConfig)
	}
	return nil
}
