package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/redlinehq/redline/internal/annotation"
)

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (REDLINE_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables: REDLINE_PORT -> port,
	// REDLINE_SEARCH_API_KEY -> search.api_key, etc.
	if err := k.Load(env.Provider("REDLINE_", ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, "REDLINE_"))
		return strings.Replace(s, "search_", "search.", 1)
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}

	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	for _, color := range c.Palette {
		if strings.TrimSpace(color) == "" {
			return fmt.Errorf("palette entries must be non-empty")
		}
	}

	return nil
}

// EffectivePalette returns the configured highlight palette, falling back
// to the engine default when none is set.
func (c *Config) EffectivePalette() []string {
	if len(c.Palette) > 0 {
		return c.Palette
	}
	return annotation.DefaultPalette
}
