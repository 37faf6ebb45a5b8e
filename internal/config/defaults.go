package config

import "github.com/redlinehq/redline/internal/document"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Port:    8450,
		DataDir: ".redline",
		Include: []string{"**/*.md"},
		Exclude: document.DefaultExcludes,
		Search: SearchConfig{
			EmbeddingModel: "text-embedding-3-small",
		},
	}
}
