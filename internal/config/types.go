package config

// Config is the top-level redline configuration, corresponding to .redline.yml.
type Config struct {
	Port     int          `yaml:"port" koanf:"port"`
	DataDir  string       `yaml:"data_dir" koanf:"data_dir"`
	AllowAll bool         `yaml:"allow_all_origins" koanf:"allow_all_origins"`
	Include  []string     `yaml:"include" koanf:"include"`
	Exclude  []string     `yaml:"exclude" koanf:"exclude"`
	Palette  []string     `yaml:"palette" koanf:"palette"`
	Search   SearchConfig `yaml:"search" koanf:"search"`
}

// SearchConfig holds the optional semantic comment search settings.
// Search stays disabled while APIKey is empty.
type SearchConfig struct {
	APIKey         string `yaml:"api_key" koanf:"api_key"`
	EmbeddingModel string `yaml:"embedding_model" koanf:"embedding_model"`
}
