package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/redlinehq/redline/internal/config"
	"github.com/redlinehq/redline/internal/db"
	"github.com/redlinehq/redline/internal/document"
	"github.com/redlinehq/redline/internal/review"
	"github.com/redlinehq/redline/internal/search"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `redline init` to create a config file", err)
	}
	return cfg, nil
}

// openDatabase opens the annotation database under the data dir, creating
// the directory on first use.
func openDatabase(cfg *config.Config) (*db.DB, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	database, err := db.Open(filepath.Join(cfg.DataDir, "redline.db"))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return database, nil
}

// buildSearchIndex creates the comment search index when an API key is
// configured. Returns nil when search is disabled.
func buildSearchIndex(cfg *config.Config) (*search.Index, error) {
	apiKey := cfg.Search.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, nil
	}
	embedder := search.NewOpenAIEmbedder(apiKey, cfg.Search.EmbeddingModel)
	return search.NewIndex(embedder)
}

// buildReviewService wires a review service on top of an open database.
func buildReviewService(cfg *config.Config, database *db.DB, index *search.Index) *review.Service {
	docs := document.NewStore(database)
	records := review.NewStore(database)
	var commentIndex review.CommentIndex
	if index != nil {
		commentIndex = index
	}
	return review.NewService(docs, records, review.NewHub(), commentIndex, cfg.EffectivePalette())
}
