package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/redlinehq/redline/internal/document"
	"github.com/redlinehq/redline/internal/progress"
)

var importCmd = &cobra.Command{
	Use:   "import <path>",
	Short: "Import markdown documents for review",
	Long: `Imports a markdown file, or every matching markdown file under a directory,
splitting each document into addressable sections.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		database, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		store := document.NewStore(database)
		path := args[0]

		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		ctx := context.Background()
		if !info.IsDir() {
			doc, err := document.ImportFile(ctx, store, path)
			if err != nil {
				return err
			}
			fmt.Printf("Imported %q (%d sections)\n", doc.Title, len(doc.Sections))
			return nil
		}

		docs, err := document.ImportDir(ctx, store, path, cfg.Include, cfg.Exclude, progress.NewReporter())
		if err != nil {
			return err
		}
		sections := 0
		for _, d := range docs {
			sections += len(d.Sections)
		}
		fmt.Printf("Imported %d documents (%d sections)\n", len(docs), sections)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
