package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/redlinehq/redline/internal/annotation"
)

var loadCmd = &cobra.Command{
	Use:   "load <doc> <file>",
	Short: "Load annotations onto a document from a JSON export",
	Long: `Replaces the document's annotations with the records in the given JSON file.
Records whose offsets no longer fit are re-anchored by text search; records
that cannot be placed are dropped.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		data, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[1], err)
		}
		var records []annotation.Record
		if err := json.Unmarshal(data, &records); err != nil {
			return fmt.Errorf("parsing %s: %w", args[1], err)
		}

		database, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		svc := buildReviewService(cfg, database, nil)
		loaded, err := svc.Load(context.Background(), args[0], records)
		if err != nil {
			return err
		}

		fmt.Printf("Loaded %d of %d annotations\n", loaded, len(records))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)
}
