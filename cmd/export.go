package cmd

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export <doc>",
	Short: "Export a document's annotations as JSON",
	Long:  `Writes every annotation on the document to stdout as a JSON array of records, suitable for redline load.`,
	Args:  cobra.ExactArgs(1),
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

		svc := buildReviewService(cfg, database, nil)
		records, err := svc.Export(context.Background(), args[0])
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
