package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/redlinehq/redline/internal/document"
	"github.com/redlinehq/redline/internal/mcp"
)

var renderHTML bool

var renderCmd = &cobra.Command{
	Use:   "render <doc> [section]",
	Short: "Render a section with its annotations applied",
	Long: `Prints a section's text with highlights and comments woven in. With only a
document id, prints the annotation summary for the whole document instead.`,
	Args: cobra.RangeArgs(1, 2),
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
		ctx := context.Background()

		if len(args) == 1 {
			entries, err := svc.Summary(ctx, args[0])
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("No annotations.")
				return nil
			}
			for _, e := range entries {
				marker := " "
				if e.Stale {
					marker = "!"
				}
				fmt.Printf("%s %-9s %s  %q  %s\n", marker, e.Kind, e.SectionID, e.PreviewText, e.Detail)
			}
			return nil
		}

		segments, err := svc.Render(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		if renderHTML {
			fmt.Println(document.SegmentsHTML(segments))
			return nil
		}
		fmt.Println(mcp.FormatSegments(segments))
		return nil
	},
}

func init() {
	renderCmd.Flags().BoolVar(&renderHTML, "html", false, "Emit HTML instead of plain text")
	rootCmd.AddCommand(renderCmd)
}
