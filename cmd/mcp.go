package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/redlinehq/redline/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing annotation and search tools for AI agents.`,
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

		index, err := buildSearchIndex(cfg)
		if err != nil {
			return fmt.Errorf("creating search index: %w", err)
		}

		svc := buildReviewService(cfg, database, index)

		mcpserver.Version = Version
		fmt.Fprintf(os.Stderr, "redline MCP server started on stdio (data=%s)\n", cfg.DataDir)

		return mcpserver.NewServer(svc, index).Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
