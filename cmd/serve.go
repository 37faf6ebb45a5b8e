package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/redlinehq/redline/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the redline review server",
	Long:  `Starts the HTTP server with the document review API, annotation change feed, and comment search.`,
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

		port := cfg.Port
		if cmd.Flags().Changed("port") {
			port = servePort
		}

		srv := server.New(server.Config{
			Port:     port,
			DataDir:  cfg.DataDir,
			AllowAll: cfg.AllowAll,
			Palette:  cfg.EffectivePalette(),
		}, database, index)

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			srv.Shutdown(context.Background())
		}()

		fmt.Fprintf(os.Stderr, "redline server v%s starting on port %d\n", Version, port)
		fmt.Fprintf(os.Stderr, "  Data dir: %s\n", cfg.DataDir)
		if index != nil {
			fmt.Fprintf(os.Stderr, "  Comment search: enabled (%d indexed)\n", index.Count())
		} else {
			fmt.Fprintln(os.Stderr, "  Comment search: disabled (no API key configured)")
		}

		return srv.Start()
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8450, "Port to listen on")
	rootCmd.AddCommand(serveCmd)
}
