package cmd

import (
	"github.com/spf13/cobra"

	"github.com/redlinehq/redline/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize redline configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure redline for your project and generates a .redline.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
