package cmd

import (
	"github.com/spf13/cobra"

	"github.com/lexflowhq/lexflow/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize lexflow configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure lexflow for your firm and generates a .lexflow.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
