package cmd

import (
	"github.com/spf13/cobra"

	"github.com/lexflowhq/lexflow/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "lexflow",
	Short: "Legal-intake chatbot backend with a matter-formation workflow",
	Long: `LexFlow is the backend for an AI legal-intake assistant. It runs the
intake conversation, extracts client facts, opens matters, and drives each
matter through a staged formation workflow with checklists, a case brief,
risk assessment, and lawyer handoff recommendations.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
