package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lexflowhq/lexflow/internal/audit"
	"github.com/lexflowhq/lexflow/internal/config"
	"github.com/lexflowhq/lexflow/internal/db"
	"github.com/lexflowhq/lexflow/internal/matter"
	mcpserver "github.com/lexflowhq/lexflow/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing matter status, checklist, and audit trail tools for lawyer-side AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		dbPath := filepath.Join(cfg.DataDir, "lexflow.db")
		database, err := db.Open(dbPath)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		auditStore := audit.NewStore(database)
		matters := matter.NewManager(matter.NewStore(database), auditStore, nil)

		mcpserver.Version = Version
		fmt.Fprintf(os.Stderr, "lexflow MCP server started on stdio (db=%s)\n", dbPath)

		srv := mcpserver.NewServer(matters, auditStore)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
