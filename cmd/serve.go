package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lexflowhq/lexflow/internal/audit"
	"github.com/lexflowhq/lexflow/internal/chat"
	"github.com/lexflowhq/lexflow/internal/config"
	"github.com/lexflowhq/lexflow/internal/db"
	"github.com/lexflowhq/lexflow/internal/llm"
	"github.com/lexflowhq/lexflow/internal/matter"
	"github.com/lexflowhq/lexflow/internal/notifications"
	"github.com/lexflowhq/lexflow/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the intake backend HTTP server",
	Long:  `Starts the lexflow HTTP server: chat intake API (HTTP and WebSocket), matter workflow API, audit trail, and handoff notifications.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		if servePort != 0 {
			cfg.Port = servePort
		}

		llmProvider, err := llm.NewProvider(string(cfg.Provider), cfg.Model)
		if err != nil {
			return fmt.Errorf("creating LLM provider: %w", err)
		}

		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return fmt.Errorf("creating data dir: %w", err)
		}
		dbPath := filepath.Join(cfg.DataDir, "lexflow.db")
		database, err := db.Open(dbPath)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		srv := server.New(server.Config{
			Port:           cfg.Port,
			DataDir:        cfg.DataDir,
			AllowedOrigins: cfg.AllowedOrigins,
		}, database, llmProvider, cfg.Model)

		registerAllRoutes(srv, database, cfg)

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if cfg.AuditRetentionDays > 0 {
			go auditRetentionSweep(ctx, database, cfg.AuditRetentionDays)
		}

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			srv.Shutdown(context.Background())
		}()

		fmt.Fprintf(os.Stderr, "lexflow server v%s starting on port %d\n", Version, cfg.Port)
		fmt.Fprintf(os.Stderr, "  Database: %s\n", dbPath)
		fmt.Fprintf(os.Stderr, "  Provider: %s (%s)\n", cfg.Provider, cfg.Model)

		return srv.Start()
	},
}

// registerAllRoutes wires up all feature routes.
func registerAllRoutes(srv *server.Server, database *db.DB, cfg *config.Config) {
	r := srv.Router()

	auditStore := audit.NewStore(database)
	audit.RegisterRoutes(r, auditStore)

	notifStore := notifications.NewStore(database)
	notifications.RegisterRoutes(r, notifStore)
	dispatcher := notifications.NewDispatcher(notifStore)

	matters := matter.NewManager(matter.NewStore(database), auditStore, dispatcher)
	matter.RegisterRoutes(r, matters)

	chatStore := chat.NewStore(database)
	processor := chat.NewProcessor(chatStore, srv.LLMProvider(), cfg.Model, matters)
	chat.RegisterRoutes(r, chatStore, processor)
}

// auditRetentionSweep deletes audit entries older than the retention window,
// once a day.
func auditRetentionSweep(ctx context.Context, database *db.DB, days int) {
	store := audit.NewStore(database)
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		cutoff := time.Now().UTC().AddDate(0, 0, -days)
		if n, err := store.DeleteBefore(ctx, cutoff); err != nil {
			fmt.Fprintf(os.Stderr, "audit retention sweep: %v\n", err)
		} else if n > 0 {
			fmt.Fprintf(os.Stderr, "audit retention sweep removed %d entries\n", n)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "override the configured HTTP port")
	rootCmd.AddCommand(serveCmd)
}
