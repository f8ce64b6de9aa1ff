package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bankstream/bankstream/internal/api"
	"github.com/bankstream/bankstream/internal/api/handlers"
	"github.com/bankstream/bankstream/internal/categories"
	"github.com/bankstream/bankstream/internal/config"
	"github.com/bankstream/bankstream/internal/ingest"
	"github.com/bankstream/bankstream/internal/kv"
	"github.com/bankstream/bankstream/internal/llm"
	"github.com/bankstream/bankstream/internal/logger"
	"github.com/bankstream/bankstream/internal/notes"
	"github.com/bankstream/bankstream/internal/store"
)

func newServeCommand() *cobra.Command {
	var configPath string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if port != 0 {
				cfg.Server.Port = port
			}
			return runServe(cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "bankstream.yaml", "config file path")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP port (overrides config)")

	return cmd
}

func runServe(cfg config.Config) error {
	log := logger.New()

	// Local key-value store backs categories and notes. Without a data
	// directory both live in memory for the process lifetime only.
	var kvStore kv.Store
	if cfg.Storage.DataDir != "" {
		fileStore, err := kv.NewFile(cfg.Storage.DataDir)
		if err != nil {
			return fmt.Errorf("opening data dir: %w", err)
		}
		kvStore = fileStore
	} else {
		log.Warn().Msg("No data directory configured - categories and notes will not persist")
		kvStore = kv.NewMemory()
	}

	txs := store.New()
	noteSvc := notes.NewService(kvStore, logger.WithComponent(log, "notes"))
	catSvc := categories.NewService(kvStore, txs, logger.WithComponent(log, "categories"))
	streamer := llm.NewGemini(cfg.Gemini.Model)
	mgr := ingest.NewManager(streamer, txs, noteSvc, logger.WithComponent(log, "ingest"))

	router := api.NewRouter(api.Handlers{
		Statements:   handlers.NewStatementsHandler(mgr, log),
		Transactions: handlers.NewTransactionsHandler(txs, catSvc, noteSvc, log),
		Categories:   handlers.NewCategoriesHandler(catSvc, log),
		Export:       handlers.NewExportHandler(txs, log),
	}, log)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
		// No WriteTimeout: the events endpoint holds its connection open
		// for the lifetime of an ingestion session.
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-quit:
	}

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info().Msg("Server exited")
	return nil
}
