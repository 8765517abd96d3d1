// Package main is the entry point for the Canopy HTTP server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Project-Sylos/Canopy/internal/api"
	"github.com/Project-Sylos/Canopy/internal/config"
	"github.com/Project-Sylos/Canopy/internal/log"
	"github.com/Project-Sylos/Canopy/sdk"
)

func main() {
	if err := serveCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	var (
		configPath string
		envFile    string
		host       string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "canopy-api",
		Short: "Start the Canopy category server",
		Long: `Start the Canopy category server.

Configuration is loaded in the following order (later sources override earlier):
  1. Default values
  2. JSON config file (if --config specified)
  3. .env file (if --env-file specified or .env exists in current directory)
  4. Environment variables
  5. Command line flags

Environment variables:
  HOST                 Server host to bind to (default: localhost)
  PORT                 Server port to listen on (default: 8086)
  CORS_ORIGINS         Comma-separated list of allowed origins
  STORE                Category store: duckdb, memory (default: duckdb)
  DB_PATH              DuckDB database file (default: ./canopy.db)
  ENABLE_CATEGORIES    Serve the category pages and endpoints (default: true)
  INDEX_URL            Redirect target for non-AJAX admin calls (default: /)
  SEED_FILE            YAML category tree loaded at start-up
  DEFAULT_LANGUAGE     Message language when Accept-Language matches none (default: en)
  ADMIN_API_KEYS       Comma-separated administrator API keys
  USER_API_KEYS        Comma-separated user API keys
  LOG_LEVEL            Log level: DEBUG, INFO, WARN, ERROR (default: INFO)
  LOG_FORMAT           Log format: pretty, json (default: pretty)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath, envFile, host, port)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to a JSON config file")
	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().StringVar(&host, "host", "", "Server host to bind to (default: localhost)")
	cmd.Flags().IntVar(&port, "port", 0, "Server port to listen on (default: 8086)")

	return cmd
}

func runServe(configPath, envFile, host string, port int) error {
	cfg, err := config.Load(configPath, envFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Command line flags win over everything else
	if host != "" {
		cfg.API.Host = host
	}
	if port != 0 {
		cfg.API.Port = port
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	logger := log.Configure(cfg.Log)

	canopy, err := sdk.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize canopy: %w", err)
	}

	server := api.NewServer(canopy)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		_ = canopy.Close()
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server shutdown complete")
	return nil
}
