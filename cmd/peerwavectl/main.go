// peerwavectl is the operations CLI: migrations, guest cleanup, and seed
// data for development.
package main

import (
	"fmt"
	"os"

	"github.com/peerwave/backend/internal/config"
	"github.com/peerwave/backend/internal/database"
	"github.com/peerwave/backend/internal/logger"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "peerwavectl",
		Short: "Peerwave backend operations CLI",
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(cleanupCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads config and connects to the database. Every subcommand needs
// both.
func setup() (*config.Config, error) {
	cfg := config.Load()

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := database.Initialize(cfg.DatabaseURL, false); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return cfg, nil
}
