package main

import (
	"context"
	"fmt"
	"time"

	"github.com/peerwave/backend/internal/database"
	"github.com/peerwave/backend/internal/social"
	"github.com/spf13/cobra"
)

func cleanupCmd() *cobra.Command {
	var retention time.Duration

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete stale guest accounts now",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			defer database.Close()

			if retention == 0 {
				retention = cfg.GuestRetention
			}

			engine := social.NewEngine(database.DB)
			cutoff := time.Now().UTC().Add(-retention)

			deleted, err := engine.CleanupGuests(context.Background(), cutoff)
			if err != nil {
				return fmt.Errorf("cleanup failed: %w", err)
			}

			fmt.Printf("deleted %d stale guest accounts\n", deleted)
			return nil
		},
	}

	cmd.Flags().DurationVar(&retention, "retention", 0,
		"override guest retention window (default from config)")

	return cmd
}
