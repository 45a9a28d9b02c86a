package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/trackdechets/bsd-events/internal/app"
)

func applyFlags(cmd *cobra.Command, cfg *app.Config) error {
	if cmd.Flags().Changed("interval") {
		d, err := time.ParseDuration(flagInterval)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid --interval %q", flagInterval)
		}
		cfg.Replicator.Interval = d
	}
	if cmd.Flags().Changed("batch-size") {
		if flagBatchSize <= 0 {
			return fmt.Errorf("--batch-size must be positive, got %d", flagBatchSize)
		}
		cfg.Replicator.BatchSize = flagBatchSize
	}
	return nil
}
