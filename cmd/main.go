package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/trackdechets/bsd-events/internal/app"
	"github.com/trackdechets/bsd-events/internal/platform/envutil"
	"github.com/trackdechets/bsd-events/internal/platform/logger"
)

var rootCmd = &cobra.Command{
	Use:           "bsd-events",
	Short:         "Replicate BSD event streams and serve document snapshots",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	flagInterval  string
	flagBatchSize int
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagInterval, "interval", "", "replicator polling interval (e.g. 5s), overrides REPLICATOR_INTERVAL")
	rootCmd.PersistentFlags().IntVar(&flagBatchSize, "batch-size", 0, "events per replication pass, overrides REPLICATOR_BATCH_SIZE")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup builds the logger and the configuration, applying command-line overrides.
func setup(cmd *cobra.Command) (*logger.Logger, app.Config, error) {
	log, err := logger.New(envutil.String("LOG_MODE", "development", nil))
	if err != nil {
		return nil, app.Config{}, fmt.Errorf("init logger: %w", err)
	}
	log.Info("Loading environment variables...")
	cfg := app.LoadConfig(log)
	if err := applyFlags(cmd, &cfg); err != nil {
		log.Sync()
		return nil, app.Config{}, err
	}
	return log, cfg, nil
}
