package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/trackdechets/bsd-events/internal/app"
)

func init() {
	replicateCmd.Flags().Bool("follow", false, "keep polling after the log is drained")
	rootCmd.AddCommand(replicateCmd)
}

var replicateCmd = &cobra.Command{
	Use:   "replicate",
	Short: "Drain the event log into the fast store, then exit",
	RunE:  runReplicate,
}

func runReplicate(cmd *cobra.Command, args []string) error {
	log, cfg, err := setup(cmd)
	if err != nil {
		return err
	}
	follow, _ := cmd.Flags().GetBool("follow")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, log, cfg)
	if err != nil {
		log.Error("app init failed", "error", err)
		log.Sync()
		return err
	}
	defer a.Close()

	if follow {
		a.Replicator.Run(ctx)
		return nil
	}
	passes, total, err := a.Replicator.Drain(ctx)
	if err != nil {
		log.Error("replication failed", "passes", passes, "replicated", total, "error", err)
		return err
	}
	log.Info("replication drained", "passes", passes, "replicated", total)
	return nil
}
