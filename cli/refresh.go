package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRefreshCmd creates the "refresh" subcommand: re-discover methods whose
// freshness window is closing. Runs one sweep by default; --watch keeps the
// process alive on the configured cron schedule.
func NewRefreshCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Re-discover output methods that are about to expire",
		Args:  cobra.NoArgs,
		RunE:  runRefresh,
	}

	cmd.Flags().Bool("watch", false, "Keep running, sweeping on the configured cron schedule")

	return cmd
}

func runRefresh(cmd *cobra.Command, args []string) error {
	watch, _ := cmd.Flags().GetBool("watch")
	out := cmd.OutOrStdout()

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()

	if watch {
		return a.engine.RunRefreshSchedule(ctx, a.cfg.Refresh.Cron, a.cfg.RefreshWindow())
	}

	result, err := a.engine.RefreshExpiring(ctx, a.cfg.RefreshWindow())
	if err != nil {
		return mapPipelineError(err)
	}
	fmt.Fprintf(out, "Scanned %d expiring, refreshed %d, failed %d\n",
		result.Scanned, result.Refreshed, result.Failed)
	if result.Failed > 0 {
		return exitError(exitRuntime, "%d refreshes failed", result.Failed)
	}
	return nil
}
