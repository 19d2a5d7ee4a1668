package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewDiscoverCmd creates the "discover" subcommand: find and verify output
// methods for a confirmed candidate.
func NewDiscoverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discover <candidate-id>",
		Short: "Discover verified data output methods for a candidate",
		Args:  cobra.ExactArgs(1),
		RunE:  runDiscover,
	}

	cmd.Flags().Int("select", -1, "Select the method at this index")
	cmd.Flags().Bool("json", false, "Emit the full record as JSON")

	return cmd
}

func runDiscover(cmd *cobra.Command, args []string) error {
	candidateID := args[0]
	selectIdx, _ := cmd.Flags().GetInt("select")
	asJSON, _ := cmd.Flags().GetBool("json")
	out := cmd.OutOrStdout()

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()

	outcome, err := a.engine.Discover(ctx, candidateID)
	if err != nil {
		return mapPipelineError(err)
	}
	rec := outcome.Record

	if selectIdx >= 0 {
		rec, err = a.engine.Select(ctx, rec, selectIdx)
		if err != nil {
			return mapPipelineError(err)
		}
	}

	if asJSON {
		return printJSON(out, rec)
	}
	if outcome.WasStale {
		fmt.Fprintln(out, "Previous discovery had expired; methods were re-discovered.")
	} else if !outcome.Refreshed {
		fmt.Fprintln(out, "Serving cached discovery (still fresh).")
	}
	printDiscovery(out, rec)
	return nil
}
