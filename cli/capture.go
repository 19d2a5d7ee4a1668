package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/purelink-labs/purelink/core"
)

// NewCaptureCmd creates the "capture" subcommand: resolve a free-text query
// into tool candidates.
func NewCaptureCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "capture <query>...",
		Short: "Resolve a tool name into identified candidates",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runCapture,
	}

	cmd.Flags().Int("select", -1, "Confirm the candidate at this index")
	cmd.Flags().Bool("json", false, "Emit the full record as JSON")

	return cmd
}

func runCapture(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	selectIdx, _ := cmd.Flags().GetInt("select")
	asJSON, _ := cmd.Flags().GetBool("json")
	out := cmd.OutOrStdout()

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()

	rec, err := a.engine.Resolve(ctx, query)
	if err != nil {
		return mapPipelineError(err)
	}

	if selectIdx >= 0 {
		rec, err = a.engine.Confirm(ctx, rec, selectIdx)
		if err != nil {
			return mapPipelineError(err)
		}
	}

	if asJSON {
		return printJSON(out, rec)
	}
	printResolution(out, rec)
	return nil
}

// mapPipelineError translates the pipeline error taxonomy into exit codes.
func mapPipelineError(err error) error {
	switch {
	case errors.Is(err, core.ErrMalformedQuery), errors.Is(err, core.ErrNoSelection):
		return exitError(exitValidation, "%v", err)
	case errors.Is(err, core.ErrOracleTimeout):
		return exitError(exitTimeout, "%v", err)
	case errors.Is(err, core.ErrOracleUnavailable):
		return exitError(exitProvider, "%v", err)
	case errors.Is(err, core.ErrCandidateNotFound):
		return exitError(exitNotFound, "%v", err)
	case errors.Is(err, core.ErrNoVerifiableMethod):
		return exitError(exitRuntime, "%v", err)
	default:
		return err
	}
}
