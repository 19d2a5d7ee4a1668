package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewLinkCmd creates the "link" subcommand: the full pipeline in one call,
// from free text to verified output methods.
func NewLinkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "link <query>...",
		Short: "Resolve a tool and discover its output methods in one step",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runLink,
	}

	cmd.Flags().Bool("json", false, "Emit both records as JSON")

	return cmd
}

func runLink(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	asJSON, _ := cmd.Flags().GetBool("json")
	out := cmd.OutOrStdout()

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()

	candRec, err := a.engine.Resolve(ctx, query)
	if err != nil {
		return mapPipelineError(err)
	}
	cand, ok := candRec.Data.Selected()
	if !ok {
		return exitError(exitRuntime, "resolution produced no selectable candidate")
	}

	outcome, err := a.engine.Discover(ctx, cand.CandidateID)
	if err != nil {
		return mapPipelineError(err)
	}

	if asJSON {
		return printJSON(out, struct {
			Candidate any `json:"candidate"`
			Methods   any `json:"methods"`
		}{candRec, outcome.Record})
	}

	fmt.Fprintf(out, "Identified %s as %s\n\n", query, cand.ToolName)
	printResolution(out, candRec)
	fmt.Fprintln(out)
	printDiscovery(out, outcome.Record)
	return nil
}
