package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/purelink-labs/purelink/store"
)

// NewSearchCmd creates the "search" subcommand: full-text lookup over
// previously captured candidates. Works entirely offline.
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <terms>...",
		Short: "Search previously captured tools by name, developer, or domain",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSearch,
	}

	cmd.Flags().Int("limit", 10, "Maximum results")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	limit, _ := cmd.Flags().GetInt("limit")
	out := cmd.OutOrStdout()

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()

	idx, err := store.BuildCandidateIndex(ctx, a.candidates)
	if err != nil {
		return fmt.Errorf("building search index: %w", err)
	}
	defer idx.Close()

	ids, err := idx.Search(ctx, query, limit)
	if err != nil {
		return fmt.Errorf("searching: %w", err)
	}
	if len(ids) == 0 {
		fmt.Fprintln(out, "No captured tools match.")
		return nil
	}

	for _, id := range ids {
		rec, ok, err := a.candidates.GetByIdentity(ctx, id)
		if err != nil || !ok {
			continue
		}
		cand, ok := rec.Data.Selected()
		if !ok {
			continue
		}
		fmt.Fprintf(out, "%s\n", cand.ToolName)
		if cand.WebsiteDomain != "" {
			fmt.Fprintf(out, "    %s\n", cand.WebsiteDomain)
		}
		fmt.Fprintf(out, "    id: %s\n", id)
	}
	return nil
}
