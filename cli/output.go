package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/purelink-labs/purelink/core"
)

// printJSON writes v as indented JSON, the machine-readable output mode.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printResolution(w io.Writer, rec core.CandidateRecord) {
	fmt.Fprintf(w, "Record:     %s\n", rec.ID)
	if rec.Data.Disambiguation != "" {
		fmt.Fprintf(w, "Note:       %s\n", rec.Data.Disambiguation)
	}
	fmt.Fprintln(w)
	for i, c := range rec.Data.Candidates {
		marker := " "
		if i == rec.Data.SelectedIndex {
			marker = "*"
		}
		fmt.Fprintf(w, "%s [%d] %s", marker, i, c.ToolName)
		if c.Developer != "" {
			fmt.Fprintf(w, " (%s)", c.Developer)
		}
		fmt.Fprintf(w, "  %.2f\n", c.Confidence)
		if c.WebsiteURL != "" {
			fmt.Fprintf(w, "      %s\n", c.WebsiteURL)
		}
		fmt.Fprintf(w, "      id: %s\n", c.CandidateID)
	}
}

func printDiscovery(w io.Writer, rec core.MethodRecord) {
	fmt.Fprintf(w, "Record:     %s\n", rec.ID)
	fmt.Fprintf(w, "Candidate:  %s\n", rec.CandidateID)
	fmt.Fprintf(w, "Expires:    %s\n", rec.Data.ExpiresAt.Format(time.RFC3339))
	fmt.Fprintln(w)
	for i, m := range rec.Data.Methods {
		marker := " "
		if i == rec.Data.SelectedIndex {
			marker = "*"
		}
		status := "unverified"
		if m.Verified {
			status = "verified"
		}
		fmt.Fprintf(w, "%s [%d] %s (%s)  %.2f  %s\n", marker, i, m.Name, m.Type, m.Confidence, status)
		if m.DocsURL != "" {
			fmt.Fprintf(w, "      docs: %s\n", m.DocsURL)
		}
		if m.Endpoint != "" {
			fmt.Fprintf(w, "      endpoint: %s\n", m.Endpoint)
		}
		fmt.Fprintf(w, "      id: %s\n", m.MethodID)
	}
}
