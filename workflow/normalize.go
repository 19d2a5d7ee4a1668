package workflow

import (
	"strings"

	"github.com/purelink-labs/purelink/core"
	"github.com/purelink-labs/purelink/identity"
)

// normalizeResolution repairs an oracle resolution in place: domains are
// stripped to bare hosts, website URLs and logo URLs are derived when
// missing, confidences are clamped, the selected index is forced into
// range, and every candidate gets its deterministic identity.
//
// An empty candidate list is replaced with a single low-confidence
// placeholder built from the raw query, so downstream records always have
// a selectable candidate.
func normalizeResolution(res core.Resolution, rawQuery string) core.Resolution {
	if len(res.Candidates) == 0 {
		res.Candidates = []core.ToolCandidate{{
			ToolName:   strings.TrimSpace(rawQuery),
			Confidence: 0.1,
			Notes:      "no confident identification; placeholder from raw query",
		}}
	}

	for i := range res.Candidates {
		c := &res.Candidates[i]
		c.ToolName = strings.TrimSpace(c.ToolName)
		if c.ToolName == "" {
			c.ToolName = strings.TrimSpace(rawQuery)
		}
		c.WebsiteDomain = normalizeDomain(c.WebsiteDomain)
		if c.WebsiteURL == "" && c.WebsiteDomain != "" {
			c.WebsiteURL = "https://" + c.WebsiteDomain
		}
		if c.LogoURL == "" && c.WebsiteDomain != "" {
			c.LogoURL = "https://logo.clearbit.com/" + c.WebsiteDomain
		}
		c.Confidence = clamp01(c.Confidence)
		c.CandidateID = identity.Candidate(c.ToolName, c.WebsiteDomain)
	}

	if res.SelectedIndex < 0 || res.SelectedIndex >= len(res.Candidates) {
		res.SelectedIndex = 0
	}
	return res
}

// normalizeDomain reduces whatever the oracle put in the domain field to a
// bare lowercase host.
func normalizeDomain(domain string) string {
	d := strings.ToLower(strings.TrimSpace(domain))
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	if i := strings.IndexByte(d, '/'); i >= 0 {
		d = d[:i]
	}
	return strings.TrimPrefix(d, "www.")
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
