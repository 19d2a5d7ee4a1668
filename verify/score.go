package verify

import (
	"net/url"
	"strings"
)

const (
	specificityBase    = 0.5
	specificityBoost   = 0.35
	barePagePenalty    = 0.3
	genericPagePenalty = 0.15
)

// specificTokens mark a URL as documenting something concrete rather than
// being a landing page.
var specificTokens = []string{"api-reference", "docs", "reference", "guide"}

// genericSegments are single-segment category homepages that exist for
// almost every vendor and prove nothing about the claimed method.
var genericSegments = map[string]struct{}{
	"developers": {},
	"developer":  {},
	"api":        {},
	"platform":   {},
	"products":   {},
}

// SpecificityScore rates how method-specific a URL looks, in [0,1].
// Documentation path tokens raise the score; bare domains and category
// homepages lower it. Unparseable URLs score zero.
func SpecificityScore(rawURL string) float64 {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return 0
	}

	host := strings.ToLower(u.Hostname())
	path := strings.ToLower(strings.Trim(u.EscapedPath(), "/"))
	score := specificityBase

	switch {
	case hasSpecificToken(path) || strings.HasPrefix(host, "docs."):
		score += specificityBoost
	case path == "":
		score -= barePagePenalty
	default:
		if _, generic := genericSegments[path]; generic {
			score -= genericPagePenalty
		}
	}

	return clamp01(score)
}

func hasSpecificToken(path string) bool {
	for _, seg := range strings.Split(path, "/") {
		for _, tok := range specificTokens {
			if seg == tok {
				return true
			}
		}
	}
	return false
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
