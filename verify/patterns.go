package verify

import (
	"strings"

	"github.com/purelink-labs/purelink/identity"
)

// documentationPaths are the path segments tried under the tool's own
// domain, most specific first.
var documentationPaths = []string{
	"api/docs",
	"docs/api",
	"api-reference",
	"reference",
	"docs",
	"developers/docs",
	"developers",
}

// FallbackPatterns generates the ordered list of documentation URLs to try
// when the claimed URL is absent or dead. Patterns combine the tool domain
// with common documentation paths and subdomains, plus method-name-qualified
// variants. Returns nil when no domain is known.
func FallbackPatterns(domain, methodName string) []string {
	domain = sanitizeDomain(domain)
	if domain == "" {
		return nil
	}

	urls := make([]string, 0, len(documentationPaths)+6)
	for _, p := range documentationPaths {
		urls = append(urls, "https://"+domain+"/"+p)
	}
	urls = append(urls,
		"https://docs."+domain+"/api",
		"https://developers."+domain+"/docs",
		"https://developers."+domain+"/reference",
		"https://api."+domain+"/docs",
	)

	if slug := identity.Slug(methodName); methodName != "" && slug != "unknown" {
		urls = append(urls,
			"https://"+domain+"/docs/"+slug,
			"https://developers."+domain+"/docs/"+slug,
		)
	}

	return dedupe(urls)
}

// sanitizeDomain strips any scheme, path, and surrounding whitespace so a
// full URL handed in as "domain" still yields usable patterns.
func sanitizeDomain(domain string) string {
	d := strings.ToLower(strings.TrimSpace(domain))
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	if i := strings.IndexByte(d, '/'); i >= 0 {
		d = d[:i]
	}
	return strings.TrimPrefix(d, "www.")
}

func dedupe(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := urls[:0]
	for _, u := range urls {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
