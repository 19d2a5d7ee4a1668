package verify

import (
	"strings"
	"testing"
)

func TestFallbackPatternsCount(t *testing.T) {
	urls := FallbackPatterns("stripe.com", "")
	if len(urls) < 9 {
		t.Fatalf("len(FallbackPatterns()) = %d, want >= 9", len(urls))
	}
	seen := map[string]struct{}{}
	for _, u := range urls {
		if _, dup := seen[u]; dup {
			t.Fatalf("duplicate pattern %q", u)
		}
		seen[u] = struct{}{}
		if !strings.Contains(u, "stripe.com") {
			t.Fatalf("pattern %q does not target the domain", u)
		}
	}
}

func TestFallbackPatternsMethodQualified(t *testing.T) {
	urls := FallbackPatterns("stripe.com", "REST API")
	var found bool
	for _, u := range urls {
		if strings.HasSuffix(u, "/docs/rest-api") {
			found = true
		}
	}
	if !found {
		t.Fatalf("FallbackPatterns() = %v, want a method-name-qualified /docs/rest-api variant", urls)
	}
}

func TestFallbackPatternsSanitizesDomain(t *testing.T) {
	urls := FallbackPatterns("https://www.stripe.com/pricing", "")
	if len(urls) == 0 {
		t.Fatal("FallbackPatterns() empty for URL-shaped domain")
	}
	for _, u := range urls {
		if strings.Contains(u, "www.") || strings.Contains(u, "/pricing") {
			t.Fatalf("pattern %q not sanitized", u)
		}
	}
}

func TestFallbackPatternsEmptyDomain(t *testing.T) {
	if urls := FallbackPatterns("", "REST API"); urls != nil {
		t.Fatalf("FallbackPatterns(\"\") = %v, want nil", urls)
	}
}

func TestCandidateURLsClaimedFirst(t *testing.T) {
	urls := candidateURLs(Request{
		Domain:     "stripe.com",
		MethodName: "REST API",
		ClaimedURL: "https://stripe.com/docs/api",
		Endpoint:   "https://api.stripe.com/v1",
	})
	if len(urls) < 3 {
		t.Fatalf("len(candidateURLs()) = %d, want >= 3", len(urls))
	}
	if urls[0] != "https://stripe.com/docs/api" {
		t.Fatalf("urls[0] = %q, want the claimed URL first", urls[0])
	}
	if urls[1] != "https://api.stripe.com/v1" {
		t.Fatalf("urls[1] = %q, want the endpoint second", urls[1])
	}
}
