package verify

import "testing"

func TestSpecificityScore(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want float64
	}{
		{"docs path boosted", "https://stripe.com/docs/api", specificityBase + specificityBoost},
		{"reference boosted", "https://developers.example.com/reference", specificityBase + specificityBoost},
		{"docs subdomain boosted", "https://docs.example.com/", specificityBase + specificityBoost},
		{"bare domain penalized", "https://stripe.com", specificityBase - barePagePenalty},
		{"category homepage penalized", "https://stripe.com/developers", specificityBase - genericPagePenalty},
		{"neutral path", "https://stripe.com/pricing/details", specificityBase},
		{"unparseable", "::not a url::", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SpecificityScore(tt.url); got != tt.want {
				t.Fatalf("SpecificityScore(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestSpecificityScoreOrdering(t *testing.T) {
	specific := SpecificityScore("https://developers.example.com/docs/rest-api")
	generic := SpecificityScore("https://example.com")
	if specific <= generic {
		t.Fatalf("specific %v should outrank bare domain %v", specific, generic)
	}
}
