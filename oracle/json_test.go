package oracle

import "testing"

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"plain fence", "```\n[1,2]\n```", `[1,2]`},
		{"leading whitespace", "  \n```json\n{}\n```  ", `{}`},
		{"unterminated fence", "```json\n{\"a\":1}", `{"a":1}`},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSON(tt.in); got != tt.want {
				t.Errorf("extractJSON(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}
	if err := decodeJSON("```json\n{\"name\":\"stripe\"}\n```", &v); err != nil {
		t.Fatalf("decodeJSON() error = %v", err)
	}
	if v.Name != "stripe" {
		t.Errorf("Name = %q, want %q", v.Name, "stripe")
	}

	if err := decodeJSON("", &v); err == nil {
		t.Error("decodeJSON(empty) error = nil, want error")
	}
	if err := decodeJSON("not json at all", &v); err == nil {
		t.Error("decodeJSON(garbage) error = nil, want error")
	}
}

func TestParseScore(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    float64
		wantErr bool
	}{
		{"plain", "0.85", 0.85, false},
		{"trailing period", "0.7.", 0.7, false},
		{"with prose", "Relevance: 0.9", 0.9, false},
		{"clamped high", "1.5", 1, false},
		{"clamped low", "-0.2", 0, false},
		{"integer", "1", 1, false},
		{"no number", "highly relevant", 0, true},
		{"empty", "", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseScore(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseScore(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseScore(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
