package oracle

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// extractJSON strips markdown code fences that models wrap around JSON
// output despite instructions not to.
func extractJSON(text string) string {
	t := strings.TrimSpace(text)
	if after, ok := strings.CutPrefix(t, "```json"); ok {
		t = after
	} else if after, ok := strings.CutPrefix(t, "```"); ok {
		t = after
	}
	if before, ok := strings.CutSuffix(strings.TrimSpace(t), "```"); ok {
		t = before
	}
	return strings.TrimSpace(t)
}

// decodeJSON unmarshals oracle output after fence stripping.
func decodeJSON(text string, v any) error {
	clean := extractJSON(text)
	if clean == "" {
		return fmt.Errorf("oracle: empty response")
	}
	if err := json.Unmarshal([]byte(clean), v); err != nil {
		return fmt.Errorf("oracle: decode response: %w", err)
	}
	return nil
}

// parseScore extracts the first parseable number from a judgment reply and
// clamps it to [0,1]. Models asked for "a single number" still sometimes
// pad it with prose.
func parseScore(text string) (float64, error) {
	for _, field := range strings.Fields(strings.TrimSpace(text)) {
		field = strings.Trim(field, ".,:;")
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			continue
		}
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		return v, nil
	}
	return 0, fmt.Errorf("oracle: no score in response %q", text)
}
