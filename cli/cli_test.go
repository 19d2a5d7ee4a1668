package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/purelink-labs/purelink/core"
)

func TestMapPipelineError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"malformed query", core.ErrMalformedQuery, exitValidation},
		{"bad selection", fmt.Errorf("wrap: %w", core.ErrNoSelection), exitValidation},
		{"oracle timeout", core.ErrOracleTimeout, exitTimeout},
		{"oracle unavailable", core.ErrOracleUnavailable, exitProvider},
		{"unknown candidate", core.ErrCandidateNotFound, exitNotFound},
		{"no methods", core.ErrNoVerifiableMethod, exitRuntime},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapped := mapPipelineError(tt.err)
			var exitErr *ExitError
			if !errors.As(mapped, &exitErr) {
				t.Fatalf("mapPipelineError(%v) = %T, want *ExitError", tt.err, mapped)
			}
			if exitErr.Code != tt.wantCode {
				t.Errorf("code = %d, want %d", exitErr.Code, tt.wantCode)
			}
		})
	}

	// Unrecognized errors pass through for the generic exit path.
	plain := errors.New("disk full")
	if got := mapPipelineError(plain); got != plain {
		t.Errorf("mapPipelineError(plain) = %v, want passthrough", got)
	}
}

func TestExitError(t *testing.T) {
	err := exitError(exitProvider, "provider %q rejected key", "anthropic")
	if err.Code != exitProvider {
		t.Errorf("Code = %d, want %d", err.Code, exitProvider)
	}
	if err.Error() != `provider "anthropic" rejected key` {
		t.Errorf("Error() = %q", err.Error())
	}
}
