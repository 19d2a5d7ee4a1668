// Package oracle is the sole boundary to the external proposal-generating
// capability.
//
// The oracle is treated as unreliable and slow: every call carries a hard
// timeout, and its output may contain plausible-but-false claims. Nothing
// the oracle returns is trusted until it has passed through the verify
// package downstream.
package oracle

import (
	"context"
	"time"

	"github.com/purelink-labs/purelink/core"
	"github.com/purelink-labs/purelink/verify"
)

// Policy defaults for oracle calls.
const (
	DefaultTimeout      = 30 * time.Second
	DefaultMaxProposals = 5
)

// Config bounds oracle behavior.
type Config struct {
	// Model is the model identifier passed to the provider.
	Model string

	// Timeout is the hard per-call deadline.
	Timeout time.Duration

	// MaxProposals caps how many candidates or methods one call may
	// return; excess proposals are dropped from the tail.
	MaxProposals int
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxProposals <= 0 {
		c.MaxProposals = DefaultMaxProposals
	}
	return c
}

// Gateway is what the workflow layer consumes. Implementations return
// core.ErrOracleTimeout or core.ErrOracleUnavailable (possibly wrapped) on
// failure; callers never cache an empty result as an answer.
type Gateway interface {
	// ResolveCandidates proposes tool identifications for a free-text
	// query, ordered best first. Candidate identities are not assigned
	// here; the workflow normalizes and addresses the proposals.
	ResolveCandidates(ctx context.Context, query string) (core.Resolution, error)

	// DiscoverMethods proposes output methods for a confirmed candidate.
	// Proposals carry unverified claims; method identities are unset.
	DiscoverMethods(ctx context.Context, cand core.ToolCandidate) ([]core.OutputMethod, error)

	// RelevanceJudge scores whether a fetched page specifically
	// documents a claimed method.
	verify.RelevanceJudge
}
