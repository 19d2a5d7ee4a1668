package core

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure modes callers are expected to branch on.
// Network-level verification failures are not here on purpose: a dead URL is
// a scoring input for the verifier, not an error.
var (
	// ErrMalformedQuery rejects empty or whitespace-only input before any
	// network call is made.
	ErrMalformedQuery = errors.New("core: query is empty")

	// ErrOracleTimeout is returned when the oracle did not answer within
	// its deadline. Callers should surface "retry later", never cache an
	// empty result.
	ErrOracleTimeout = errors.New("core: oracle timed out")

	// ErrOracleUnavailable covers oracle transport failures and unusable
	// (empty, non-JSON) oracle output.
	ErrOracleUnavailable = errors.New("core: oracle unavailable")

	// ErrCandidateNotFound is returned when a candidate identity has no
	// record in the store.
	ErrCandidateNotFound = errors.New("core: candidate not found")

	// ErrNoSelection is returned by Confirm/Select when the requested
	// index does not address a proposal.
	ErrNoSelection = errors.New("core: selected index out of range")

	// ErrNoVerifiableMethod is returned when discovery produced no method
	// proposals at all. Unverified proposals are NOT this error; they are
	// retained with capped confidence.
	ErrNoVerifiableMethod = errors.New("core: no output methods discovered")
)

// CorruptRecordError reports a persisted record that failed to parse on
// read. Lookups skip the bad record and keep going; this type exists so the
// skip can be logged with enough context to repair the store by hand.
type CorruptRecordError struct {
	Path string // backing file
	Line int    // 1-based line in an append log, 0 for per-record files
	Err  error
}

func (e *CorruptRecordError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("core: corrupt record at %s:%d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("core: corrupt record at %s: %v", e.Path, e.Err)
}

func (e *CorruptRecordError) Unwrap() error {
	return e.Err
}
