// Package store persists resolution and discovery records.
//
// Both stores are append-only logs plus derived latest-by-identity views:
// records are never mutated in place, corrections are new records. Two
// backends share the same record shape — a JSONL file layout (the default)
// and SQLite.
package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/purelink-labs/purelink/core"
)

const (
	defaultStoreDir  = ".purelink"
	candidateSubdir  = "capture-intent"
	methodSubdir     = "discover-methods"
	logsSubdir       = "logs"
	indexLogFilename = "index.jsonl"
)

// DefaultMethodTTL is how long a discovery stays fresh. A named policy
// constant, overridable per store.
const DefaultMethodTTL = 30 * 24 * time.Hour

// CandidateStore is the permanent cache of confirmed tool identities.
type CandidateStore interface {
	// Put appends an immutable record and updates the derived indexes.
	Put(ctx context.Context, rec core.CandidateRecord) error

	// GetByQuery returns the most recent record whose stored raw query
	// normalizes identically to the given one.
	GetByQuery(ctx context.Context, query string) (core.CandidateRecord, bool, error)

	// GetByIdentity returns the latest record for a candidate identity.
	GetByIdentity(ctx context.Context, id string) (core.CandidateRecord, bool, error)

	// Latest returns the latest record per identity, ordered by record id.
	Latest(ctx context.Context) ([]core.CandidateRecord, error)

	Close() error
}

// Freshness is the three-way result of a method store lookup. Callers need
// to distinguish "never discovered" from "discovered but expired" to decide
// between first-time discovery and an expiry notice.
type Freshness int

const (
	FreshnessAbsent Freshness = iota
	FreshnessStale
	FreshnessFresh
)

// String returns the string representation of the Freshness.
func (f Freshness) String() string {
	switch f {
	case FreshnessAbsent:
		return "absent"
	case FreshnessStale:
		return "stale"
	case FreshnessFresh:
		return "fresh"
	default:
		return "unknown"
	}
}

// MethodStore holds discovered output methods per candidate identity, each
// record carrying an expiration fixed at creation time.
type MethodStore interface {
	// Put appends an immutable record and updates the derived indexes.
	Put(ctx context.Context, rec core.MethodRecord) error

	// GetFresh returns the latest record for the candidate along with its
	// freshness, re-evaluated against the clock on every call.
	GetFresh(ctx context.Context, candidateID string) (core.MethodRecord, Freshness, error)

	// MarkRefreshed writes a new record with a freshly computed
	// expiration and returns it.
	MarkRefreshed(ctx context.Context, candidateID string, disc core.Discovery, rawInput string, source core.Provenance, meta core.RecordMeta) (core.MethodRecord, error)

	// Expiring returns the latest record per candidate whose expiration
	// falls within the given window (including already-expired records).
	Expiring(ctx context.Context, within time.Duration) ([]core.MethodRecord, error)

	Close() error
}

// NormalizeQuery canonicalizes a raw user query for store lookups:
// lowercase, trimmed, inner whitespace collapsed.
func NormalizeQuery(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}

// DefaultDir returns the default data directory, ~/.purelink.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, defaultStoreDir), nil
}

// evaluateFreshness applies the freshness rule: a record is fresh iff now is
// strictly before its expiration. A zero (missing or malformed) expiration
// fails safe toward stale, forcing re-verification.
func evaluateFreshness(rec core.MethodRecord, now time.Time) Freshness {
	exp := rec.Data.ExpiresAt
	if exp.IsZero() {
		return FreshnessStale
	}
	if now.Before(exp) {
		return FreshnessFresh
	}
	return FreshnessStale
}
