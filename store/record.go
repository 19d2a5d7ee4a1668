package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/purelink-labs/purelink/core"
)

// Schema versions of the persisted record envelopes. Bump when the payload
// shape changes; readers skip records they cannot parse rather than failing
// the lookup.
const (
	CandidateSchemaVersion = 3
	MethodSchemaVersion    = 2
)

// NewRecordID returns a time-ordered unique record id (UUIDv7), so the
// lexical order of ids matches creation order.
func NewRecordID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// NewCandidateRecord assembles the immutable envelope for one resolution.
// The candidate identity is taken from the selected candidate.
func NewCandidateRecord(rawInput string, res core.Resolution, source core.Provenance, meta core.RecordMeta) (core.CandidateRecord, error) {
	selected, ok := res.Selected()
	if !ok {
		return core.CandidateRecord{}, core.ErrNoSelection
	}
	return core.CandidateRecord{
		ID:          NewRecordID(),
		Kind:        core.KindCaptureIntent,
		Version:     CandidateSchemaVersion,
		CreatedAt:   time.Now().UTC(),
		Source:      source,
		CandidateID: selected.CandidateID,
		RawInput:    rawInput,
		Data:        res,
		Meta:        meta,
	}, nil
}

func validateCandidateRecord(rec core.CandidateRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("store: candidate record id is empty")
	}
	if rec.CandidateID == "" {
		return fmt.Errorf("store: candidate record %s has no identity", rec.ID)
	}
	if rec.Kind != core.KindCaptureIntent {
		return fmt.Errorf("store: candidate record %s has kind %q", rec.ID, rec.Kind)
	}
	return nil
}

func validateMethodRecord(rec core.MethodRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("store: method record id is empty")
	}
	if rec.CandidateID == "" {
		return fmt.Errorf("store: method record %s has no parent candidate", rec.ID)
	}
	if rec.Kind != core.KindDiscoverMethods {
		return fmt.Errorf("store: method record %s has kind %q", rec.ID, rec.Kind)
	}
	return nil
}

// newMethodRecord assembles a method record with an expiration computed from
// the given clock and TTL. Any expiration already present on the discovery
// payload is overwritten; the store owns expiration policy.
func newMethodRecord(candidateID string, disc core.Discovery, rawInput string, source core.Provenance, meta core.RecordMeta, now time.Time, ttl time.Duration) core.MethodRecord {
	created := now.UTC()
	disc.ExpiresAt = created.Add(ttl)
	return core.MethodRecord{
		ID:          NewRecordID(),
		Kind:        core.KindDiscoverMethods,
		Version:     MethodSchemaVersion,
		CreatedAt:   created,
		Source:      source,
		CandidateID: candidateID,
		RawInput:    rawInput,
		Data:        disc,
		Meta:        meta,
	}
}
