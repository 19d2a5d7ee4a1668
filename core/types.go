// Package core provides the foundational types for the Purelink discovery
// pipeline.
//
// This package contains:
//   - Domain types: ToolCandidate, OutputMethod
//   - Persistence envelopes: CandidateRecord, MethodRecord
//   - The error taxonomy shared by the stores, verifier, and workflow
package core

import (
	"time"
)

// MethodType classifies one way of getting structured data out of a tool.
// The set of types is intentionally small to keep downstream connector
// selection tractable.
type MethodType string

const (
	MethodAPI              MethodType = "api"
	MethodManagedConnector MethodType = "managed-connector-protocol"
	MethodExport           MethodType = "export"
	MethodWebhook          MethodType = "webhook"
	MethodDatabase         MethodType = "database"
	MethodThirdParty       MethodType = "third-party-connector"
)

// String returns the string representation of the MethodType.
func (t MethodType) String() string {
	return string(t)
}

// KnownMethodTypes lists every valid MethodType in declaration order.
func KnownMethodTypes() []MethodType {
	return []MethodType{
		MethodAPI,
		MethodManagedConnector,
		MethodExport,
		MethodWebhook,
		MethodDatabase,
		MethodThirdParty,
	}
}

// RecordKind tags a persisted record with the workflow phase that produced it.
type RecordKind string

const (
	KindCaptureIntent   RecordKind = "capture-intent"
	KindDiscoverMethods RecordKind = "discover-methods"
)

// Provenance records how a result came to be: straight from the oracle with
// a human confirmation, replayed from the store, or produced by the
// background refresh sweep.
type Provenance string

const (
	ProvenanceUserConfirmed Provenance = "user-input+oracle"
	ProvenanceStoreHit      Provenance = "store-cache"
	ProvenanceDiscovery     Provenance = "candidate-oracle-discovery"
	ProvenanceRefresh       Provenance = "scheduled-refresh"
)

// ToolCandidate is one proposed identification of a real-world software tool.
// Confidence is informative only within the resolution batch that produced
// the candidate; it is not comparable across batches.
type ToolCandidate struct {
	CandidateID   string  `json:"candidate_id"`
	ToolName      string  `json:"tool_name"`
	Developer     string  `json:"developer,omitempty"`
	WebsiteDomain string  `json:"website_domain,omitempty"`
	WebsiteURL    string  `json:"website_url,omitempty"`
	LogoURL       string  `json:"logo_url,omitempty"`
	Confidence    float64 `json:"confidence"`
	Notes         string  `json:"notes,omitempty"`
}

// Resolution is the payload of a candidate record: the full proposal set
// plus which index the user (or auto-selection) picked.
type Resolution struct {
	Candidates     []ToolCandidate `json:"candidates"`
	SelectedIndex  int             `json:"selected_index"`
	Disambiguation string          `json:"disambiguation,omitempty"`
	Citations      []string        `json:"citations,omitempty"`
}

// Selected returns the chosen candidate. The second result is false when
// the selected index is out of range.
func (r Resolution) Selected() (ToolCandidate, bool) {
	if r.SelectedIndex < 0 || r.SelectedIndex >= len(r.Candidates) {
		return ToolCandidate{}, false
	}
	return r.Candidates[r.SelectedIndex], true
}

// OutputMethod is one concrete way to extract data from a confirmed tool.
//
// Invariant: a method with Verified=false never carries a confidence above
// the configured unverified ceiling. The verifier enforces this; the stores
// trust it.
type OutputMethod struct {
	MethodID   string     `json:"method_id"`
	Type       MethodType `json:"method_type"`
	Name       string     `json:"method_name"`
	Endpoint   string     `json:"endpoint,omitempty"`
	DocsURL    string     `json:"docs_url,omitempty"`
	AuthType   string     `json:"auth_type,omitempty"`
	Confidence float64    `json:"confidence"`
	Verified   bool       `json:"verified"`
	Notes      string     `json:"notes,omitempty"`
}

// Discovery is the payload of a method record. ExpiresAt is fixed at
// creation time; freshness is re-evaluated against it on every read.
type Discovery struct {
	Methods       []OutputMethod `json:"methods"`
	SelectedIndex int            `json:"selected_index"`
	Source        string         `json:"discovery_source"`
	ExpiresAt     time.Time      `json:"expires_at"`
}

// Selected returns the chosen method. The second result is false when the
// selected index is out of range (including the "nothing selected yet"
// sentinel of -1).
func (d Discovery) Selected() (OutputMethod, bool) {
	if d.SelectedIndex < 0 || d.SelectedIndex >= len(d.Methods) {
		return OutputMethod{}, false
	}
	return d.Methods[d.SelectedIndex], true
}

// RecordMeta carries provenance details about the client that wrote a record.
type RecordMeta struct {
	Model  string `json:"model,omitempty"`
	Client string `json:"client,omitempty"`
}

// CandidateRecord is the immutable persistence envelope for one resolution.
// Records are append-only: a re-resolution of the same query is a new record
// referencing the same candidate identity, never an update in place.
type CandidateRecord struct {
	ID          string     `json:"id"`
	Kind        RecordKind `json:"kind"`
	Version     int        `json:"version"`
	CreatedAt   time.Time  `json:"created_at"`
	Source      Provenance `json:"source"`
	CandidateID string     `json:"candidate_id"`
	RawInput    string     `json:"raw_input"`
	Data        Resolution `json:"data"`
	Meta        RecordMeta `json:"meta,omitempty"`
}

// MethodRecord is the immutable persistence envelope for one discovery,
// scoped under its parent candidate identity.
type MethodRecord struct {
	ID          string     `json:"id"`
	Kind        RecordKind `json:"kind"`
	Version     int        `json:"version"`
	CreatedAt   time.Time  `json:"created_at"`
	Source      Provenance `json:"source"`
	CandidateID string     `json:"candidate_id"`
	RawInput    string     `json:"raw_input"`
	Data        Discovery  `json:"data"`
	Meta        RecordMeta `json:"meta,omitempty"`
}
