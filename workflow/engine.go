// Package workflow ties the stores, the oracle gateway, and the verifier
// into the four pipeline operations: resolve, confirm, discover, select.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/purelink-labs/purelink/core"
	"github.com/purelink-labs/purelink/oracle"
	"github.com/purelink-labs/purelink/otel"
	"github.com/purelink-labs/purelink/store"
	"github.com/purelink-labs/purelink/verify"
)

// clientName tags records with the writer, for later store audits.
const clientName = "purelink"

// Engine executes the discovery pipeline. All dependencies are injected;
// metrics may be nil.
type Engine struct {
	candidates store.CandidateStore
	methods    store.MethodStore
	gateway    oracle.Gateway
	verifier   *verify.Verifier
	metrics    *otel.Metrics
	logger     *slog.Logger
	model      string
}

// Options configures optional Engine collaborators.
type Options struct {
	// Metrics receives pipeline instrumentation. Nil disables recording.
	Metrics *otel.Metrics

	// Model is stamped into record metadata as the proposing model.
	Model string

	Logger *slog.Logger
}

// NewEngine wires the pipeline together. Stores, gateway, and verifier are
// required.
func NewEngine(candidates store.CandidateStore, methods store.MethodStore, gateway oracle.Gateway, verifier *verify.Verifier, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		candidates: candidates,
		methods:    methods,
		gateway:    gateway,
		verifier:   verifier,
		metrics:    opts.Metrics,
		logger:     logger,
		model:      opts.Model,
	}
}

// meta builds the record metadata stamped on every write.
func (e *Engine) meta() core.RecordMeta {
	return core.RecordMeta{Model: e.model, Client: clientName}
}

// Resolve turns a free-text query into a persisted candidate record. A
// store hit on the normalized query is returned as-is without consulting
// the oracle; a miss goes to the oracle, and the normalized result is
// persisted before returning.
func (e *Engine) Resolve(ctx context.Context, query string) (core.CandidateRecord, error) {
	if strings.TrimSpace(query) == "" {
		return core.CandidateRecord{}, fmt.Errorf("%w: empty query", core.ErrMalformedQuery)
	}

	cached, ok, err := e.candidates.GetByQuery(ctx, query)
	if err != nil {
		return core.CandidateRecord{}, fmt.Errorf("workflow: candidate lookup: %w", err)
	}
	if ok {
		e.metrics.CacheLookup(ctx, "candidate", "hit")
		e.logger.Debug("candidate cache hit", "query", query, "record", cached.ID)
		return cached, nil
	}
	e.metrics.CacheLookup(ctx, "candidate", "miss")

	res, err := e.gateway.ResolveCandidates(ctx, query)
	e.metrics.OracleCall(ctx, "resolve", err)
	if err != nil {
		return core.CandidateRecord{}, err
	}
	res = normalizeResolution(res, query)

	rec, err := store.NewCandidateRecord(query, res, core.ProvenanceUserConfirmed, e.meta())
	if err != nil {
		return core.CandidateRecord{}, err
	}
	if err := e.candidates.Put(ctx, rec); err != nil {
		return core.CandidateRecord{}, fmt.Errorf("workflow: persist candidate: %w", err)
	}
	e.logger.Info("candidate resolved",
		"query", query,
		"candidate", rec.CandidateID,
		"proposals", len(res.Candidates))
	return rec, nil
}

// Confirm re-selects a candidate inside an existing record and persists the
// corrected selection as a new record. Index -1 keeps the current selection.
func (e *Engine) Confirm(ctx context.Context, rec core.CandidateRecord, index int) (core.CandidateRecord, error) {
	if index == -1 {
		index = rec.Data.SelectedIndex
	}
	if index < 0 || index >= len(rec.Data.Candidates) {
		return core.CandidateRecord{}, fmt.Errorf("%w: %d of %d candidates", core.ErrNoSelection, index, len(rec.Data.Candidates))
	}
	if index == rec.Data.SelectedIndex {
		return rec, nil
	}

	res := rec.Data
	res.SelectedIndex = index
	confirmed, err := store.NewCandidateRecord(rec.RawInput, res, core.ProvenanceUserConfirmed, e.meta())
	if err != nil {
		return core.CandidateRecord{}, err
	}
	if err := e.candidates.Put(ctx, confirmed); err != nil {
		return core.CandidateRecord{}, fmt.Errorf("workflow: persist confirmation: %w", err)
	}
	e.logger.Info("candidate confirmed", "candidate", confirmed.CandidateID, "index", index)
	return confirmed, nil
}

// Select marks one method inside a discovery record as chosen and persists
// the updated selection as a new record.
func (e *Engine) Select(ctx context.Context, rec core.MethodRecord, index int) (core.MethodRecord, error) {
	if index < 0 || index >= len(rec.Data.Methods) {
		return core.MethodRecord{}, fmt.Errorf("%w: %d of %d methods", core.ErrNoSelection, index, len(rec.Data.Methods))
	}
	if index == rec.Data.SelectedIndex {
		return rec, nil
	}

	// Selection changes the choice, not the discovery: the original
	// expiration is preserved so picking a method never extends its TTL.
	disc := rec.Data
	disc.SelectedIndex = index
	selected := core.MethodRecord{
		ID:          store.NewRecordID(),
		Kind:        core.KindDiscoverMethods,
		Version:     store.MethodSchemaVersion,
		CreatedAt:   time.Now().UTC(),
		Source:      rec.Source,
		CandidateID: rec.CandidateID,
		RawInput:    rec.RawInput,
		Data:        disc,
		Meta:        rec.Meta,
	}
	if err := e.methods.Put(ctx, selected); err != nil {
		return core.MethodRecord{}, fmt.Errorf("workflow: persist selection: %w", err)
	}
	e.logger.Info("method selected",
		"candidate", rec.CandidateID,
		"method", disc.Methods[index].MethodID)
	return selected, nil
}
