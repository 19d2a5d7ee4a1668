package workflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/purelink-labs/purelink/core"
	"github.com/purelink-labs/purelink/identity"
	"github.com/purelink-labs/purelink/store"
	"github.com/purelink-labs/purelink/verify"
)

// discoveryConcurrency bounds how many methods are verified at once. Each
// method internally runs its own URL checks under the verifier's own limit.
const discoveryConcurrency = 4

// DiscoverOutcome reports a discovery result together with how it was
// produced.
type DiscoverOutcome struct {
	Record core.MethodRecord

	// Refreshed is true when the oracle was consulted and a new record
	// was written; false on a fresh cache hit.
	Refreshed bool

	// WasStale is true when an expired record existed before this call.
	// Callers use it to tell "first discovery" from "re-discovery".
	WasStale bool
}

// Discover produces verified output methods for a confirmed candidate. A
// fresh record is returned untouched; a stale or absent one triggers oracle
// discovery, per-method verification, and a new record write. The stale
// record is never served as if current.
func (e *Engine) Discover(ctx context.Context, candidateID string) (DiscoverOutcome, error) {
	return e.discover(ctx, candidateID, core.ProvenanceDiscovery, false)
}

// force skips the fresh-record short circuit; the refresh sweep uses it to
// re-discover records that are expiring but not yet expired.
func (e *Engine) discover(ctx context.Context, candidateID string, source core.Provenance, force bool) (DiscoverOutcome, error) {
	candRec, ok, err := e.candidates.GetByIdentity(ctx, candidateID)
	if err != nil {
		return DiscoverOutcome{}, fmt.Errorf("workflow: candidate lookup: %w", err)
	}
	if !ok {
		return DiscoverOutcome{}, fmt.Errorf("%w: %s", core.ErrCandidateNotFound, candidateID)
	}
	cand, ok := candRec.Data.Selected()
	if !ok {
		return DiscoverOutcome{}, fmt.Errorf("%w: record %s has no selected candidate", core.ErrNoSelection, candRec.ID)
	}

	existing, freshness, err := e.methods.GetFresh(ctx, candidateID)
	if err != nil {
		return DiscoverOutcome{}, fmt.Errorf("workflow: method lookup: %w", err)
	}
	switch freshness {
	case store.FreshnessFresh:
		if !force {
			e.metrics.CacheLookup(ctx, "method", "hit")
			e.logger.Debug("method cache hit", "candidate", candidateID, "record", existing.ID)
			return DiscoverOutcome{Record: existing}, nil
		}
	case store.FreshnessStale:
		e.metrics.CacheLookup(ctx, "method", "stale")
	default:
		e.metrics.CacheLookup(ctx, "method", "miss")
	}
	wasStale := freshness == store.FreshnessStale

	proposals, err := e.gateway.DiscoverMethods(ctx, cand)
	e.metrics.OracleCall(ctx, "discover", err)
	if err != nil {
		return DiscoverOutcome{WasStale: wasStale}, err
	}
	if len(proposals) == 0 {
		return DiscoverOutcome{WasStale: wasStale}, fmt.Errorf("%w: candidate %s", core.ErrNoVerifiableMethod, candidateID)
	}

	methods := e.verifyAll(ctx, cand, proposals)

	disc := core.Discovery{
		Methods:       methods,
		SelectedIndex: -1,
		Source:        string(source),
	}
	rec, err := e.methods.MarkRefreshed(ctx, candidateID, disc, candRec.RawInput, source, e.meta())
	if err != nil {
		return DiscoverOutcome{WasStale: wasStale}, fmt.Errorf("workflow: persist discovery: %w", err)
	}

	verified := 0
	for _, m := range methods {
		if m.Verified {
			verified++
		}
	}
	e.logger.Info("methods discovered",
		"candidate", candidateID,
		"methods", len(methods),
		"verified", verified,
		"stale_refresh", wasStale)
	return DiscoverOutcome{Record: rec, Refreshed: true, WasStale: wasStale}, nil
}

// verifyAll runs verification for every proposal on a bounded pool and
// returns the proposals in their original order with identities assigned
// and confidences settled. Unverifiable proposals are kept with capped
// confidence, never dropped.
func (e *Engine) verifyAll(ctx context.Context, cand core.ToolCandidate, proposals []core.OutputMethod) []core.OutputMethod {
	methods := make([]core.OutputMethod, len(proposals))
	sem := make(chan struct{}, discoveryConcurrency)
	var wg sync.WaitGroup

	for i, p := range proposals {
		wg.Add(1)
		go func(i int, m core.OutputMethod) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			methods[i] = e.verifyOne(ctx, cand, m)
		}(i, p)
	}
	wg.Wait()
	return methods
}

func (e *Engine) verifyOne(ctx context.Context, cand core.ToolCandidate, m core.OutputMethod) core.OutputMethod {
	start := time.Now()
	out := e.verifier.Verify(ctx, verify.Request{
		ToolName:   cand.ToolName,
		Domain:     cand.WebsiteDomain,
		MethodName: m.Name,
		MethodType: string(m.Type),
		ClaimedURL: m.DocsURL,
		Endpoint:   m.Endpoint,
	})
	e.metrics.Verification(ctx, string(m.Type), out.Verified, time.Since(start))

	m.Verified = out.Verified
	if out.URL != "" {
		m.DocsURL = out.URL
	}
	if out.Verified {
		m.Confidence = out.Confidence
	} else {
		// Retained but demoted: the oracle's claim survives with its
		// confidence capped below the acceptance threshold.
		ceiling := e.verifier.Config().UnverifiedCeiling
		m.Confidence = min(clamp01(m.Confidence), ceiling)
		if out.Confidence < m.Confidence {
			m.Confidence = out.Confidence
		}
	}
	m.MethodID = identity.Method(m.Name, string(m.Type), cand.CandidateID)
	return m
}
