// Package otel instruments the discovery pipeline with OpenTelemetry metrics.
package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the instruments the workflow engine records into. A nil
// *Metrics is valid and records nothing, so callers never branch on
// observability being configured.
type Metrics struct {
	cacheLookups  metric.Int64Counter
	oracleCalls   metric.Int64Counter
	verifications metric.Int64Counter
	verifyDur     metric.Float64Histogram
}

// NewMetrics creates the pipeline instruments from the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	cacheLookups, err := meter.Int64Counter("purelink.cache.lookups",
		metric.WithDescription("Store lookups by outcome (hit, miss, stale)"),
	)
	if err != nil {
		return nil, err
	}

	oracleCalls, err := meter.Int64Counter("purelink.oracle.calls",
		metric.WithDescription("Oracle calls by operation and outcome"),
	)
	if err != nil {
		return nil, err
	}

	verifications, err := meter.Int64Counter("purelink.verify.results",
		metric.WithDescription("Method verifications by result"),
	)
	if err != nil {
		return nil, err
	}

	verifyDur, err := meter.Float64Histogram("purelink.verify.duration",
		metric.WithDescription("Wall time of one method verification in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		cacheLookups:  cacheLookups,
		oracleCalls:   oracleCalls,
		verifications: verifications,
		verifyDur:     verifyDur,
	}, nil
}

// CacheLookup records a store lookup outcome: "hit", "miss", or "stale".
func (m *Metrics) CacheLookup(ctx context.Context, kind, outcome string) {
	if m == nil {
		return
	}
	m.cacheLookups.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("outcome", outcome),
	))
}

// OracleCall records one oracle round trip.
func (m *Metrics) OracleCall(ctx context.Context, operation string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.oracleCalls.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}

// Verification records one method verification verdict and its duration.
func (m *Metrics) Verification(ctx context.Context, methodType string, verified bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("method_type", methodType),
		attribute.Bool("verified", verified),
	)
	m.verifications.Add(ctx, 1, attrs)
	m.verifyDur.Record(ctx, elapsed.Seconds(), attrs)
}
