package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/purelink-labs/purelink/core"
)

// DefaultRefreshWindow is how far ahead of expiry the sweep re-discovers.
const DefaultRefreshWindow = 3 * 24 * time.Hour

var standardCronParser = cron.NewParser(
	cron.Minute |
		cron.Hour |
		cron.Dom |
		cron.Month |
		cron.Dow,
)

// parseCronExpressionUTC parses a five-field cron expression. Schedules are
// UTC-only; timezone prefixes are rejected so two hosts never disagree on
// when a sweep runs.
func parseCronExpressionUTC(expr string) (cron.Schedule, error) {
	clean := strings.TrimSpace(expr)
	if clean == "" {
		return nil, fmt.Errorf("workflow: cron expression is required")
	}

	upper := strings.ToUpper(clean)
	if strings.Contains(upper, "CRON_TZ=") || strings.Contains(upper, "TZ=") {
		return nil, fmt.Errorf("workflow: cron expression must be UTC-only (timezone prefixes are not allowed)")
	}

	schedule, err := standardCronParser.Parse(clean)
	if err != nil {
		return nil, fmt.Errorf("workflow: invalid cron expression: %w", err)
	}
	return schedule, nil
}

// ValidateCron reports whether expr is an acceptable schedule expression.
func ValidateCron(expr string) error {
	_, err := parseCronExpressionUTC(expr)
	return err
}

// RefreshResult summarizes one sweep.
type RefreshResult struct {
	Scanned   int // records whose expiry fell inside the window
	Refreshed int // records re-discovered successfully
	Failed    int // records whose re-discovery errored
}

// RefreshExpiring re-discovers every candidate whose latest method record
// expires within the window (or already has). Individual failures are
// logged and counted, never fatal: a flaky oracle must not stop the sweep.
func (e *Engine) RefreshExpiring(ctx context.Context, window time.Duration) (RefreshResult, error) {
	if window <= 0 {
		window = DefaultRefreshWindow
	}

	expiring, err := e.methods.Expiring(ctx, window)
	if err != nil {
		return RefreshResult{}, fmt.Errorf("workflow: expiring scan: %w", err)
	}

	result := RefreshResult{Scanned: len(expiring)}
	for _, rec := range expiring {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		if _, err := e.discover(ctx, rec.CandidateID, core.ProvenanceRefresh, true); err != nil {
			result.Failed++
			e.logger.Warn("refresh failed", "candidate", rec.CandidateID, "error", err)
			continue
		}
		result.Refreshed++
	}
	e.logger.Info("refresh sweep complete",
		"scanned", result.Scanned,
		"refreshed", result.Refreshed,
		"failed", result.Failed)
	return result, nil
}

// RunRefreshSchedule blocks, running RefreshExpiring at each firing of the
// cron expression until the context is canceled.
func (e *Engine) RunRefreshSchedule(ctx context.Context, expr string, window time.Duration) error {
	schedule, err := parseCronExpressionUTC(expr)
	if err != nil {
		return err
	}

	for {
		next := schedule.Next(time.Now().UTC())
		e.logger.Debug("refresh sweep scheduled", "next", next)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Until(next)):
		}
		if _, err := e.RefreshExpiring(ctx, window); err != nil {
			e.logger.Error("refresh sweep failed", "error", err)
		}
	}
}
