package verify

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Policy defaults. These are named so operators can override them in
// config rather than having them baked into the algorithm.
const (
	DefaultRequestTimeout    = 5 * time.Second
	DefaultConcurrency       = 4
	DefaultAcceptThreshold   = 0.7
	DefaultUnverifiedCeiling = 0.4
)

// exhaustedConfidence is reported when every candidate URL failed its
// existence check. Kept strictly below the unverified ceiling.
const exhaustedConfidence = 0.2

// Config controls verification behavior.
type Config struct {
	// RequestTimeout bounds each individual existence check and content
	// fetch. Total verification time for one method is bounded by
	// pattern count times this value.
	RequestTimeout time.Duration

	// Concurrency is the maximum number of existence checks in flight
	// for one method. 1 forces strict pattern-list order.
	Concurrency int

	// AcceptThreshold is the combined confidence a method must clear to
	// be marked verified.
	AcceptThreshold float64

	// UnverifiedCeiling caps the confidence of any method that has no
	// verifiable documentation URL and no reachable endpoint.
	UnverifiedCeiling float64

	// ContentPass enables fetching the winning page and asking the
	// relevance judge whether it documents the method specifically.
	ContentPass bool
}

func (c Config) withDefaults() Config {
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.Concurrency <= 0 {
		c.Concurrency = DefaultConcurrency
	}
	if c.AcceptThreshold <= 0 {
		c.AcceptThreshold = DefaultAcceptThreshold
	}
	if c.UnverifiedCeiling <= 0 {
		c.UnverifiedCeiling = DefaultUnverifiedCeiling
	}
	return c
}

// Request describes one claimed method to verify.
type Request struct {
	ToolName   string
	Domain     string
	MethodName string
	MethodType string
	ClaimedURL string // may be empty
	Endpoint   string // may be empty
}

// Outcome is the verdict for one Request. It is always produced: a method
// whose every URL is dead still gets an Outcome with Verified=false and a
// degraded confidence, never an error, so callers can persist what was
// attempted.
type Outcome struct {
	URL         string  // verified URL, empty when nothing was reachable
	Verified    bool    // confidence cleared the acceptance threshold
	Confidence  float64 // combined confidence in [0,1]
	Specificity float64
	Relevance   float64 // 0 when the content pass did not run
	Attempts    []Attempt
}

// Verifier checks claimed URLs against the live web.
type Verifier struct {
	checker Checker
	judge   RelevanceJudge // optional
	client  *http.Client   // content pass only
	cfg     Config
	logger  *slog.Logger
}

// NewVerifier creates a Verifier. A nil checker defaults to an HTTP HEAD
// checker; a nil judge disables the content pass regardless of config.
func NewVerifier(cfg Config, checker Checker, judge RelevanceJudge, logger *slog.Logger) *Verifier {
	cfg = cfg.withDefaults()
	if checker == nil {
		checker = NewHTTPChecker(cfg.RequestTimeout)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Verifier{
		checker: checker,
		judge:   judge,
		client:  &http.Client{Timeout: cfg.RequestTimeout},
		cfg:     cfg,
		logger:  logger,
	}
}

// Config returns the effective (defaulted) configuration.
func (v *Verifier) Config() Config {
	return v.cfg
}

// Verify runs the full algorithm for one claimed method: existence check of
// the claimed URL, fallback pattern sweep, specificity scoring, and the
// optional content relevance pass.
func (v *Verifier) Verify(ctx context.Context, req Request) Outcome {
	urls := candidateURLs(req)
	if len(urls) == 0 {
		return Outcome{Confidence: min(exhaustedConfidence, v.cfg.UnverifiedCeiling)}
	}

	winner, attempts := runAttempts(ctx, v.checker, urls, v.cfg.Concurrency)
	if winner == "" {
		v.logger.Debug("verification exhausted",
			"tool", req.ToolName,
			"method", req.MethodName,
			"attempts", len(attempts))
		return Outcome{
			Confidence: min(exhaustedConfidence, v.cfg.UnverifiedCeiling),
			Attempts:   attempts,
		}
	}

	spec := SpecificityScore(winner)
	confidence := spec
	var relevance float64

	if v.cfg.ContentPass && v.judge != nil {
		title, headings, err := v.fetchSummary(ctx, winner)
		if err != nil {
			v.logger.Debug("content pass skipped", "url", winner, "error", err)
		} else {
			relevance, err = v.judge.JudgeRelevance(ctx, Judgment{
				ToolName:   req.ToolName,
				MethodName: req.MethodName,
				MethodType: req.MethodType,
				URL:        winner,
				Title:      title,
				Headings:   headings,
			})
			if err != nil {
				v.logger.Warn("relevance judgment failed", "url", winner, "error", err)
				relevance = 0
			} else {
				confidence = 0.5*spec + 0.5*relevance
			}
		}
	}

	out := Outcome{
		URL:         winner,
		Confidence:  clamp01(confidence),
		Specificity: spec,
		Relevance:   relevance,
		Attempts:    attempts,
	}
	out.Verified = out.Confidence >= v.cfg.AcceptThreshold
	return out
}

// candidateURLs orders the URLs to try: the oracle's claim first, then the
// declared endpoint, then generated fallback patterns.
func candidateURLs(req Request) []string {
	urls := make([]string, 0, 16)
	if req.ClaimedURL != "" {
		urls = append(urls, req.ClaimedURL)
	}
	if req.Endpoint != "" {
		urls = append(urls, req.Endpoint)
	}
	urls = append(urls, FallbackPatterns(req.Domain, req.MethodName)...)
	return dedupe(urls)
}
