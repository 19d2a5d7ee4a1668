// Package verify decides whether a claimed documentation URL or endpoint is
// real and specific, rather than a plausible-looking hallucination.
//
// Verification is split into three independently testable pieces: an
// existence Checker (the only part that touches the network), an ordered
// fallback pattern list, and scoring. The Verifier drives them through a
// small attempt state machine.
package verify

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Checker performs a lightweight existence check for a single URL.
// Implementations must not fetch the response body.
type Checker interface {
	// Exists reports whether the URL resolves to a live resource.
	// A network failure is returned as an error; callers treat it the
	// same as "does not exist" for that one URL.
	Exists(ctx context.Context, rawURL string) (bool, error)
}

// HTTPChecker checks existence with a HEAD request, following redirects.
// A final status in the 2xx/3xx range counts as existing.
type HTTPChecker struct {
	client *http.Client
}

// NewHTTPChecker creates a checker with the given per-request timeout.
func NewHTTPChecker(timeout time.Duration) *HTTPChecker {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &HTTPChecker{client: &http.Client{Timeout: timeout}}
}

// Exists implements Checker.
func (c *HTTPChecker) Exists(ctx context.Context, rawURL string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return false, fmt.Errorf("verify: build existence check: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("verify: existence check: %w", err)
	}
	_ = resp.Body.Close()
	return resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusBadRequest, nil
}

var _ Checker = (*HTTPChecker)(nil)
