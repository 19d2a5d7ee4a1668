package verify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// fakeChecker answers existence checks from a fixed map. URLs absent from
// the map do not exist; URLs in failures return a check error.
type fakeChecker struct {
	alive    map[string]bool
	failures map[string]error
	calls    []string
}

func (c *fakeChecker) Exists(_ context.Context, rawURL string) (bool, error) {
	c.calls = append(c.calls, rawURL)
	if err, ok := c.failures[rawURL]; ok {
		return false, err
	}
	return c.alive[rawURL], nil
}

type fakeJudge struct {
	score float64
	err   error
	seen  []Judgment
}

func (j *fakeJudge) JudgeRelevance(_ context.Context, jm Judgment) (float64, error) {
	j.seen = append(j.seen, jm)
	return j.score, j.err
}

func seqVerifier(checker Checker, judge RelevanceJudge, contentPass bool) *Verifier {
	return NewVerifier(Config{Concurrency: 1, ContentPass: contentPass}, checker, judge, nil)
}

func TestVerifyClaimedURLWins(t *testing.T) {
	checker := &fakeChecker{alive: map[string]bool{
		"https://stripe.com/docs/api": true,
	}}
	v := seqVerifier(checker, nil, false)

	out := v.Verify(context.Background(), Request{
		ToolName:   "Stripe",
		Domain:     "stripe.com",
		MethodName: "REST API",
		MethodType: "api",
		ClaimedURL: "https://stripe.com/docs/api",
	})

	if out.URL != "https://stripe.com/docs/api" {
		t.Fatalf("URL = %q, want the claimed URL", out.URL)
	}
	if !out.Verified {
		t.Fatalf("Verified = false, confidence %v", out.Confidence)
	}
	if len(checker.calls) != 1 {
		t.Fatalf("checker calls = %d, want 1 (claimed URL should short-circuit)", len(checker.calls))
	}
}

func TestVerifyFallsBackInOrder(t *testing.T) {
	// Claimed URL is dead; the /reference fallback is the first live one.
	checker := &fakeChecker{alive: map[string]bool{
		"https://stripe.com/reference": true,
	}}
	v := seqVerifier(checker, nil, false)

	out := v.Verify(context.Background(), Request{
		Domain:     "stripe.com",
		MethodName: "REST API",
		ClaimedURL: "https://stripe.com/everything",
	})

	if out.URL != "https://stripe.com/reference" {
		t.Fatalf("URL = %q, want the first live fallback", out.URL)
	}
	// Attempts before the winner are exhausted, the winner verified, the
	// rest untried.
	sawWinner := false
	for _, a := range out.Attempts {
		switch {
		case a.URL == out.URL:
			sawWinner = true
			if a.State != StateVerified {
				t.Fatalf("winner state = %v, want verified", a.State)
			}
		case !sawWinner:
			if a.State != StateExhausted {
				t.Fatalf("attempt %q state = %v, want exhausted", a.URL, a.State)
			}
		default:
			if a.State != StateUntried {
				t.Fatalf("attempt %q state = %v, want untried", a.URL, a.State)
			}
		}
	}
}

func TestVerifyAllDeadRetainedUnverified(t *testing.T) {
	checker := &fakeChecker{} // nothing is alive
	v := seqVerifier(checker, nil, false)

	out := v.Verify(context.Background(), Request{
		Domain:     "ghost.example",
		MethodName: "REST API",
		ClaimedURL: "https://ghost.example/docs",
	})

	if out.Verified {
		t.Fatal("Verified = true, want false when everything is dead")
	}
	if out.URL != "" {
		t.Fatalf("URL = %q, want empty", out.URL)
	}
	if out.Confidence >= DefaultAcceptThreshold {
		t.Fatalf("Confidence = %v, want below acceptance threshold", out.Confidence)
	}
	if out.Confidence > DefaultUnverifiedCeiling {
		t.Fatalf("Confidence = %v, want at most the unverified ceiling %v", out.Confidence, DefaultUnverifiedCeiling)
	}
	if len(out.Attempts) < 10 {
		t.Fatalf("attempts = %d, want claimed URL plus at least 9 fallbacks", len(out.Attempts))
	}
}

func TestVerifyNetworkErrorsAdvanceToNextPattern(t *testing.T) {
	checker := &fakeChecker{
		failures: map[string]error{
			"https://slow.example/api/docs": errors.New("dial timeout"),
		},
		alive: map[string]bool{
			"https://slow.example/docs/api": true,
		},
	}
	v := seqVerifier(checker, nil, false)

	out := v.Verify(context.Background(), Request{Domain: "slow.example"})
	if out.URL != "https://slow.example/docs/api" {
		t.Fatalf("URL = %q, want the pattern after the failing one", out.URL)
	}
	if out.Attempts[0].Err == nil || out.Attempts[0].State != StateExhausted {
		t.Fatalf("attempt[0] = %+v, want exhausted with error", out.Attempts[0])
	}
}

func TestVerifyNoDomainNoClaim(t *testing.T) {
	v := seqVerifier(&fakeChecker{}, nil, false)
	out := v.Verify(context.Background(), Request{ToolName: "mystery"})
	if out.Verified || out.URL != "" {
		t.Fatalf("outcome = %+v, want unverified empty", out)
	}
	if out.Confidence > DefaultUnverifiedCeiling {
		t.Fatalf("Confidence = %v, want at most %v", out.Confidence, DefaultUnverifiedCeiling)
	}
}

func TestVerifyConcurrentSingleSuccessWins(t *testing.T) {
	checker := &fakeChecker{alive: map[string]bool{
		"https://stripe.com/api-reference": true,
	}}
	v := NewVerifier(Config{Concurrency: 4}, checkerFunc(checker.Exists), nil, nil)

	out := v.Verify(context.Background(), Request{Domain: "stripe.com"})
	if out.URL != "https://stripe.com/api-reference" {
		t.Fatalf("URL = %q, want the single live pattern", out.URL)
	}
	verified := 0
	for _, a := range out.Attempts {
		if a.State == StateVerified {
			verified++
		}
	}
	if verified != 1 {
		t.Fatalf("verified attempts = %d, want exactly 1", verified)
	}
}

// checkerFunc adapts a function to Checker, serializing access since the
// fake records calls without locking.
type checkerFunc func(ctx context.Context, rawURL string) (bool, error)

var checkerMu = make(chan struct{}, 1)

func (f checkerFunc) Exists(ctx context.Context, rawURL string) (bool, error) {
	checkerMu <- struct{}{}
	defer func() { <-checkerMu }()
	return f(ctx, rawURL)
}

func TestVerifyContentPassCombinesScores(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head><title>Stripe API Reference</title></head>` +
			`<body><h1>Payments API</h1><h2>Authentication</h2></body></html>`))
	}))
	defer srv.Close()

	claimed := srv.URL + "/docs/api"
	checker := &fakeChecker{alive: map[string]bool{claimed: true}}
	judge := &fakeJudge{score: 0.9}
	v := seqVerifier(checker, judge, true)

	out := v.Verify(context.Background(), Request{
		ToolName:   "Stripe",
		MethodName: "REST API",
		MethodType: "api",
		ClaimedURL: claimed,
	})

	if len(judge.seen) != 1 {
		t.Fatalf("judge calls = %d, want 1", len(judge.seen))
	}
	j := judge.seen[0]
	if j.Title != "Stripe API Reference" {
		t.Fatalf("judged title = %q", j.Title)
	}
	if len(j.Headings) != 2 || j.Headings[0] != "Payments API" {
		t.Fatalf("judged headings = %v", j.Headings)
	}

	wantConf := 0.5*out.Specificity + 0.5*0.9
	if diff := out.Confidence - wantConf; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("Confidence = %v, want %v", out.Confidence, wantConf)
	}
	if out.Relevance != 0.9 {
		t.Fatalf("Relevance = %v, want 0.9", out.Relevance)
	}
}

func TestVerifyContentPassJudgeFailureFallsBackToSpecificity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head><title>Docs</title></head></html>`))
	}))
	defer srv.Close()

	claimed := srv.URL + "/docs"
	checker := &fakeChecker{alive: map[string]bool{claimed: true}}
	judge := &fakeJudge{err: errors.New("oracle down")}
	v := seqVerifier(checker, judge, true)

	out := v.Verify(context.Background(), Request{ClaimedURL: claimed})
	if out.Confidence != out.Specificity {
		t.Fatalf("Confidence = %v, want specificity-only %v", out.Confidence, out.Specificity)
	}
}

func TestHTTPCheckerTimeoutIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	checker := NewHTTPChecker(20 * time.Millisecond)
	if _, err := checker.Exists(context.Background(), srv.URL); err == nil {
		t.Fatal("Exists() error = nil, want timeout error")
	}
}

func TestHTTPCheckerStatuses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	checker := NewHTTPChecker(time.Second)
	if ok, err := checker.Exists(context.Background(), srv.URL+"/ok"); err != nil || !ok {
		t.Fatalf("Exists(/ok) = %v, %v; want true, nil", ok, err)
	}
	if ok, err := checker.Exists(context.Background(), srv.URL+"/missing"); err != nil || ok {
		t.Fatalf("Exists(/missing) = %v, %v; want false, nil", ok, err)
	}
}
