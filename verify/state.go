package verify

import (
	"context"
	"sync"
)

// AttemptState tracks one candidate URL through the verification lifecycle.
type AttemptState int

const (
	StateUntried AttemptState = iota
	StateChecking
	StateVerified
	StateExhausted
)

// String returns the string representation of the AttemptState.
func (s AttemptState) String() string {
	switch s {
	case StateUntried:
		return "untried"
	case StateChecking:
		return "checking"
	case StateVerified:
		return "verified"
	case StateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Attempt is the audit trail for one candidate URL. Err is set when the
// existence check itself failed (timeout, DNS); a clean "not found" leaves
// Err nil with state exhausted.
type Attempt struct {
	URL   string
	State AttemptState
	Err   error
}

// runAttempts drives the candidate URLs through the checker and returns the
// winning URL (empty when every attempt exhausted) plus the attempt trail.
//
// With concurrency <= 1 the URLs are checked strictly in list order and the
// first success wins, leaving later entries untried. With higher
// concurrency up to that many checks run in flight and the first success in
// wall-clock order wins; the remaining in-flight checks are cancelled.
func runAttempts(ctx context.Context, checker Checker, urls []string, concurrency int) (string, []Attempt) {
	attempts := make([]Attempt, len(urls))
	for i, u := range urls {
		attempts[i] = Attempt{URL: u, State: StateUntried}
	}

	if concurrency <= 1 {
		for i := range attempts {
			if ctx.Err() != nil {
				break
			}
			attempts[i].State = StateChecking
			ok, err := checker.Exists(ctx, attempts[i].URL)
			if err != nil {
				attempts[i].State = StateExhausted
				attempts[i].Err = err
				continue
			}
			if ok {
				attempts[i].State = StateVerified
				return attempts[i].URL, attempts
			}
			attempts[i].State = StateExhausted
		}
		return "", attempts
	}

	checkCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu     sync.Mutex
		winner string
		wg     sync.WaitGroup
		sem    = make(chan struct{}, concurrency)
	)

	for i := range attempts {
		select {
		case sem <- struct{}{}:
		case <-checkCtx.Done():
		}
		if checkCtx.Err() != nil {
			break
		}

		mu.Lock()
		attempts[i].State = StateChecking
		mu.Unlock()

		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			ok, err := checker.Exists(checkCtx, attempts[i].URL)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				attempts[i].State = StateExhausted
				attempts[i].Err = err
			case ok && winner == "":
				attempts[i].State = StateVerified
				winner = attempts[i].URL
				cancel()
			case ok:
				// A sibling already won; count this one as exhausted
				// so exactly one attempt reads verified.
				attempts[i].State = StateExhausted
			default:
				attempts[i].State = StateExhausted
			}
		}(i)
	}

	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	return winner, attempts
}
