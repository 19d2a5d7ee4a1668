package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/purelink-labs/purelink/core"
	"github.com/purelink-labs/purelink/identity"
)

func testResolution(toolName, domain string) core.Resolution {
	return core.Resolution{
		Candidates: []core.ToolCandidate{{
			CandidateID:   identity.Candidate(toolName, domain),
			ToolName:      toolName,
			WebsiteDomain: domain,
			Confidence:    0.9,
		}},
		SelectedIndex: 0,
	}
}

func mustCandidateRecord(t *testing.T, rawInput, toolName, domain string) core.CandidateRecord {
	t.Helper()
	rec, err := NewCandidateRecord(rawInput, testResolution(toolName, domain), core.ProvenanceUserConfirmed, core.RecordMeta{})
	if err != nil {
		t.Fatalf("NewCandidateRecord() error = %v", err)
	}
	return rec
}

func TestFileCandidateStorePutGet(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileCandidateStore(dir, nil)
	if err != nil {
		t.Fatalf("NewFileCandidateStore() error = %v", err)
	}
	ctx := context.Background()

	rec := mustCandidateRecord(t, "salesforce", "Salesforce", "salesforce.com")
	if err := s.Put(ctx, rec); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, ok, err := s.GetByIdentity(ctx, rec.CandidateID)
	if err != nil || !ok {
		t.Fatalf("GetByIdentity() = %v, %v", ok, err)
	}
	if got.ID != rec.ID {
		t.Fatalf("record id = %q, want %q", got.ID, rec.ID)
	}

	// Per-record file is written for random access.
	if _, err := os.Stat(filepath.Join(dir, candidateSubdir, "logs", rec.ID+".json")); err != nil {
		t.Fatalf("per-record file missing: %v", err)
	}
}

func TestFileCandidateStoreQueryNormalization(t *testing.T) {
	s, err := NewFileCandidateStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewFileCandidateStore() error = %v", err)
	}
	ctx := context.Background()

	rec := mustCandidateRecord(t, "salesforce", "Salesforce", "salesforce.com")
	if err := s.Put(ctx, rec); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	// Case- and whitespace-differing queries hit the same record.
	for _, q := range []string{"Salesforce", "SALESFORCE", "  salesforce  "} {
		got, ok, err := s.GetByQuery(ctx, q)
		if err != nil || !ok {
			t.Fatalf("GetByQuery(%q) = %v, %v; want hit", q, ok, err)
		}
		if got.CandidateID != rec.CandidateID {
			t.Fatalf("GetByQuery(%q) identity = %q, want %q", q, got.CandidateID, rec.CandidateID)
		}
	}

	if _, ok, _ := s.GetByQuery(ctx, "hubspot"); ok {
		t.Fatal("GetByQuery(hubspot) hit, want miss")
	}
}

func TestFileCandidateStoreAppendOnlyLatestWins(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileCandidateStore(dir, nil)
	if err != nil {
		t.Fatalf("NewFileCandidateStore() error = %v", err)
	}
	ctx := context.Background()

	first := mustCandidateRecord(t, "stripe", "Stripe", "stripe.com")
	second := mustCandidateRecord(t, "stripe payments", "Stripe", "stripe.com")
	if first.CandidateID != second.CandidateID {
		t.Fatal("test setup: records should share an identity")
	}
	if err := s.Put(ctx, first); err != nil {
		t.Fatalf("Put(first) error = %v", err)
	}
	if err := s.Put(ctx, second); err != nil {
		t.Fatalf("Put(second) error = %v", err)
	}

	got, ok, _ := s.GetByIdentity(ctx, first.CandidateID)
	if !ok || got.ID != second.ID {
		t.Fatalf("latest record = %q, want %q", got.ID, second.ID)
	}

	// Both appends survive in the log.
	data, err := os.ReadFile(filepath.Join(dir, candidateSubdir, "index.jsonl"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if lines := countLines(data); lines != 2 {
		t.Fatalf("log lines = %d, want 2 (append-only)", lines)
	}

	// A reopened store sees the same view.
	reopened, err := NewFileCandidateStore(dir, nil)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	got, ok, _ = reopened.GetByIdentity(ctx, first.CandidateID)
	if !ok || got.ID != second.ID {
		t.Fatalf("reopened latest record = %q, want %q", got.ID, second.ID)
	}
}

func TestFileCandidateStoreSkipsCorruptLines(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileCandidateStore(dir, nil)
	if err != nil {
		t.Fatalf("NewFileCandidateStore() error = %v", err)
	}
	ctx := context.Background()

	rec := mustCandidateRecord(t, "notion", "Notion", "notion.so")
	if err := s.Put(ctx, rec); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	logPath := filepath.Join(dir, candidateSubdir, "index.jsonl")
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	if _, err := f.WriteString("{not json at all\n"); err != nil {
		t.Fatalf("corrupt log: %v", err)
	}
	_ = f.Close()

	reopened, err := NewFileCandidateStore(dir, nil)
	if err != nil {
		t.Fatalf("reopen with corrupt line error = %v, want nil", err)
	}
	if _, ok, _ := reopened.GetByIdentity(ctx, rec.CandidateID); !ok {
		t.Fatal("valid record lost after corrupt line")
	}
}

func TestFileCandidateStoreLatestOrdered(t *testing.T) {
	s, err := NewFileCandidateStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewFileCandidateStore() error = %v", err)
	}
	ctx := context.Background()

	a := mustCandidateRecord(t, "stripe", "Stripe", "stripe.com")
	b := mustCandidateRecord(t, "notion", "Notion", "notion.so")
	for _, rec := range []core.CandidateRecord{a, b} {
		if err := s.Put(ctx, rec); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
	}

	latest, err := s.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if len(latest) != 2 {
		t.Fatalf("len(Latest()) = %d, want 2", len(latest))
	}
	if latest[0].ID > latest[1].ID {
		t.Fatal("Latest() not ordered by record id")
	}
}

func countLines(data []byte) int {
	n := 0
	for _, b := range data {
		if b == '\n' {
			n++
		}
	}
	return n
}
