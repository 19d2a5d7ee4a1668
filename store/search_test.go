package store

import (
	"context"
	"testing"
)

func TestCandidateIndexSearch(t *testing.T) {
	ci, err := NewCandidateIndex()
	if err != nil {
		t.Fatalf("NewCandidateIndex() error = %v", err)
	}
	defer ci.Close()

	stripe := mustCandidateRecord(t, "stripe", "Stripe", "stripe.com")
	notion := mustCandidateRecord(t, "notion workspace", "Notion", "notion.so")
	if err := ci.Add(stripe); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := ci.Add(notion); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	ids, err := ci.Search(context.Background(), "stripe", 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(ids) != 1 || ids[0] != stripe.CandidateID {
		t.Fatalf("Search(stripe) = %v, want [%s]", ids, stripe.CandidateID)
	}
}

func TestBuildCandidateIndexFromStore(t *testing.T) {
	s, err := NewFileCandidateStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewFileCandidateStore() error = %v", err)
	}
	ctx := context.Background()

	rec := mustCandidateRecord(t, "hubspot crm", "HubSpot", "hubspot.com")
	if err := s.Put(ctx, rec); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	ci, err := BuildCandidateIndex(ctx, s)
	if err != nil {
		t.Fatalf("BuildCandidateIndex() error = %v", err)
	}
	defer ci.Close()

	ids, err := ci.Search(ctx, "hubspot", 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(ids) != 1 || ids[0] != rec.CandidateID {
		t.Fatalf("Search(hubspot) = %v, want [%s]", ids, rec.CandidateID)
	}
}
