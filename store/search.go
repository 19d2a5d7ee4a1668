package store

import (
	"context"
	"fmt"

	"github.com/blevesearch/bleve/v2"

	"github.com/purelink-labs/purelink/core"
)

// CandidateIndex is an in-memory full-text index over confirmed candidates,
// for looking tools up by partial or misspelled names. It is derived state:
// rebuild it from the store on startup, it is never persisted.
type CandidateIndex struct {
	idx bleve.Index
}

// candidateDoc is the indexed projection of a candidate record.
type candidateDoc struct {
	ToolName  string `json:"tool_name"`
	Developer string `json:"developer"`
	Domain    string `json:"domain"`
	Notes     string `json:"notes"`
	RawQuery  string `json:"raw_query"`
}

// NewCandidateIndex creates an empty in-memory index.
func NewCandidateIndex() (*CandidateIndex, error) {
	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("store: create candidate index: %w", err)
	}
	return &CandidateIndex{idx: idx}, nil
}

// BuildCandidateIndex creates an index populated from the latest record per
// identity in the store.
func BuildCandidateIndex(ctx context.Context, cs CandidateStore) (*CandidateIndex, error) {
	ci, err := NewCandidateIndex()
	if err != nil {
		return nil, err
	}
	records, err := cs.Latest(ctx)
	if err != nil {
		_ = ci.Close()
		return nil, err
	}
	for _, rec := range records {
		if err := ci.Add(rec); err != nil {
			_ = ci.Close()
			return nil, err
		}
	}
	return ci, nil
}

// Add indexes the selected candidate of a record under its identity.
// Re-adding an identity replaces the previous document.
func (ci *CandidateIndex) Add(rec core.CandidateRecord) error {
	selected, ok := rec.Data.Selected()
	if !ok {
		return nil
	}
	doc := candidateDoc{
		ToolName:  selected.ToolName,
		Developer: selected.Developer,
		Domain:    selected.WebsiteDomain,
		Notes:     selected.Notes,
		RawQuery:  rec.RawInput,
	}
	if err := ci.idx.Index(rec.CandidateID, doc); err != nil {
		return fmt.Errorf("store: index candidate %s: %w", rec.CandidateID, err)
	}
	return nil
}

// Search returns candidate identities matching the query, best first.
func (ci *CandidateIndex) Search(ctx context.Context, query string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 10
	}
	q := bleve.NewMatchQuery(query)
	req := bleve.NewSearchRequestOptions(q, limit, 0, false)
	res, err := ci.idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("store: search candidates: %w", err)
	}
	ids := make([]string, 0, len(res.Hits))
	for _, hit := range res.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}

// Close releases index resources.
func (ci *CandidateIndex) Close() error {
	return ci.idx.Close()
}
