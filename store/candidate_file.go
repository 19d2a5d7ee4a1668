package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"

	"github.com/purelink-labs/purelink/core"
)

// FileCandidateStore is the JSONL-backed candidate store. The latest-by-
// identity and latest-by-query views are rebuilt from the log on open and
// maintained on every append.
type FileCandidateStore struct {
	log    *recordLog
	logger *slog.Logger

	mu      sync.RWMutex
	latest  map[string]core.CandidateRecord // candidate identity -> latest record
	byQuery map[string]core.CandidateRecord // normalized query -> latest record
}

// NewFileCandidateStore opens (or creates) a candidate store under dir.
// Candidate records live in their own subdirectory so both stores can share
// one data directory. Corrupt log lines are skipped with a warning; they
// never fail the open.
func NewFileCandidateStore(dir string, logger *slog.Logger) (*FileCandidateStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	log, err := openRecordLog(filepath.Join(dir, candidateSubdir))
	if err != nil {
		return nil, err
	}
	s := &FileCandidateStore{
		log:     log,
		logger:  logger,
		latest:  make(map[string]core.CandidateRecord),
		byQuery: make(map[string]core.CandidateRecord),
	}

	err = log.replay(func(line []byte, lineNo int) error {
		var rec core.CandidateRecord
		if uerr := json.Unmarshal(line, &rec); uerr != nil || validateCandidateRecord(rec) != nil {
			cerr := &core.CorruptRecordError{Path: log.logPath, Line: lineNo, Err: uerr}
			logger.Warn("skipping corrupt candidate record", "error", cerr)
			return nil
		}
		s.index(rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Put implements CandidateStore.
func (s *FileCandidateStore) Put(ctx context.Context, rec core.CandidateRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateCandidateRecord(rec); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.log.append(rec.ID, rec); err != nil {
		return err
	}
	s.index(rec)
	return nil
}

// GetByQuery implements CandidateStore.
func (s *FileCandidateStore) GetByQuery(ctx context.Context, query string) (core.CandidateRecord, bool, error) {
	if err := ctx.Err(); err != nil {
		return core.CandidateRecord{}, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.byQuery[NormalizeQuery(query)]
	return rec, ok, nil
}

// GetByIdentity implements CandidateStore.
func (s *FileCandidateStore) GetByIdentity(ctx context.Context, id string) (core.CandidateRecord, bool, error) {
	if err := ctx.Err(); err != nil {
		return core.CandidateRecord{}, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.latest[id]
	return rec, ok, nil
}

// Latest implements CandidateStore.
func (s *FileCandidateStore) Latest(ctx context.Context) ([]core.CandidateRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.CandidateRecord, 0, len(s.latest))
	for _, rec := range s.latest {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Close implements CandidateStore. The file backend holds no open handles
// between operations.
func (s *FileCandidateStore) Close() error {
	return nil
}

// index must be called with the write lock held (or during single-threaded
// replay).
func (s *FileCandidateStore) index(rec core.CandidateRecord) {
	s.latest[rec.CandidateID] = rec
	if q := NormalizeQuery(rec.RawInput); q != "" {
		s.byQuery[q] = rec
	}
}

var _ CandidateStore = (*FileCandidateStore)(nil)
