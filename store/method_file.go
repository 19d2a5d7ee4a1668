package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/purelink-labs/purelink/core"
)

// MethodStoreOptions configures TTL policy and, for tests, the clock.
type MethodStoreOptions struct {
	// TTL is how far forward expirations are set. Defaults to
	// DefaultMethodTTL (30 days).
	TTL time.Duration

	// Now supplies the current time. Defaults to time.Now. Freshness is
	// re-evaluated through this on every read, never cached.
	Now func() time.Time
}

func (o MethodStoreOptions) withDefaults() MethodStoreOptions {
	if o.TTL <= 0 {
		o.TTL = DefaultMethodTTL
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// FileMethodStore is the JSONL-backed method store, keyed by parent
// candidate identity.
type FileMethodStore struct {
	log    *recordLog
	logger *slog.Logger
	opts   MethodStoreOptions

	mu     sync.RWMutex
	latest map[string]core.MethodRecord // candidate identity -> latest record
}

// NewFileMethodStore opens (or creates) a method store under dir. Method
// records live in their own subdirectory alongside the candidate store's.
func NewFileMethodStore(dir string, opts MethodStoreOptions, logger *slog.Logger) (*FileMethodStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	log, err := openRecordLog(filepath.Join(dir, methodSubdir))
	if err != nil {
		return nil, err
	}
	s := &FileMethodStore{
		log:    log,
		logger: logger,
		opts:   opts.withDefaults(),
		latest: make(map[string]core.MethodRecord),
	}

	err = log.replay(func(line []byte, lineNo int) error {
		var rec core.MethodRecord
		if uerr := json.Unmarshal(line, &rec); uerr != nil || validateMethodRecord(rec) != nil {
			cerr := &core.CorruptRecordError{Path: log.logPath, Line: lineNo, Err: uerr}
			logger.Warn("skipping corrupt method record", "error", cerr)
			return nil
		}
		s.latest[rec.CandidateID] = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Put implements MethodStore.
func (s *FileMethodStore) Put(ctx context.Context, rec core.MethodRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateMethodRecord(rec); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.log.append(rec.ID, rec); err != nil {
		return err
	}
	s.latest[rec.CandidateID] = rec
	return nil
}

// GetFresh implements MethodStore.
func (s *FileMethodStore) GetFresh(ctx context.Context, candidateID string) (core.MethodRecord, Freshness, error) {
	if err := ctx.Err(); err != nil {
		return core.MethodRecord{}, FreshnessAbsent, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.latest[candidateID]
	if !ok {
		return core.MethodRecord{}, FreshnessAbsent, nil
	}
	return rec, evaluateFreshness(rec, s.opts.Now()), nil
}

// MarkRefreshed implements MethodStore.
func (s *FileMethodStore) MarkRefreshed(ctx context.Context, candidateID string, disc core.Discovery, rawInput string, source core.Provenance, meta core.RecordMeta) (core.MethodRecord, error) {
	rec := newMethodRecord(candidateID, disc, rawInput, source, meta, s.opts.Now(), s.opts.TTL)
	if err := s.Put(ctx, rec); err != nil {
		return core.MethodRecord{}, err
	}
	return rec, nil
}

// Expiring implements MethodStore.
func (s *FileMethodStore) Expiring(ctx context.Context, within time.Duration) ([]core.MethodRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := s.opts.Now().Add(within)
	var out []core.MethodRecord
	for _, rec := range s.latest {
		if rec.Data.ExpiresAt.IsZero() || rec.Data.ExpiresAt.Before(cutoff) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Close implements MethodStore.
func (s *FileMethodStore) Close() error {
	return nil
}

var _ MethodStore = (*FileMethodStore)(nil)
