package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/purelink-labs/purelink/core"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS records (
	id TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	identity TEXT NOT NULL,
	query_norm TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL,
	payload BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS records_identity ON records(kind, identity, id);
CREATE INDEX IF NOT EXISTS records_query ON records(kind, query_norm, id);`

// SQLiteStore holds both record stores in one database. Record ids are
// UUIDv7, so "latest" is simply the lexically greatest id per identity.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) the backing database.
func NewSQLiteStore(dsn string, logger *slog.Logger) (*SQLiteStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("store: sqlite dsn is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: sqlite open: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: sqlite set WAL mode: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: sqlite create schema: %w", err)
	}
	return &SQLiteStore{db: db, logger: logger}, nil
}

// Candidates returns the candidate store view over the database.
func (s *SQLiteStore) Candidates() *SQLiteCandidateStore {
	return &SQLiteCandidateStore{parent: s}
}

// Methods returns the method store view over the database.
func (s *SQLiteStore) Methods(opts MethodStoreOptions) *SQLiteMethodStore {
	return &SQLiteMethodStore{parent: s, opts: opts.withDefaults()}
}

// Close closes the backing database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) insert(ctx context.Context, id string, kind core.RecordKind, identity, queryNorm string, createdAt time.Time, rec any) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("store: encode record %s: %w", id, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO records (id, kind, identity, query_norm, created_at, payload) VALUES (?, ?, ?, ?, ?, ?)`,
		id, string(kind), identity, queryNorm, createdAt.UTC().Format(time.RFC3339Nano), payload)
	if err != nil {
		return fmt.Errorf("store: insert record %s: %w", id, err)
	}
	return nil
}

// latestPayload returns payloads for the given filter, newest first, so the
// caller can skip corrupt rows and fall back to older records.
func (s *SQLiteStore) latestPayloads(ctx context.Context, kind core.RecordKind, column, value string) (*sql.Rows, error) {
	q := `SELECT id, payload FROM records WHERE kind = ? AND ` + column + ` = ? ORDER BY id DESC`
	rows, err := s.db.QueryContext(ctx, q, string(kind), value)
	if err != nil {
		return nil, fmt.Errorf("store: query records: %w", err)
	}
	return rows, nil
}

// SQLiteCandidateStore implements CandidateStore on SQLite.
type SQLiteCandidateStore struct {
	parent *SQLiteStore
}

// Put implements CandidateStore.
func (s *SQLiteCandidateStore) Put(ctx context.Context, rec core.CandidateRecord) error {
	if err := validateCandidateRecord(rec); err != nil {
		return err
	}
	return s.parent.insert(ctx, rec.ID, rec.Kind, rec.CandidateID, NormalizeQuery(rec.RawInput), rec.CreatedAt, rec)
}

// GetByQuery implements CandidateStore.
func (s *SQLiteCandidateStore) GetByQuery(ctx context.Context, query string) (core.CandidateRecord, bool, error) {
	return s.scanLatest(ctx, "query_norm", NormalizeQuery(query))
}

// GetByIdentity implements CandidateStore.
func (s *SQLiteCandidateStore) GetByIdentity(ctx context.Context, id string) (core.CandidateRecord, bool, error) {
	return s.scanLatest(ctx, "identity", id)
}

func (s *SQLiteCandidateStore) scanLatest(ctx context.Context, column, value string) (core.CandidateRecord, bool, error) {
	rows, err := s.parent.latestPayloads(ctx, core.KindCaptureIntent, column, value)
	if err != nil {
		return core.CandidateRecord{}, false, err
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var payload []byte
		if err := rows.Scan(&id, &payload); err != nil {
			return core.CandidateRecord{}, false, fmt.Errorf("store: scan record: %w", err)
		}
		var rec core.CandidateRecord
		if uerr := json.Unmarshal(payload, &rec); uerr != nil {
			s.parent.logger.Warn("skipping corrupt candidate record",
				"error", &core.CorruptRecordError{Path: "records/" + id, Err: uerr})
			continue
		}
		return rec, true, rows.Err()
	}
	return core.CandidateRecord{}, false, rows.Err()
}

// Latest implements CandidateStore.
func (s *SQLiteCandidateStore) Latest(ctx context.Context) ([]core.CandidateRecord, error) {
	rows, err := s.parent.db.QueryContext(ctx, `
		SELECT r.id, r.payload FROM records r
		WHERE r.kind = ? AND r.id = (
			SELECT MAX(id) FROM records WHERE kind = r.kind AND identity = r.identity
		)
		ORDER BY r.id`, string(core.KindCaptureIntent))
	if err != nil {
		return nil, fmt.Errorf("store: query latest records: %w", err)
	}
	defer rows.Close()

	var out []core.CandidateRecord
	for rows.Next() {
		var id string
		var payload []byte
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("store: scan record: %w", err)
		}
		var rec core.CandidateRecord
		if uerr := json.Unmarshal(payload, &rec); uerr != nil {
			s.parent.logger.Warn("skipping corrupt candidate record",
				"error", &core.CorruptRecordError{Path: "records/" + id, Err: uerr})
			continue
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close implements CandidateStore. The parent owns the database handle.
func (s *SQLiteCandidateStore) Close() error {
	return nil
}

// SQLiteMethodStore implements MethodStore on SQLite.
type SQLiteMethodStore struct {
	parent *SQLiteStore
	opts   MethodStoreOptions
}

// Put implements MethodStore.
func (s *SQLiteMethodStore) Put(ctx context.Context, rec core.MethodRecord) error {
	if err := validateMethodRecord(rec); err != nil {
		return err
	}
	return s.parent.insert(ctx, rec.ID, rec.Kind, rec.CandidateID, "", rec.CreatedAt, rec)
}

// GetFresh implements MethodStore.
func (s *SQLiteMethodStore) GetFresh(ctx context.Context, candidateID string) (core.MethodRecord, Freshness, error) {
	rows, err := s.parent.latestPayloads(ctx, core.KindDiscoverMethods, "identity", candidateID)
	if err != nil {
		return core.MethodRecord{}, FreshnessAbsent, err
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var payload []byte
		if err := rows.Scan(&id, &payload); err != nil {
			return core.MethodRecord{}, FreshnessAbsent, fmt.Errorf("store: scan record: %w", err)
		}
		var rec core.MethodRecord
		if uerr := json.Unmarshal(payload, &rec); uerr != nil {
			s.parent.logger.Warn("skipping corrupt method record",
				"error", &core.CorruptRecordError{Path: "records/" + id, Err: uerr})
			continue
		}
		return rec, evaluateFreshness(rec, s.opts.Now()), rows.Err()
	}
	return core.MethodRecord{}, FreshnessAbsent, rows.Err()
}

// MarkRefreshed implements MethodStore.
func (s *SQLiteMethodStore) MarkRefreshed(ctx context.Context, candidateID string, disc core.Discovery, rawInput string, source core.Provenance, meta core.RecordMeta) (core.MethodRecord, error) {
	rec := newMethodRecord(candidateID, disc, rawInput, source, meta, s.opts.Now(), s.opts.TTL)
	if err := s.Put(ctx, rec); err != nil {
		return core.MethodRecord{}, err
	}
	return rec, nil
}

// Expiring implements MethodStore.
func (s *SQLiteMethodStore) Expiring(ctx context.Context, within time.Duration) ([]core.MethodRecord, error) {
	rows, err := s.parent.db.QueryContext(ctx, `
		SELECT r.id, r.payload FROM records r
		WHERE r.kind = ? AND r.id = (
			SELECT MAX(id) FROM records WHERE kind = r.kind AND identity = r.identity
		)
		ORDER BY r.id`, string(core.KindDiscoverMethods))
	if err != nil {
		return nil, fmt.Errorf("store: query latest records: %w", err)
	}
	defer rows.Close()

	cutoff := s.opts.Now().Add(within)
	var out []core.MethodRecord
	for rows.Next() {
		var id string
		var payload []byte
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("store: scan record: %w", err)
		}
		var rec core.MethodRecord
		if uerr := json.Unmarshal(payload, &rec); uerr != nil {
			s.parent.logger.Warn("skipping corrupt method record",
				"error", &core.CorruptRecordError{Path: "records/" + id, Err: uerr})
			continue
		}
		if rec.Data.ExpiresAt.IsZero() || rec.Data.ExpiresAt.Before(cutoff) {
			out = append(out, rec)
		}
	}
	return out, rows.Err()
}

// Close implements MethodStore. The parent owns the database handle.
func (s *SQLiteMethodStore) Close() error {
	return nil
}

var (
	_ CandidateStore = (*SQLiteCandidateStore)(nil)
	_ MethodStore    = (*SQLiteMethodStore)(nil)
)
