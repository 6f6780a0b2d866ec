// Copyright 2025 Certen Protocol
//
// SQLite-backed Record Store, the native-adapter persistence target named
// in §6's storage tagged union. Schema matches §6's reference layout: a
// records table keyed by hash, with a unique index on (chain_id, idx).

package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"github.com/certen/ledger-engine/pkg/record"
	"github.com/certen/ledger-engine/pkg/store"
)

// Config configures the SQLite store.
type Config struct {
	Path            string
	MaxConnections  int
	BusyTimeout     time.Duration
	CacheSize       int
	JournalMode     string
	SynchronousMode string
	ForeignKeys     bool
}

// DefaultConfig returns a production-ready configuration.
func DefaultConfig() *Config {
	return &Config{
		Path:            "ledger.db",
		MaxConnections:  10,
		BusyTimeout:     5 * time.Second,
		CacheSize:       10000,
		JournalMode:     "WAL",
		SynchronousMode: "NORMAL",
		ForeignKeys:     true,
	}
}

// Store is a SQLite-backed implementation of store.Store.
type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

// New opens (creating if absent) a SQLite database at config.Path and
// ensures the records schema exists.
func New(config *Config) (*Store, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Path == "" {
		return nil, errors.New("sqlite: path must not be empty")
	}

	db, err := sql.Open("sqlite", config.Path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	db.SetMaxOpenConns(config.MaxConnections)
	db.SetMaxIdleConns(config.MaxConnections)
	db.SetConnMaxLifetime(time.Hour)

	if err := configurePragmas(db, config); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: configure: %w", err)
	}
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: init schema: %w", err)
	}

	return &Store{db: db}, nil
}

func configurePragmas(db *sql.DB, config *Config) error {
	pragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout = %d", int(config.BusyTimeout.Milliseconds())),
		fmt.Sprintf("PRAGMA cache_size = -%d", config.CacheSize),
		fmt.Sprintf("PRAGMA journal_mode = %s", config.JournalMode),
		fmt.Sprintf("PRAGMA synchronous = %s", config.SynchronousMode),
	}
	if config.ForeignKeys {
		pragmas = append(pragmas, "PRAGMA foreign_keys = ON")
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("pragma %q: %w", p, err)
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS records (
	hash        TEXT PRIMARY KEY,
	chain_id    TEXT NOT NULL,
	idx         INTEGER NOT NULL,
	prev_hash   TEXT,
	created_at  INTEGER NOT NULL,
	module      TEXT NOT NULL,
	body        TEXT NOT NULL,
	context     TEXT,
	signature   BLOB
);
CREATE UNIQUE INDEX IF NOT EXISTS records_chain_index ON records(chain_id, idx);
CREATE INDEX IF NOT EXISTS records_chain_id ON records(chain_id);
CREATE INDEX IF NOT EXISTS records_module ON records(module);
`
	_, err := db.Exec(schema)
	return err
}

func (s *Store) Put(ctx context.Context, rec *record.Record) error {
	bodyJSON, err := json.Marshal(rec.Body)
	if err != nil {
		return fmt.Errorf("sqlite: marshal body: %w", err)
	}
	var contextJSON []byte
	if rec.Context != nil {
		contextJSON, err = json.Marshal(rec.Context)
		if err != nil {
			return fmt.Errorf("sqlite: marshal context: %w", err)
		}
	}

	const q = `INSERT INTO records (hash, chain_id, idx, prev_hash, created_at, module, body, context, signature)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, q, rec.Hash, rec.ChainID, rec.Index, rec.PrevHash, rec.CreatedAt, rec.Module, bodyJSON, contextJSON, rec.Signature)
	if err == nil {
		return nil
	}
	if isUniqueViolation(err, "records.hash") {
		return store.ErrDuplicateHash
	}
	if isUniqueViolation(err, "records.chain_id, records.idx") {
		return store.ErrDuplicateChainIndex
	}
	return fmt.Errorf("sqlite: put: %w", err)
}

// isUniqueViolation checks the pure-Go driver's error text for the
// constrained columns ("table.column, ..."), which is how SQLite names a
// failed unique constraint; modernc.org/sqlite does not expose a typed
// constraint error.
func isUniqueViolation(err error, constraint string) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") && strings.Contains(msg, constraint)
}

func (s *Store) GetByHash(ctx context.Context, hash string) (*record.Record, error) {
	const q = `SELECT hash, chain_id, idx, prev_hash, created_at, module, body, context, signature FROM records WHERE hash = ?`
	row := s.db.QueryRowContext(ctx, q, hash)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get by hash: %w", err)
	}
	return rec, nil
}

func (s *Store) GetChain(ctx context.Context, chainID string, opts record.ChainReadOptions) ([]*record.Record, error) {
	order := "ASC"
	if opts.Reverse {
		order = "DESC"
	}
	q := fmt.Sprintf(`SELECT hash, chain_id, idx, prev_hash, created_at, module, body, context, signature
		FROM records WHERE chain_id = ? ORDER BY idx %s`, order)
	args := []interface{}{chainID}
	if opts.Limit > 0 {
		q += " LIMIT ? OFFSET ?"
		args = append(args, opts.Limit, opts.Offset)
	} else if opts.Offset > 0 {
		q += " LIMIT -1 OFFSET ?"
		args = append(args, opts.Offset)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: get chain: %w", err)
	}
	defer rows.Close()

	var out []*record.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan chain row: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) GetHead(ctx context.Context, chainID string) (*record.Record, error) {
	const q = `SELECT hash, chain_id, idx, prev_hash, created_at, module, body, context, signature
		FROM records WHERE chain_id = ? ORDER BY idx DESC LIMIT 1`
	row := s.db.QueryRowContext(ctx, q, chainID)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get head: %w", err)
	}
	return rec, nil
}

func (s *Store) Query(ctx context.Context, filter record.QueryFilter) (*record.QueryResult, error) {
	where := "WHERE 1=1"
	var args []interface{}
	if filter.ChainID != "" {
		where += " AND chain_id = ?"
		args = append(args, filter.ChainID)
	}
	if filter.Module != "" {
		where += " AND module = ?"
		args = append(args, filter.Module)
	}
	if filter.CreatedAtFrom != nil {
		where += " AND created_at >= ?"
		args = append(args, *filter.CreatedAtFrom)
	}
	if filter.CreatedAtTo != nil {
		where += " AND created_at <= ?"
		args = append(args, *filter.CreatedAtTo)
	}

	var total int
	countQ := "SELECT COUNT(*) FROM records " + where
	if err := s.db.QueryRowContext(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("sqlite: query count: %w", err)
	}

	order := "created_at ASC, hash ASC"
	if filter.ChainID != "" {
		order = "idx ASC"
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	selectQ := fmt.Sprintf(`SELECT hash, chain_id, idx, prev_hash, created_at, module, body, context, signature
		FROM records %s ORDER BY %s LIMIT ? OFFSET ?`, where, order)
	rows, err := s.db.QueryContext(ctx, selectQ, append(args, limit, filter.Offset)...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query select: %w", err)
	}
	defer rows.Close()

	var records []*record.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan query row: %w", err)
		}
		if matchesProjection(rec, filter) {
			records = append(records, rec)
		}
	}

	return &record.QueryResult{
		Records: records,
		Total:   total,
		HasMore: filter.Offset+len(records) < total,
	}, rows.Err()
}

func matchesProjection(rec *record.Record, filter record.QueryFilter) bool {
	if filter.Module == "" || len(filter.ProjectionMatch) == 0 {
		return true
	}
	for k, v := range filter.ProjectionMatch {
		bodyVal, ok := rec.Body[k]
		if !ok || bodyVal != v {
			return false
		}
	}
	return true
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row scanner) (*record.Record, error) {
	var rec record.Record
	var bodyJSON []byte
	var contextJSON []byte
	var prevHash sql.NullString

	if err := row.Scan(&rec.Hash, &rec.ChainID, &rec.Index, &prevHash, &rec.CreatedAt, &rec.Module, &bodyJSON, &contextJSON, &rec.Signature); err != nil {
		return nil, err
	}
	if prevHash.Valid {
		rec.PrevHash = &prevHash.String
	}
	if len(bodyJSON) > 0 {
		if err := json.Unmarshal(bodyJSON, &rec.Body); err != nil {
			return nil, fmt.Errorf("unmarshal body: %w", err)
		}
	}
	if len(contextJSON) > 0 {
		if err := json.Unmarshal(contextJSON, &rec.Context); err != nil {
			return nil, fmt.Errorf("unmarshal context: %w", err)
		}
	}
	return &rec, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
