// Copyright 2025 Certen Protocol
//
// Postgres-backed Record Store. Grounded on pkg/database/client.go's
// connection-pool tuning and pkg/database/repository_attestation.go's
// parameterized-query, RETURNING-clause CRUD idiom.

package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/lib/pq"

	"github.com/certen/ledger-engine/pkg/logging"
	"github.com/certen/ledger-engine/pkg/record"
	"github.com/certen/ledger-engine/pkg/store"
)

// Config configures the Postgres connection.
type Config struct {
	ConnectionString string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxIdleTime  time.Duration
	ConnMaxLifetime  time.Duration
}

// DefaultConfig returns production-sane pool settings.
func DefaultConfig(connectionString string) *Config {
	return &Config{
		ConnectionString: connectionString,
		MaxOpenConns:     25,
		MaxIdleConns:     5,
		ConnMaxIdleTime:  5 * time.Minute,
		ConnMaxLifetime:  time.Hour,
	}
}

// Store is a Postgres-backed implementation of store.Store.
type Store struct {
	db     *sql.DB
	logger *log.Logger
}

var _ store.Store = (*Store)(nil)

// Option configures a Store at construction.
type Option func(*Store)

// WithLogger overrides the default logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New opens a connection pool and ensures the records schema exists.
func New(cfg *Config, opts ...Option) (*Store, error) {
	if cfg == nil || cfg.ConnectionString == "" {
		return nil, errors.New("postgres: connection string must not be empty")
	}

	db, err := sql.Open("postgres", cfg.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	s := &Store{db: db, logger: logging.New("Store/Postgres")}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: init schema: %w", err)
	}

	return s, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS records (
	hash        TEXT PRIMARY KEY,
	chain_id    TEXT NOT NULL,
	idx         BIGINT NOT NULL,
	prev_hash   TEXT,
	created_at  BIGINT NOT NULL,
	module      TEXT NOT NULL,
	body        JSONB NOT NULL,
	context     JSONB,
	signature   BYTEA
);
CREATE UNIQUE INDEX IF NOT EXISTS records_chain_index ON records(chain_id, idx);
CREATE INDEX IF NOT EXISTS records_chain_id ON records(chain_id);
CREATE INDEX IF NOT EXISTS records_module ON records(module);
`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

func (s *Store) Put(ctx context.Context, rec *record.Record) error {
	bodyJSON, err := json.Marshal(rec.Body)
	if err != nil {
		return fmt.Errorf("postgres: marshal body: %w", err)
	}
	var contextJSON []byte
	if rec.Context != nil {
		contextJSON, err = json.Marshal(rec.Context)
		if err != nil {
			return fmt.Errorf("postgres: marshal context: %w", err)
		}
	}

	const q = `INSERT INTO records (hash, chain_id, idx, prev_hash, created_at, module, body, context, signature)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err = s.db.ExecContext(ctx, q, rec.Hash, rec.ChainID, rec.Index, rec.PrevHash, rec.CreatedAt, rec.Module, bodyJSON, contextJSON, rec.Signature)
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
		if pqErr.Constraint == "records_pkey" {
			return store.ErrDuplicateHash
		}
		if pqErr.Constraint == "records_chain_index" {
			return store.ErrDuplicateChainIndex
		}
	}
	return fmt.Errorf("postgres: put: %w", err)
}

func (s *Store) GetByHash(ctx context.Context, hash string) (*record.Record, error) {
	const q = `SELECT hash, chain_id, idx, prev_hash, created_at, module, body, context, signature FROM records WHERE hash = $1`
	row := s.db.QueryRowContext(ctx, q, hash)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: get by hash: %w", err)
	}
	return rec, nil
}

func (s *Store) GetChain(ctx context.Context, chainID string, opts record.ChainReadOptions) ([]*record.Record, error) {
	order := "ASC"
	if opts.Reverse {
		order = "DESC"
	}
	q := fmt.Sprintf(`SELECT hash, chain_id, idx, prev_hash, created_at, module, body, context, signature
		FROM records WHERE chain_id = $1 ORDER BY idx %s`, order)
	args := []interface{}{chainID}
	if opts.Limit > 0 {
		q += " LIMIT $2 OFFSET $3"
		args = append(args, opts.Limit, opts.Offset)
	} else if opts.Offset > 0 {
		q += " OFFSET $2"
		args = append(args, opts.Offset)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: get chain: %w", err)
	}
	defer rows.Close()

	var out []*record.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan chain row: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) GetHead(ctx context.Context, chainID string) (*record.Record, error) {
	const q = `SELECT hash, chain_id, idx, prev_hash, created_at, module, body, context, signature
		FROM records WHERE chain_id = $1 ORDER BY idx DESC LIMIT 1`
	row := s.db.QueryRowContext(ctx, q, chainID)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: get head: %w", err)
	}
	return rec, nil
}

func (s *Store) Query(ctx context.Context, filter record.QueryFilter) (*record.QueryResult, error) {
	where := "WHERE 1=1"
	var args []interface{}
	argN := 1
	add := func(clause string, val interface{}) {
		argN++
		where += fmt.Sprintf(" AND %s $%d", clause, argN-1)
		args = append(args, val)
	}
	if filter.ChainID != "" {
		add("chain_id =", filter.ChainID)
	}
	if filter.Module != "" {
		add("module =", filter.Module)
	}
	if filter.CreatedAtFrom != nil {
		add("created_at >=", *filter.CreatedAtFrom)
	}
	if filter.CreatedAtTo != nil {
		add("created_at <=", *filter.CreatedAtTo)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records "+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("postgres: query count: %w", err)
	}

	order := "created_at ASC, hash ASC"
	if filter.ChainID != "" {
		order = "idx ASC"
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	selectArgs := append(append([]interface{}{}, args...), limit, filter.Offset)
	selectQ := fmt.Sprintf(`SELECT hash, chain_id, idx, prev_hash, created_at, module, body, context, signature
		FROM records %s ORDER BY %s LIMIT $%d OFFSET $%d`, where, order, argN, argN+1)

	rows, err := s.db.QueryContext(ctx, selectQ, selectArgs...)
	if err != nil {
		return nil, fmt.Errorf("postgres: query select: %w", err)
	}
	defer rows.Close()

	var records []*record.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan query row: %w", err)
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
