// Package postgres implements the store.Store interface on PostgreSQL.
//
// Documents are kept in a single teal_documents table as JSONB rows tagged
// with their collection name. Obtain a handle via [New]; all methods are
// safe for concurrent use through the underlying [pgxpool.Pool].
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tealbot/teal/pkg/store"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// Store is a PostgreSQL-backed document store holding a single connection
// pool for the lifetime of the process.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to the PostgreSQL database at dsn, pings it, and runs
// [Migrate] to ensure the documents table exists.
func New(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres store: parse dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres store: create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres store: ping: %w", err)
	}

	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres store: migrate: %w", err)
	}

	return &Store{pool: pool}, nil
}

// NewFromPool wraps an existing pool without running migrations. Useful in
// tests that manage their own schema.
func NewFromPool(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Put implements [store.Store]. The document is marshalled to JSON and
// inserted as a new row; rows are append-only.
func (s *Store) Put(ctx context.Context, collection string, doc any) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("postgres store: marshal document for %q: %w", collection, err)
	}

	const q = `
		INSERT INTO teal_documents (collection, doc)
		VALUES ($1, $2)`

	if _, err := s.pool.Exec(ctx, q, collection, payload); err != nil {
		return fmt.Errorf("postgres store: put into %q: %w", collection, err)
	}
	return nil
}

// Scan implements [store.Store]. It matches on a single top-level JSON
// field and returns documents in insertion order (oldest first).
func (s *Store) Scan(ctx context.Context, collection, filterKey, filterValue string) ([]json.RawMessage, error) {
	const q = `
		SELECT doc
		FROM   teal_documents
		WHERE  collection = $1
		  AND  doc->>$2   = $3
		ORDER  BY inserted_at, id`

	rows, err := s.pool.Query(ctx, q, collection, filterKey, filterValue)
	if err != nil {
		return nil, fmt.Errorf("postgres store: scan %q: %w", collection, err)
	}

	docs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (json.RawMessage, error) {
		var raw []byte
		if err := row.Scan(&raw); err != nil {
			return nil, err
		}
		return json.RawMessage(raw), nil
	})
	if err != nil {
		return nil, fmt.Errorf("postgres store: scan rows for %q: %w", collection, err)
	}
	if docs == nil {
		docs = []json.RawMessage{}
	}
	return docs, nil
}

// Ping implements [store.Store].
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres store: ping: %w", err)
	}
	return nil
}

// Close releases the connection pool. The Store must not be used afterwards.
func (s *Store) Close() {
	s.pool.Close()
}
