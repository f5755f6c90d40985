package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dealhawk/dealhawk/internal/model"
)

//go:embed schema_sqlite.sql
var sqliteSchema string

// SQLiteStore persists deal state in a local SQLite file. This is the
// default backend and matches a single-host deployment.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite creates or opens the database at path and applies the schema.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode
//   - 5-second busy timeout for lock contention
//   - a single writer connection to avoid SQLITE_BUSY errors
//
// Safe to call repeatedly; schema application is idempotent.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect database: %w", err)
	}

	// SQLite supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("execute %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Get returns the state record for a listing, or ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, listingID string) (model.StateRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT listing_id, last_quantity, first_seen_at, last_seen_at, committed, committed_quantity
		FROM deal_state
		WHERE listing_id = ?
	`, listingID)
	return scanStateRow(row)
}

// Upsert records one observation. The insert path stamps first_seen_at;
// the update path leaves it alone. Commit fields fall back to the stored
// values when the params carry nil.
func (s *SQLiteStore) Upsert(ctx context.Context, p UpsertParams) (model.StateRecord, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO deal_state (listing_id, last_quantity, first_seen_at, last_seen_at, committed, committed_quantity)
		VALUES (?, ?, ?, ?, COALESCE(?, 0), ?)
		ON CONFLICT (listing_id) DO UPDATE SET
			last_quantity      = excluded.last_quantity,
			last_seen_at       = excluded.last_seen_at,
			committed          = COALESCE(?, deal_state.committed),
			committed_quantity = COALESCE(?, deal_state.committed_quantity)
	`, p.ListingID, p.Quantity, p.SeenAt, p.SeenAt, p.Committed, p.CommittedQuantity,
		p.Committed, p.CommittedQuantity)
	if err != nil {
		return model.StateRecord{}, fmt.Errorf("upsert deal state: %w", err)
	}

	return s.Get(ctx, p.ListingID)
}

// All returns every record in first-seen (insertion) order.
func (s *SQLiteStore) All(ctx context.Context) ([]model.StateRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT listing_id, last_quantity, first_seen_at, last_seen_at, committed, committed_quantity
		FROM deal_state
		ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("query deal state: %w", err)
	}
	defer rows.Close()

	var result []model.StateRecord
	for rows.Next() {
		r, err := scanStateRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// Stats summarizes the state table.
func (s *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN committed THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN committed THEN COALESCE(committed_quantity, 0) ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN first_seen_at >= ? THEN 1 ELSE 0 END), 0)
		FROM deal_state
	`, weekAgoMicros()).Scan(&st.TotalDeals, &st.CommittedDeals, &st.CommittedUnits, &st.SeenLastWeek)
	if err != nil {
		return Stats{}, fmt.Errorf("query stats: %w", err)
	}
	return st, nil
}

// Ping verifies the database file is still reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database handle.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanStateRow(row rowScanner) (model.StateRecord, error) {
	var r model.StateRecord
	var committedQty sql.NullInt64
	err := row.Scan(&r.ListingID, &r.LastQuantity, &r.FirstSeenAt, &r.LastSeenAt, &r.Committed, &committedQty)
	if errors.Is(err, sql.ErrNoRows) {
		return model.StateRecord{}, ErrNotFound
	}
	if err != nil {
		return model.StateRecord{}, fmt.Errorf("scan deal state: %w", err)
	}
	if committedQty.Valid {
		q := int(committedQty.Int64)
		r.CommittedQuantity = &q
	}
	return r, nil
}
