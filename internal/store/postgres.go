package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dealhawk/dealhawk/internal/config"
	"github.com/dealhawk/dealhawk/internal/database"
	"github.com/dealhawk/dealhawk/internal/model"
)

//go:embed schema_postgres.sql
var postgresSchema string

// PostgresStore persists deal state in PostgreSQL for deployments where
// several processes need to read the same state.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects a pool and applies the schema.
func OpenPostgres(ctx context.Context, cfg config.DBConfig) (*PostgresStore, error) {
	pool, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Get returns the state record for a listing, or ErrNotFound.
func (s *PostgresStore) Get(ctx context.Context, listingID string) (model.StateRecord, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT listing_id, last_quantity, first_seen_at, last_seen_at, committed, committed_quantity
		FROM deal_state
		WHERE listing_id = $1
	`, listingID)

	var r model.StateRecord
	err := row.Scan(&r.ListingID, &r.LastQuantity, &r.FirstSeenAt, &r.LastSeenAt, &r.Committed, &r.CommittedQuantity)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.StateRecord{}, ErrNotFound
	}
	if err != nil {
		return model.StateRecord{}, fmt.Errorf("scan deal state: %w", err)
	}
	return r, nil
}

// Upsert records one observation in a single round trip. The update path
// never touches first_seen_at; commit fields fall back to the stored
// values when the params carry nil.
func (s *PostgresStore) Upsert(ctx context.Context, p UpsertParams) (model.StateRecord, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO deal_state (listing_id, last_quantity, first_seen_at, last_seen_at, committed, committed_quantity)
		VALUES ($1, $2, $3, $3, COALESCE($4, FALSE), $5)
		ON CONFLICT (listing_id) DO UPDATE SET
			last_quantity      = EXCLUDED.last_quantity,
			last_seen_at       = EXCLUDED.last_seen_at,
			committed          = COALESCE($4, deal_state.committed),
			committed_quantity = COALESCE($5, deal_state.committed_quantity)
		RETURNING listing_id, last_quantity, first_seen_at, last_seen_at, committed, committed_quantity
	`, p.ListingID, p.Quantity, p.SeenAt, p.Committed, p.CommittedQuantity)

	var r model.StateRecord
	err := row.Scan(&r.ListingID, &r.LastQuantity, &r.FirstSeenAt, &r.LastSeenAt, &r.Committed, &r.CommittedQuantity)
	if err != nil {
		return model.StateRecord{}, fmt.Errorf("upsert deal state: %w", err)
	}
	return r, nil
}

// All returns every record in first-seen order.
func (s *PostgresStore) All(ctx context.Context) ([]model.StateRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT listing_id, last_quantity, first_seen_at, last_seen_at, committed, committed_quantity
		FROM deal_state
		ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("query deal state: %w", err)
	}
	defer rows.Close()

	var result []model.StateRecord
	for rows.Next() {
		var r model.StateRecord
		if err := rows.Scan(&r.ListingID, &r.LastQuantity, &r.FirstSeenAt, &r.LastSeenAt, &r.Committed, &r.CommittedQuantity); err != nil {
			return nil, fmt.Errorf("scan deal state: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// Stats summarizes the state table.
func (s *PostgresStore) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE committed),
		       COALESCE(SUM(committed_quantity) FILTER (WHERE committed), 0),
		       COUNT(*) FILTER (WHERE first_seen_at >= $1)
		FROM deal_state
	`, weekAgoMicros()).Scan(&st.TotalDeals, &st.CommittedDeals, &st.CommittedUnits, &st.SeenLastWeek)
	if err != nil {
		return Stats{}, fmt.Errorf("query stats: %w", err)
	}
	return st, nil
}

// Ping verifies the pool is healthy.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
