package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dealhawk/dealhawk/internal/config"
	"github.com/dealhawk/dealhawk/internal/model"
)

// ErrNotFound is returned by Get when no record exists for the listing.
var ErrNotFound = errors.New("store: listing not found")

// UpsertParams carries one observation of a listing into the store.
// Commit fields are applied only when non-nil; a nil field leaves the
// stored value untouched.
type UpsertParams struct {
	ListingID         string
	Quantity          int
	SeenAt            int64 // Observation time (µs since epoch)
	Committed         *bool
	CommittedQuantity *int
}

// Stats aggregates the state table for reporting.
type Stats struct {
	TotalDeals     int   `json:"total_deals"`     // Listings ever observed
	CommittedDeals int   `json:"committed_deals"` // Listings with a successful commitment
	CommittedUnits int64 `json:"committed_units"` // Units committed across all listings
	SeenLastWeek   int   `json:"seen_last_week"`  // Listings first observed in the past 7 days
}

// Store persists per-listing observation state across monitor restarts.
//
// Every Upsert is a durable write: implementations must not buffer or
// defer it, because the monitor treats a returned error as fatal to the
// running cycle.
type Store interface {
	// Get returns the state record for a listing, or ErrNotFound.
	Get(ctx context.Context, listingID string) (model.StateRecord, error)

	// Upsert records one observation, creating the record on first sight.
	// FirstSeenAt is set at creation and never modified afterwards.
	Upsert(ctx context.Context, p UpsertParams) (model.StateRecord, error)

	// All returns every state record in first-seen order. Reporting only;
	// cycle logic looks records up individually with Get.
	All(ctx context.Context) ([]model.StateRecord, error)

	// Stats summarizes the state table.
	Stats(ctx context.Context) (Stats, error)

	// Ping verifies the backing storage is reachable.
	Ping(ctx context.Context) error

	// Close releases the backing storage.
	Close() error
}

// weekAgoMicros returns the Stats cutoff for recently seen deals (7 days).
func weekAgoMicros() int64 {
	return time.Now().Add(-7 * 24 * time.Hour).UnixMicro()
}

// New opens the store backend selected by cfg.
func New(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Backend {
	case "postgres":
		return OpenPostgres(ctx, cfg.Postgres)
	case "sqlite":
		return OpenSQLite(cfg.Path)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
