package model

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// Listing Types
// -----------------------------------------------------------------------------

// Listing represents one deal card scraped from the buying-group dashboard.
type Listing struct {
	ID                string          `json:"id"`                   // Primary key, derived from store + title + price
	Title             string          `json:"title"`                // Display title
	Store             string          `json:"store"`                // Retailer the deal ships from
	PriceCents        int64           `json:"price_cents"`          // Unit price (cents)
	QuantityAvailable int             `json:"quantity_available"`   // Units the group still accepts
	CommittedQuantity int             `json:"committed_quantity"`   // Units this account has already committed on the site
	URL               string          `json:"url"`                  // Outbound product link
	DeliverBy         string          `json:"deliver_by,omitempty"` // Delivery deadline text, empty when the card has none
	Raw               json.RawMessage `json:"raw,omitempty"`        // Scraped card fields, retained for notification rendering
}

// PriceString formats the listing price as a dollar amount (e.g. "$249.99").
func (l Listing) PriceString() string {
	return fmt.Sprintf("$%d.%02d", l.PriceCents/100, l.PriceCents%100)
}

// StateRecord is the persisted observation state for one listing.
//
// A record exists iff the listing has been observed at least once. It is
// created on first observation and updated in place; FirstSeenAt never
// changes after creation.
type StateRecord struct {
	ListingID         string `json:"listing_id"`                   // Primary key
	LastQuantity      int    `json:"last_quantity"`                // Quantity at the most recent observation
	FirstSeenAt       int64  `json:"first_seen_at"`                // First observation (µs since epoch), immutable
	LastSeenAt        int64  `json:"last_seen_at"`                 // Most recent observation (µs since epoch)
	Committed         bool   `json:"committed"`                    // Whether an automated commitment succeeded
	CommittedQuantity *int   `json:"committed_quantity,omitempty"` // Units committed, nil until a commitment succeeds
}

// -----------------------------------------------------------------------------
// Cycle Types
// -----------------------------------------------------------------------------

// CycleState identifies the step a reconciliation cycle is executing.
type CycleState string

const (
	StateFetching   CycleState = "fetching"
	StateDiffing    CycleState = "diffing"
	StateCommitting CycleState = "committing"
	StatePersisting CycleState = "persisting"
	StateNotifying  CycleState = "notifying"
	StateDone       CycleState = "done"
	StateFailed     CycleState = "failed"
)

// CycleReport summarizes one reconciliation cycle. Reports are transient;
// the monitor keeps only the most recent one for the status endpoint.
type CycleReport struct {
	CycleID          uuid.UUID  `json:"cycle_id"`          // Unique id carried in logs and notifications
	StartedAt        int64      `json:"started_at"`        // Cycle start (µs since epoch)
	DurationMS       int64      `json:"duration_ms"`       // Wall-clock duration in milliseconds
	State            CycleState `json:"state"`             // Final state: StateDone or StateFailed
	ListingsSeen     int        `json:"listings_seen"`     // Listings in the fetched snapshot
	NewListings      int        `json:"new_listings"`      // NewListing events emitted
	QuantityChanges  int        `json:"quantity_changes"`  // QuantityChanged events emitted
	CommitsAttempted int        `json:"commits_attempted"` // Commit controller invocations
	CommitsSucceeded int        `json:"commits_succeeded"` // Commits that ended committed
	Err              string     `json:"error,omitempty"`   // Failure description when State == StateFailed
}
