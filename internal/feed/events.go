package feed

import (
	"context"
	"time"

	"github.com/dealhawk/dealhawk/internal/model"
)

// Frame is the wire shape of one feed event.
type Frame struct {
	Type        string          `json:"type"`
	At          int64           `json:"at"` // Microseconds since epoch
	Listing     *model.Listing  `json:"listing,omitempty"`
	Listings    []model.Listing `json:"listings,omitempty"`
	OldQuantity int             `json:"old_quantity"`
	NewQuantity int             `json:"new_quantity"`
	Message     string          `json:"message,omitempty"`
}

// Frame types.
const (
	FrameStartup           = "startup"
	FrameNewListing        = "new_listing"
	FrameQuantityChanged   = "quantity_changed"
	FrameCommitmentChanged = "commitment_changed"
	FrameMonitorError      = "monitor_error"
	FrameSummary           = "summary"
)

// Events adapts the hub to the notifier surface so the live feed can sit
// in a notify fanout next to the webhook sink. Broadcast is
// fire-and-forget, so every method returns nil.
type Events struct {
	hub *Hub
}

// NewEvents wraps a hub in the notifier surface.
func NewEvents(hub *Hub) *Events {
	return &Events{hub: hub}
}

func (e *Events) Startup(ctx context.Context) error {
	e.hub.Broadcast(Frame{Type: FrameStartup, At: nowMicros()})
	return nil
}

func (e *Events) NewListings(ctx context.Context, listings []model.Listing) error {
	at := nowMicros()
	for _, l := range listings {
		e.hub.Broadcast(Frame{Type: FrameNewListing, At: at, Listing: &l})
	}
	return nil
}

func (e *Events) QuantityChanged(ctx context.Context, listing model.Listing, oldQty, newQty int) error {
	e.hub.Broadcast(Frame{
		Type:        FrameQuantityChanged,
		At:          nowMicros(),
		Listing:     &listing,
		OldQuantity: oldQty,
		NewQuantity: newQty,
	})
	return nil
}

func (e *Events) CommitmentChanged(ctx context.Context, listing model.Listing, oldQty, newQty int) error {
	e.hub.Broadcast(Frame{
		Type:        FrameCommitmentChanged,
		At:          nowMicros(),
		Listing:     &listing,
		OldQuantity: oldQty,
		NewQuantity: newQty,
	})
	return nil
}

func (e *Events) MonitorError(ctx context.Context, message string) error {
	e.hub.Broadcast(Frame{Type: FrameMonitorError, At: nowMicros(), Message: message})
	return nil
}

func (e *Events) Summary(ctx context.Context, listings []model.Listing) error {
	e.hub.Broadcast(Frame{Type: FrameSummary, At: nowMicros(), Listings: listings})
	return nil
}

func nowMicros() int64 {
	return time.Now().UnixMicro()
}
