package notify

import (
	"context"
	"errors"

	"github.com/dealhawk/dealhawk/internal/model"
)

// Notifier receives the monitor's outward-facing events. Implementations
// must tolerate being called with a canceled context during shutdown.
type Notifier interface {
	// Startup announces that the monitor began watching.
	Startup(ctx context.Context) error

	// NewListings announces listings appearing for the first time, batched
	// per cycle.
	NewListings(ctx context.Context, listings []model.Listing) error

	// QuantityChanged announces an availability move on a known listing.
	QuantityChanged(ctx context.Context, listing model.Listing, oldQty, newQty int) error

	// CommitmentChanged announces a change in this account's committed
	// units for a listing.
	CommitmentChanged(ctx context.Context, listing model.Listing, oldQty, newQty int) error

	// MonitorError reports a failed cycle or other operational fault.
	MonitorError(ctx context.Context, message string) error

	// Summary posts the full table of active listings.
	Summary(ctx context.Context, listings []model.Listing) error
}

// Fanout delivers every notification to each sink in order. A failing
// sink does not stop the others; errors are joined.
type Fanout []Notifier

func (f Fanout) Startup(ctx context.Context) error {
	var errs []error
	for _, n := range f {
		errs = append(errs, n.Startup(ctx))
	}
	return errors.Join(errs...)
}

func (f Fanout) NewListings(ctx context.Context, listings []model.Listing) error {
	var errs []error
	for _, n := range f {
		errs = append(errs, n.NewListings(ctx, listings))
	}
	return errors.Join(errs...)
}

func (f Fanout) QuantityChanged(ctx context.Context, listing model.Listing, oldQty, newQty int) error {
	var errs []error
	for _, n := range f {
		errs = append(errs, n.QuantityChanged(ctx, listing, oldQty, newQty))
	}
	return errors.Join(errs...)
}

func (f Fanout) CommitmentChanged(ctx context.Context, listing model.Listing, oldQty, newQty int) error {
	var errs []error
	for _, n := range f {
		errs = append(errs, n.CommitmentChanged(ctx, listing, oldQty, newQty))
	}
	return errors.Join(errs...)
}

func (f Fanout) MonitorError(ctx context.Context, message string) error {
	var errs []error
	for _, n := range f {
		errs = append(errs, n.MonitorError(ctx, message))
	}
	return errors.Join(errs...)
}

func (f Fanout) Summary(ctx context.Context, listings []model.Listing) error {
	var errs []error
	for _, n := range f {
		errs = append(errs, n.Summary(ctx, listings))
	}
	return errors.Join(errs...)
}
