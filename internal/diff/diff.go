package diff

import "github.com/dealhawk/dealhawk/internal/model"

// Baseline is a read-only view of previously stored listing state.
type Baseline interface {
	// Lookup returns the state record for a listing id, if one exists.
	Lookup(listingID string) (model.StateRecord, bool)
}

// Records is a prefetched Baseline keyed by listing id. The monitor loads
// one per cycle so that diffing itself touches no storage.
type Records map[string]model.StateRecord

// Lookup implements Baseline.
func (r Records) Lookup(listingID string) (model.StateRecord, bool) {
	rec, ok := r[listingID]
	return rec, ok
}

// Diff compares a scraped snapshot against the baseline and returns one
// change event per new or changed listing, in snapshot order.
//
// Rules:
//   - listing absent from the baseline: EventNewListing
//   - listing present with a different quantity: EventQuantityChanged
//   - listing present with an equal quantity: no event
//   - baseline records absent from the snapshot are deliberately ignored:
//     no event and no state change for a listing that disappeared
//
// Diff performs no I/O and never mutates its inputs, so running it twice
// over the same inputs yields the same events.
func Diff(snapshot []model.Listing, base Baseline) []model.ChangeEvent {
	var events []model.ChangeEvent

	for _, l := range snapshot {
		existing, ok := base.Lookup(l.ID)
		if !ok {
			events = append(events, model.ChangeEvent{
				Kind:        model.EventNewListing,
				Listing:     l,
				NewQuantity: l.QuantityAvailable,
			})
			continue
		}

		if existing.LastQuantity != l.QuantityAvailable {
			events = append(events, model.ChangeEvent{
				Kind:        model.EventQuantityChanged,
				Listing:     l,
				OldQuantity: existing.LastQuantity,
				NewQuantity: l.QuantityAvailable,
			})
		}
	}

	return events
}
