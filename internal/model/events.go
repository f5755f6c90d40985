package model

// EventKind classifies a change detected between a snapshot and the stored
// baseline. Listings whose quantity is unchanged produce no event at all.
type EventKind string

const (
	EventNewListing      EventKind = "new_listing"
	EventQuantityChanged EventKind = "quantity_changed"
)

// ChangeEvent describes one detected difference for one listing.
type ChangeEvent struct {
	Kind        EventKind      `json:"kind"`
	Listing     Listing        `json:"listing"`          // Snapshot listing the event refers to
	OldQuantity int            `json:"old_quantity"`     // Previously stored quantity (EventQuantityChanged only)
	NewQuantity int            `json:"new_quantity"`     // Snapshot quantity (EventQuantityChanged only)
	Commit      *CommitOutcome `json:"commit,omitempty"` // Auto-commit result, nil when no commit was attempted
}

// CommitStatus is the terminal status of an auto-commit attempt sequence.
type CommitStatus string

const (
	CommitCommitted CommitStatus = "committed"
	CommitRetried   CommitStatus = "retried_and_committed"
	CommitFailed    CommitStatus = "failed"
)

// CommitOutcome records how an auto-commit attempt sequence ended. At most
// two remote calls ever back one outcome: the initial attempt and, for a
// recoverable minimum-quantity rejection, a single corrective retry.
type CommitOutcome struct {
	Status            CommitStatus `json:"status"`
	AttemptedQuantity int          `json:"attempted_quantity"` // Quantity of the first attempt
	FinalQuantity     int          `json:"final_quantity"`     // Quantity that succeeded, 0 on failure
	Reason            string       `json:"reason,omitempty"`   // Remote failure text, empty on success
}

// Committed reports a first-attempt success at the requested quantity.
func Committed(quantity int) CommitOutcome {
	return CommitOutcome{
		Status:            CommitCommitted,
		AttemptedQuantity: quantity,
		FinalQuantity:     quantity,
	}
}

// RetriedAndCommitted reports a success on the corrective retry after a
// minimum-quantity rejection of the first attempt.
func RetriedAndCommitted(attempted, final int) CommitOutcome {
	return CommitOutcome{
		Status:            CommitRetried,
		AttemptedQuantity: attempted,
		FinalQuantity:     final,
	}
}

// Failed reports a terminal failure with the remote message that caused it.
func Failed(attempted int, reason string) CommitOutcome {
	return CommitOutcome{
		Status:            CommitFailed,
		AttemptedQuantity: attempted,
		Reason:            reason,
	}
}

// Succeeded reports whether the sequence ended with a commitment in place.
func (o CommitOutcome) Succeeded() bool {
	return o.Status == CommitCommitted || o.Status == CommitRetried
}
