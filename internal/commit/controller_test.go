package commit

import (
	"context"
	"errors"
	"testing"

	"github.com/dealhawk/dealhawk/internal/model"
)

// scriptedSubmit returns a CommitFunc that replays the given results in
// order and records every quantity it was called with.
func scriptedSubmit(calls *[]int, results ...error) CommitFunc {
	return func(_ context.Context, _ string, quantity int) error {
		i := len(*calls)
		*calls = append(*calls, quantity)
		if i >= len(results) {
			return nil
		}
		return results[i]
	}
}

func TestCommitFirstAttemptSucceeds(t *testing.T) {
	c := NewController(nil)
	var calls []int

	outcome := c.Commit(context.Background(), model.Listing{ID: "A"}, 1, scriptedSubmit(&calls, nil))

	if outcome.Status != model.CommitCommitted {
		t.Errorf("Status = %q, want %q", outcome.Status, model.CommitCommitted)
	}
	if len(calls) != 1 || calls[0] != 1 {
		t.Errorf("calls = %v, want [1]", calls)
	}
}

func TestCommitMinQuantityRetry(t *testing.T) {
	c := NewController(nil)
	var calls []int
	submit := scriptedSubmit(&calls,
		&RemoteError{Message: "You must buy 3 or more of this item"},
		nil,
	)

	outcome := c.Commit(context.Background(), model.Listing{ID: "A"}, 1, submit)

	if outcome.Status != model.CommitRetried {
		t.Errorf("Status = %q, want %q", outcome.Status, model.CommitRetried)
	}
	if outcome.AttemptedQuantity != 1 {
		t.Errorf("AttemptedQuantity = %d, want 1", outcome.AttemptedQuantity)
	}
	if outcome.FinalQuantity != 3 {
		t.Errorf("FinalQuantity = %d, want 3", outcome.FinalQuantity)
	}
	if len(calls) != 2 || calls[0] != 1 || calls[1] != 3 {
		t.Errorf("calls = %v, want [1 3]", calls)
	}
}

func TestCommitNonMatchingErrorNoRetry(t *testing.T) {
	c := NewController(nil)
	var calls []int
	submit := scriptedSubmit(&calls, &RemoteError{Message: "item sold out"})

	outcome := c.Commit(context.Background(), model.Listing{ID: "A"}, 1, submit)

	if outcome.Status != model.CommitFailed {
		t.Errorf("Status = %q, want %q", outcome.Status, model.CommitFailed)
	}
	if outcome.Reason != "item sold out" {
		t.Errorf("Reason = %q, want %q", outcome.Reason, "item sold out")
	}
	if len(calls) != 1 {
		t.Errorf("calls = %v, want exactly one remote call", calls)
	}
}

func TestCommitMinQuantityNotAboveDesired(t *testing.T) {
	tests := []struct {
		name    string
		desired int
		msg     string
	}{
		{"equal to desired", 2, "must buy 2 or more"},
		{"below desired", 5, "must buy 3 or more"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController(nil)
			var calls []int
			submit := scriptedSubmit(&calls, &RemoteError{Message: tt.msg})

			outcome := c.Commit(context.Background(), model.Listing{ID: "A"}, tt.desired, submit)

			if outcome.Status != model.CommitFailed {
				t.Errorf("Status = %q, want %q", outcome.Status, model.CommitFailed)
			}
			if outcome.Reason != tt.msg {
				t.Errorf("Reason = %q, want first rejection %q", outcome.Reason, tt.msg)
			}
			if len(calls) != 1 {
				t.Errorf("calls = %v, want no corrective retry", calls)
			}
		})
	}
}

func TestCommitRetryAlsoRejected(t *testing.T) {
	c := NewController(nil)
	var calls []int
	submit := scriptedSubmit(&calls,
		&RemoteError{Message: "must buy 3 or more"},
		&RemoteError{Message: "item sold out"},
	)

	outcome := c.Commit(context.Background(), model.Listing{ID: "A"}, 1, submit)

	if outcome.Status != model.CommitFailed {
		t.Errorf("Status = %q, want %q", outcome.Status, model.CommitFailed)
	}
	if outcome.Reason != "item sold out" {
		t.Errorf("Reason = %q, want second rejection %q", outcome.Reason, "item sold out")
	}
	if len(calls) != 2 || calls[1] != 3 {
		t.Errorf("calls = %v, want [1 3]", calls)
	}
}

func TestCommitTransportErrorNoRetry(t *testing.T) {
	c := NewController(nil)
	var calls []int
	submit := scriptedSubmit(&calls, errors.New("dial tcp: connection refused"))

	outcome := c.Commit(context.Background(), model.Listing{ID: "A"}, 1, submit)

	if outcome.Status != model.CommitFailed {
		t.Errorf("Status = %q, want %q", outcome.Status, model.CommitFailed)
	}
	if len(calls) != 1 {
		t.Errorf("calls = %v, want exactly one remote call", calls)
	}
}

// TestCommitNeverMoreThanTwoCalls pins the hard cap even when the site
// keeps answering with ever-higher minimums.
func TestCommitNeverMoreThanTwoCalls(t *testing.T) {
	c := NewController(nil)
	var calls []int
	submit := scriptedSubmit(&calls,
		&RemoteError{Message: "must buy 3 or more"},
		&RemoteError{Message: "must buy 6 or more"},
		nil,
	)

	outcome := c.Commit(context.Background(), model.Listing{ID: "A"}, 1, submit)

	if outcome.Status != model.CommitFailed {
		t.Errorf("Status = %q, want %q", outcome.Status, model.CommitFailed)
	}
	if len(calls) != 2 {
		t.Errorf("calls = %v, want the sequence capped at two attempts", calls)
	}
}
