package commit

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dealhawk/dealhawk/internal/model"
)

// Controller drives the bounded auto-commit protocol: one attempt at the
// desired quantity, plus at most one corrective retry when the site
// rejects with a minimum-quantity message above the desired amount.
type Controller struct {
	logger *slog.Logger
}

// NewController creates a controller. A nil logger falls back to
// slog.Default().
func NewController(logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{logger: logger}
}

// Commit runs the protocol for one listing and returns the terminal
// outcome. submit is called at most twice. The controller performs no
// deduplication: callers skip listings whose stored record is already
// committed.
func (c *Controller) Commit(ctx context.Context, listing model.Listing, desired int, submit CommitFunc) model.CommitOutcome {
	err := submit(ctx, listing.ID, desired)
	if err == nil {
		c.logger.Info("commitment placed",
			"listing_id", listing.ID,
			"quantity", desired,
		)
		return model.Committed(desired)
	}

	var remote *RemoteError
	if !errors.As(err, &remote) {
		c.logger.Error("commitment attempt failed",
			"listing_id", listing.ID,
			"quantity", desired,
			"err", err,
		)
		return model.Failed(desired, err.Error())
	}

	minQty, ok := ParseMinQuantity(remote.Message)
	if !ok || minQty <= desired {
		c.logger.Warn("commitment rejected",
			"listing_id", listing.ID,
			"quantity", desired,
			"reason", remote.Message,
		)
		return model.Failed(desired, remote.Message)
	}

	c.logger.Info("retrying commitment at site minimum",
		"listing_id", listing.ID,
		"attempted", desired,
		"minimum", minQty,
	)

	if err := submit(ctx, listing.ID, minQty); err != nil {
		reason := err.Error()
		if errors.As(err, &remote) {
			reason = remote.Message
		}
		c.logger.Warn("commitment retry rejected",
			"listing_id", listing.ID,
			"quantity", minQty,
			"reason", reason,
		)
		return model.Failed(desired, reason)
	}

	c.logger.Info("commitment placed at site minimum",
		"listing_id", listing.ID,
		"attempted", desired,
		"quantity", minQty,
	)
	return model.RetriedAndCommitted(desired, minQty)
}
