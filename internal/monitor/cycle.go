package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dealhawk/dealhawk/internal/diff"
	"github.com/dealhawk/dealhawk/internal/model"
	"github.com/dealhawk/dealhawk/internal/store"
)

// runCycle executes one reconciliation pass. Report.State holds the phase
// in progress until the cycle ends as StateDone or StateFailed. A failed
// cycle is reported through the notifier; it never stops the loop.
func (m *Monitor) runCycle(ctx context.Context) model.CycleReport {
	start := time.Now()
	report := model.CycleReport{
		CycleID:   uuid.New(),
		StartedAt: start.UnixMicro(),
		State:     model.StateFetching,
	}
	logger := m.logger.With("cycle", report.CycleID.String())
	logger.Debug("cycle started")

	snapshot, err := m.fetcher.FetchListings(ctx)
	if err != nil {
		return m.failCycle(ctx, report, start, logger, fmt.Errorf("fetch listings: %w", err))
	}
	report.ListingsSeen = len(snapshot)
	m.metrics.SetListingsSeen(len(snapshot))

	report.State = model.StateDiffing
	baseline, err := m.loadBaseline(ctx, snapshot)
	if err != nil {
		m.metrics.CountStoreError()
		return m.failCycle(ctx, report, start, logger, err)
	}
	events := diff.Diff(snapshot, baseline)
	for i := range events {
		m.metrics.CountEvent(string(events[i].Kind))
		switch events[i].Kind {
		case model.EventNewListing:
			report.NewListings++
		case model.EventQuantityChanged:
			report.QuantityChanges++
		}
	}

	report.State = model.StateCommitting
	m.commitNew(ctx, events, baseline, &report, logger)

	report.State = model.StatePersisting
	if err := m.persistEvents(ctx, events); err != nil {
		m.metrics.CountStoreError()
		return m.failCycle(ctx, report, start, logger, err)
	}

	report.State = model.StateNotifying
	m.notifyEvents(ctx, events, logger)

	report.State = model.StateDone
	report.DurationMS = time.Since(start).Milliseconds()
	logger.Info("cycle complete",
		"listings", report.ListingsSeen,
		"new", report.NewListings,
		"changed", report.QuantityChanges,
		"commits", report.CommitsAttempted,
		"duration_ms", report.DurationMS,
	)

	return report
}

// failCycle closes out a cycle that cannot continue. State reached so far
// is left as is; the failure becomes an error-class notification.
func (m *Monitor) failCycle(ctx context.Context, report model.CycleReport, start time.Time, logger *slog.Logger, err error) model.CycleReport {
	logger.Error("cycle failed", "phase", string(report.State), "err", err)

	report.Err = err.Error()
	report.State = model.StateFailed
	report.DurationMS = time.Since(start).Milliseconds()

	msg := fmt.Sprintf("Cycle %s failed: %v", report.CycleID, err)
	if nerr := m.notifier.MonitorError(ctx, msg); nerr != nil {
		m.metrics.CountNotifyError()
		logger.Warn("error notification failed", "err", nerr)
	}

	return report
}

// loadBaseline resolves the stored record for every snapshot listing up
// front, so diffing itself touches no storage.
func (m *Monitor) loadBaseline(ctx context.Context, snapshot []model.Listing) (diff.Records, error) {
	baseline := make(diff.Records, len(snapshot))
	for _, l := range snapshot {
		rec, err := m.store.Get(ctx, l.ID)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load state for %s: %w", l.ID, err)
		}
		baseline[l.ID] = rec
	}
	return baseline, nil
}

// commitNew runs the commit protocol for each new listing, attaching the
// outcome to its event. Listings whose stored record is already committed
// are skipped, so a commitment is never placed twice.
func (m *Monitor) commitNew(ctx context.Context, events []model.ChangeEvent, baseline diff.Records, report *model.CycleReport, logger *slog.Logger) {
	if !m.autoCommitEnabled() {
		return
	}

	for i := range events {
		ev := &events[i]
		if ev.Kind != model.EventNewListing {
			continue
		}
		if rec, ok := baseline.Lookup(ev.Listing.ID); ok && rec.Committed {
			logger.Debug("already committed, skipping",
				"listing_id", ev.Listing.ID,
			)
			continue
		}

		report.CommitsAttempted++
		outcome := m.committer.Commit(ctx, ev.Listing, m.cfg.AutoCommitQuantity, m.submit)
		ev.Commit = &outcome
		m.metrics.CountCommit(string(outcome.Status))
		if outcome.Succeeded() {
			report.CommitsSucceeded++
		}
	}
}

// persistEvents upserts every listing touched this cycle, new or changed.
// Commit fields are written only when the commitment succeeded; a failed
// attempt still records the observed quantity so drift stays tracked.
func (m *Monitor) persistEvents(ctx context.Context, events []model.ChangeEvent) error {
	seenAt := time.Now().UnixMicro()

	for i := range events {
		ev := &events[i]
		p := store.UpsertParams{
			ListingID: ev.Listing.ID,
			Quantity:  ev.Listing.QuantityAvailable,
			SeenAt:    seenAt,
		}
		if ev.Commit != nil && ev.Commit.Succeeded() {
			committed := true
			qty := ev.Commit.FinalQuantity
			p.Committed = &committed
			p.CommittedQuantity = &qty
		}

		if _, err := m.store.Upsert(ctx, p); err != nil {
			return fmt.Errorf("persist %s: %w", ev.Listing.ID, err)
		}
	}

	return nil
}

// notifyEvents forwards the cycle's events: new listings as one batch,
// then quantity moves and successful commitments individually. Delivery
// is best effort and never fails the cycle.
func (m *Monitor) notifyEvents(ctx context.Context, events []model.ChangeEvent, logger *slog.Logger) {
	var fresh []model.Listing
	for i := range events {
		if events[i].Kind == model.EventNewListing {
			fresh = append(fresh, events[i].Listing)
		}
	}
	if len(fresh) > 0 {
		if err := m.notifier.NewListings(ctx, fresh); err != nil {
			m.metrics.CountNotifyError()
			logger.Warn("new listings notification failed", "count", len(fresh), "err", err)
		}
	}

	for i := range events {
		ev := &events[i]
		if ev.Kind == model.EventQuantityChanged {
			if err := m.notifier.QuantityChanged(ctx, ev.Listing, ev.OldQuantity, ev.NewQuantity); err != nil {
				m.metrics.CountNotifyError()
				logger.Warn("quantity notification failed", "listing_id", ev.Listing.ID, "err", err)
			}
		}
	}

	for i := range events {
		ev := &events[i]
		if ev.Commit == nil || !ev.Commit.Succeeded() {
			continue
		}
		if err := m.notifier.CommitmentChanged(ctx, ev.Listing, 0, ev.Commit.FinalQuantity); err != nil {
			m.metrics.CountNotifyError()
			logger.Warn("commitment notification failed", "listing_id", ev.Listing.ID, "err", err)
		}
	}
}
