package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) (*SQLiteStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deals.db")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestSQLiteOpenIdempotent(t *testing.T) {
	s, path := openTestStore(t)
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Reopening the same file must not fail on existing schema.
	s2, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s2.Close()

	if err := s2.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestSQLiteGetNotFound(t *testing.T) {
	s, _ := openTestStore(t)

	_, err := s.Get(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteUpsertLifecycle(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	r, err := s.Upsert(ctx, UpsertParams{ListingID: "A", Quantity: 5, SeenAt: 1000})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if r.FirstSeenAt != 1000 || r.LastSeenAt != 1000 {
		t.Errorf("seen times = (%d, %d), want (1000, 1000)", r.FirstSeenAt, r.LastSeenAt)
	}
	if r.CommittedQuantity != nil {
		t.Errorf("CommittedQuantity = %v, want nil", r.CommittedQuantity)
	}

	committed := true
	qty := 3
	r, err = s.Upsert(ctx, UpsertParams{
		ListingID: "A", Quantity: 3, SeenAt: 2000,
		Committed: &committed, CommittedQuantity: &qty,
	})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if r.FirstSeenAt != 1000 {
		t.Errorf("FirstSeenAt = %d, want 1000 (must not move)", r.FirstSeenAt)
	}
	if r.LastSeenAt != 2000 {
		t.Errorf("LastSeenAt = %d, want 2000", r.LastSeenAt)
	}
	if !r.Committed || r.CommittedQuantity == nil || *r.CommittedQuantity != 3 {
		t.Errorf("commit fields = (%v, %v), want (true, 3)", r.Committed, r.CommittedQuantity)
	}

	// Commit fields survive a later plain observation.
	r, err = s.Upsert(ctx, UpsertParams{ListingID: "A", Quantity: 2, SeenAt: 3000})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if !r.Committed || r.CommittedQuantity == nil || *r.CommittedQuantity != 3 {
		t.Errorf("commit fields = (%v, %v), want (true, 3) after plain upsert", r.Committed, r.CommittedQuantity)
	}
}

func TestSQLiteAllOrder(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	for i, id := range []string{"C", "A", "B"} {
		if _, err := s.Upsert(ctx, UpsertParams{ListingID: id, Quantity: i + 1, SeenAt: int64(1000 + i)}); err != nil {
			t.Fatalf("Upsert(%s) failed: %v", id, err)
		}
	}
	if _, err := s.Upsert(ctx, UpsertParams{ListingID: "A", Quantity: 9, SeenAt: 5000}); err != nil {
		t.Fatalf("Upsert(A) failed: %v", err)
	}

	all, err := s.All(ctx)
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}

	want := []string{"C", "A", "B"}
	if len(all) != len(want) {
		t.Fatalf("len(All()) = %d, want %d", len(all), len(want))
	}
	for i, id := range want {
		if all[i].ListingID != id {
			t.Errorf("All()[%d].ListingID = %q, want %q", i, all[i].ListingID, id)
		}
	}
}

func TestSQLiteSurvivesReopen(t *testing.T) {
	s, path := openTestStore(t)
	ctx := context.Background()

	committed := true
	qty := 2
	if _, err := s.Upsert(ctx, UpsertParams{
		ListingID: "A", Quantity: 5, SeenAt: 1000,
		Committed: &committed, CommittedQuantity: &qty,
	}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	s2, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s2.Close()

	r, err := s2.Get(ctx, "A")
	if err != nil {
		t.Fatalf("Get after reopen failed: %v", err)
	}
	if r.LastQuantity != 5 || !r.Committed || r.CommittedQuantity == nil || *r.CommittedQuantity != 2 {
		t.Errorf("record after reopen = %+v, want quantity 5 committed 2", r)
	}
}

func TestSQLiteStats(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	committed := true
	two := 2
	if _, err := s.Upsert(ctx, UpsertParams{
		ListingID: "A", Quantity: 5, SeenAt: time.Now().UnixMicro(),
		Committed: &committed, CommittedQuantity: &two,
	}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if _, err := s.Upsert(ctx, UpsertParams{ListingID: "B", Quantity: 1, SeenAt: 1000}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if st.TotalDeals != 2 {
		t.Errorf("TotalDeals = %d, want 2", st.TotalDeals)
	}
	if st.CommittedDeals != 1 {
		t.Errorf("CommittedDeals = %d, want 1", st.CommittedDeals)
	}
	if st.CommittedUnits != 2 {
		t.Errorf("CommittedUnits = %d, want 2", st.CommittedUnits)
	}
	if st.SeenLastWeek != 1 {
		t.Errorf("SeenLastWeek = %d, want 1", st.SeenLastWeek)
	}
}
