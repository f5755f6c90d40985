package store

import (
	"context"
	"sync"

	"github.com/dealhawk/dealhawk/internal/model"
)

// MemoryStore holds deal state in process memory. State is lost on
// restart; intended for tests and dry runs.
type MemoryStore struct {
	mu sync.RWMutex

	// All known records indexed by listing id.
	records map[string]*model.StateRecord

	// Listing ids in first-seen order.
	order []string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*model.StateRecord),
	}
}

// Get returns the state record for a listing, or ErrNotFound.
func (s *MemoryStore) Get(_ context.Context, listingID string) (model.StateRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[listingID]
	if !ok {
		return model.StateRecord{}, ErrNotFound
	}
	return cloneRecord(*r), nil
}

// Upsert adds or updates a record (write-locked).
func (s *MemoryStore) Upsert(_ context.Context, p UpsertParams) (model.StateRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[p.ListingID]
	if !ok {
		r = &model.StateRecord{
			ListingID:   p.ListingID,
			FirstSeenAt: p.SeenAt,
		}
		s.records[p.ListingID] = r
		s.order = append(s.order, p.ListingID)
	}

	r.LastQuantity = p.Quantity
	r.LastSeenAt = p.SeenAt
	if p.Committed != nil {
		r.Committed = *p.Committed
	}
	if p.CommittedQuantity != nil {
		q := *p.CommittedQuantity
		r.CommittedQuantity = &q
	}

	return cloneRecord(*r), nil
}

// All returns every record in first-seen order.
func (s *MemoryStore) All(_ context.Context) ([]model.StateRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]model.StateRecord, 0, len(s.order))
	for _, id := range s.order {
		if r, ok := s.records[id]; ok {
			result = append(result, cloneRecord(*r))
		}
	}
	return result, nil
}

// Stats summarizes the held records.
func (s *MemoryStore) Stats(_ context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := weekAgoMicros()
	var st Stats
	st.TotalDeals = len(s.records)
	for _, r := range s.records {
		if r.Committed {
			st.CommittedDeals++
			if r.CommittedQuantity != nil {
				st.CommittedUnits += int64(*r.CommittedQuantity)
			}
		}
		if r.FirstSeenAt >= cutoff {
			st.SeenLastWeek++
		}
	}
	return st, nil
}

// Ping always succeeds for the in-memory store.
func (s *MemoryStore) Ping(_ context.Context) error { return nil }

// Close discards nothing; held state simply becomes unreachable.
func (s *MemoryStore) Close() error { return nil }

// cloneRecord deep-copies a record so callers never share the stored
// CommittedQuantity pointer.
func cloneRecord(r model.StateRecord) model.StateRecord {
	if r.CommittedQuantity != nil {
		q := *r.CommittedQuantity
		r.CommittedQuantity = &q
	}
	return r
}
