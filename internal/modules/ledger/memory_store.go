// README: In-process ledger store for local runs without Postgres and for tests.
package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"autometer/internal/types"
)

type MemoryStore struct {
	mu        sync.Mutex
	byID      map[string]*Record
	byAccount map[string]string
	trips     []Trip
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:      make(map[string]*Record),
		byAccount: make(map[string]string),
	}
}

func (m *MemoryStore) GetByID(_ context.Context, id string) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.byID[id]
	if !ok {
		return Record{}, types.ErrNotFound
	}
	return *rec, nil
}

func (m *MemoryStore) GetByAccountID(_ context.Context, accountID string) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byAccount[accountID]
	if !ok {
		return Record{}, types.ErrNotFound
	}
	return *m.byID[id], nil
}

func (m *MemoryStore) CreateForAccount(_ context.Context, owner Owner) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.byAccount[owner.ID]; ok {
		return *m.byID[id], nil
	}
	now := time.Now()
	rec := &Record{
		ID:          string(types.NewID()),
		AccountID:   owner.ID,
		Name:        owner.Name,
		PhoneNumber: owner.PhoneNumber,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.byID[rec.ID] = rec
	m.byAccount[owner.ID] = rec.ID
	return *rec, nil
}

func (m *MemoryStore) IncrementCompleted(_ context.Context, id string, earnings float64) (Record, error) {
	return m.update(id, func(r *Record, now time.Time) {
		r.CompletedRides++
		r.TotalRides++
		r.TotalTrips++
		r.Earnings = types.Round2(r.Earnings + earnings)
		r.TotalEarnings = types.Round2(r.TotalEarnings + earnings)
		r.LastCompletedAt = &now
	})
}

func (m *MemoryStore) IncrementCancelled(_ context.Context, id string) (Record, error) {
	return m.update(id, func(r *Record, now time.Time) {
		r.CancelledRides++
		r.TotalRides++
		r.LastCancelledAt = &now
	})
}

func (m *MemoryStore) AddEarnings(_ context.Context, id string, amount float64) (Record, error) {
	return m.update(id, func(r *Record, _ time.Time) {
		r.Earnings = types.Round2(r.Earnings + amount)
		r.TotalEarnings = types.Round2(r.TotalEarnings + amount)
	})
}

func (m *MemoryStore) List(_ context.Context) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Record, 0, len(m.byID))
	for _, rec := range m.byID {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MemoryStore) AppendTrip(_ context.Context, trip Trip) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[trip.LedgerID]; !ok {
		return types.ErrNotFound
	}
	trip.RecordedAt = time.Now()
	m.trips = append(m.trips, trip)
	return nil
}

// Trips returns the trip log of one ledger in insertion order.
func (m *MemoryStore) Trips(ledgerID string) []Trip {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Trip
	for _, t := range m.trips {
		if t.LedgerID == ledgerID {
			out = append(out, t)
		}
	}
	return out
}

func (m *MemoryStore) update(id string, apply func(*Record, time.Time)) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.byID[id]
	if !ok {
		return Record{}, types.ErrNotFound
	}
	now := time.Now()
	apply(rec, now)
	rec.UpdatedAt = now
	return *rec, nil
}
