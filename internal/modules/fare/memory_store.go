// README: In-process fare config store for local runs without Postgres and for tests.
package fare

import (
	"context"
	"sync"
	"time"

	"autometer/internal/types"
)

type MemoryStore struct {
	mu     sync.Mutex
	active *Config
	writes int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) GetActive(_ context.Context) (Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return Config{}, types.ErrNotFound
	}
	return *m.active, nil
}

func (m *MemoryStore) InsertDefault(_ context.Context, rates Rates, intervalMinutes int) (Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		m.active = newConfig(rates, intervalMinutes)
		m.writes++
	}
	return *m.active, nil
}

func (m *MemoryStore) Upsert(_ context.Context, rates Rates, intervalMinutes int) (Config, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if m.active == nil {
		m.active = newConfig(rates, intervalMinutes)
		return *m.active, true, nil
	}
	m.active.BaseFare = rates.BaseFare
	m.active.PerKmRate = rates.PerKmRate
	m.active.WaitingChargePerInterval = rates.WaitingChargePerInterval
	m.active.IntervalMinutes = intervalMinutes
	m.active.UpdatedAt = time.Now()
	return *m.active, false, nil
}

// Writes reports how many times the active record was created or rewritten.
func (m *MemoryStore) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

func newConfig(rates Rates, intervalMinutes int) *Config {
	now := time.Now()
	return &Config{
		ID:                       string(types.NewID()),
		BaseFare:                 rates.BaseFare,
		PerKmRate:                rates.PerKmRate,
		WaitingChargePerInterval: rates.WaitingChargePerInterval,
		IntervalMinutes:          intervalMinutes,
		IsSystemDefault:          true,
		IsActive:                 true,
		SchemaVersion:            SchemaVersion,
		CreatedAt:                now,
		UpdatedAt:                now,
	}
}
