// README: In-process account store for local runs without Postgres and for tests.
package account

import (
	"context"
	"sync"
	"time"

	"autometer/internal/types"
)

type MemoryStore struct {
	mu      sync.Mutex
	byID    map[string]*Account
	byPhone map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]*Account),
		byPhone: make(map[string]string),
	}
}

func (m *MemoryStore) FindByID(_ context.Context, id string) (Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.byID[id]
	if !ok {
		return Account{}, types.ErrNotFound
	}
	return *acc, nil
}

func (m *MemoryStore) FindByPhone(_ context.Context, phone string) (Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byPhone[phone]
	if !ok {
		return Account{}, types.ErrNotFound
	}
	return *m.byID[id], nil
}

func (m *MemoryStore) FindAdmin(_ context.Context) (Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var found *Account
	for _, acc := range m.byID {
		if acc.Role != RoleAdmin {
			continue
		}
		if found == nil || acc.CreatedAt.Before(found.CreatedAt) {
			found = acc
		}
	}
	if found == nil {
		return Account{}, types.ErrNotFound
	}
	return *found, nil
}

func (m *MemoryStore) Create(_ context.Context, acc Account) (Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byPhone[acc.PhoneNumber]; ok {
		return Account{}, ErrPhoneTaken
	}
	now := time.Now()
	acc.CreatedAt, acc.UpdatedAt = now, now
	m.byID[acc.ID] = &acc
	m.byPhone[acc.PhoneNumber] = acc.ID
	return acc, nil
}

func (m *MemoryStore) UpdateProfile(_ context.Context, id, name, phone, passwordHash string) (Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.byID[id]
	if !ok {
		return Account{}, types.ErrNotFound
	}
	if owner, taken := m.byPhone[phone]; taken && owner != id {
		return Account{}, ErrPhoneTaken
	}
	delete(m.byPhone, acc.PhoneNumber)
	acc.Name, acc.PhoneNumber, acc.PasswordHash = name, phone, passwordHash
	acc.UpdatedAt = time.Now()
	m.byPhone[phone] = id
	return *acc, nil
}

func (m *MemoryStore) UpsertAdmin(_ context.Context, phone, name, passwordHash string) (Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	var admin *Account
	for _, acc := range m.byID {
		if acc.Role == RoleAdmin && (admin == nil || acc.CreatedAt.Before(admin.CreatedAt)) {
			admin = acc
		}
	}
	if id, ok := m.byPhone[phone]; ok && (admin == nil || id != admin.ID) {
		return Account{}, ErrPhoneTaken
	}
	if admin != nil {
		delete(m.byPhone, admin.PhoneNumber)
		admin.PhoneNumber, admin.Name, admin.PasswordHash, admin.UpdatedAt = phone, name, passwordHash, now
		m.byPhone[phone] = admin.ID
		return *admin, nil
	}
	acc := &Account{
		ID:           string(types.NewID()),
		PhoneNumber:  phone,
		Role:         RoleAdmin,
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.byID[acc.ID] = acc
	m.byPhone[phone] = acc.ID
	return *acc, nil
}
