package auth

import (
	"sync"
	"time"
)

// MockStore is an in-memory SettingsStore for tests and examples.
type MockStore struct {
	mu       sync.RWMutex
	profiles map[string]*Profile

	// FailStore makes Store return ErrStoreUnavailable, for fallback tests.
	FailStore bool
}

func NewMockStore() *MockStore {
	return &MockStore{profiles: make(map[string]*Profile)}
}

func (m *MockStore) Store(profile *Profile) error {
	if m.FailStore {
		return ErrStoreUnavailable
	}
	if profile == nil || profile.Username == "" {
		return ErrInvalidProfile
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *profile
	if copied.LastModified.IsZero() {
		copied.LastModified = time.Now()
	}
	m.profiles[profile.Username] = &copied
	return nil
}

func (m *MockStore) Retrieve(username string) (*Profile, error) {
	if username == "" {
		return nil, ErrInvalidProfile
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	profile, ok := m.profiles[username]
	if !ok {
		return nil, ErrProfileNotFound
	}
	copied := *profile
	return &copied, nil
}

func (m *MockStore) List() ([]*Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Profile, 0, len(m.profiles))
	for _, profile := range m.profiles {
		copied := *profile
		out = append(out, &copied)
	}
	return out, nil
}

func (m *MockStore) Delete(username string) error {
	if username == "" {
		return ErrInvalidProfile
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[username]; !ok {
		return ErrProfileNotFound
	}
	delete(m.profiles, username)
	return nil
}

func (m *MockStore) Exists(username string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.profiles[username]
	return ok
}
