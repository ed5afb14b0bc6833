package memory

import (
	"sync"
	"time"

	"github.com/stoalabs/ratebot/internal/domain"
)

// RegistryStore is the in-process conversation cache: user identity to that
// user's session registry. Entries are created on first contact and never
// evicted; the cache lives for the process lifetime.
type RegistryStore struct {
	mu         sync.RWMutex
	registries map[domain.UserID]*domain.Registry
	now        func() time.Time
}

func NewRegistryStore() *RegistryStore {
	return &RegistryStore{
		registries: make(map[domain.UserID]*domain.Registry),
		now:        time.Now,
	}
}

// NewRegistryStoreWithClock injects the clock used to name default sessions.
func NewRegistryStoreWithClock(now func() time.Time) *RegistryStore {
	s := NewRegistryStore()
	s.now = now
	return s
}

// GetOrCreate returns the registry for userID, creating a default one on
// first contact. Insertion happens under the write lock, so concurrent first
// contact from the same user resolves to a single registry.
func (s *RegistryStore) GetOrCreate(userID domain.UserID) *domain.Registry {
	s.mu.RLock()
	reg, ok := s.registries[userID]
	s.mu.RUnlock()
	if ok {
		return reg
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if reg, ok := s.registries[userID]; ok {
		return reg
	}
	reg = domain.NewRegistry(domain.DefaultSessionName(s.now()))
	s.registries[userID] = reg
	return reg
}

// Len reports how many users have a registry.
func (s *RegistryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.registries)
}
