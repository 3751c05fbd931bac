package user

import "sync"

// Store holds the onboarded profile.
type Store interface {
	Current() (Profile, bool)
	Save(p Profile)
}

// MemoryStore implements Store in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	profile *Profile
}

// NewMemoryStore returns an empty store; Current reports false until Save.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Current returns the onboarded profile, if any.
func (s *MemoryStore) Current() (Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return Profile{}, false
	}
	return *s.profile, true
}

// Save replaces the stored profile.
func (s *MemoryStore) Save(p Profile) {
	s.mu.Lock()
	s.profile = &p
	s.mu.Unlock()
}
