package match

import "sync"

// Store exposes discovered profiles to handlers and the reply scheduler.
type Store interface {
	Save(profiles ...Profile)
	List() []Profile
	FindByID(id string) (Profile, bool)
}

// MemoryStore keeps every profile surfaced during the process lifetime.
type MemoryStore struct {
	mu    sync.RWMutex
	order []string
	items map[string]Profile
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied profiles.
func NewMemoryStore(items ...Profile) *MemoryStore {
	s := &MemoryStore{items: make(map[string]Profile, len(items))}
	s.Save(items...)
	return s
}

// Save inserts or replaces profiles by ID. First-seen order is kept.
func (s *MemoryStore) Save(profiles ...Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range profiles {
		if p.ID == "" {
			continue
		}
		if _, ok := s.items[p.ID]; !ok {
			s.order = append(s.order, p.ID)
		}
		s.items[p.ID] = p
	}
}

// List returns profiles in the order they were first saved.
func (s *MemoryStore) List() []Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Profile, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}
	return out
}

// FindByID looks up a profile by identifier.
func (s *MemoryStore) FindByID(id string) (Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.items[id]
	return p, ok
}
