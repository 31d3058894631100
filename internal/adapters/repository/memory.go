package repository

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/okian/dkp/internal/domain/profile"
)

// MemoryStore keeps profiles in process memory. Stored values are copied on
// the way in and out so callers cannot alias them.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]profile.Profile
	closed   bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[string]profile.Profile)}
}

func (s *MemoryStore) Save(_ context.Context, p profile.Profile) (profile.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return profile.Profile{}, ErrClosed
	}
	if prev, ok := s.profiles[p.Name]; ok {
		p.ID = prev.ID
	}
	p.Entities = slices.Clone(p.Entities)
	s.profiles[p.Name] = p
	return clone(p), nil
}

func (s *MemoryStore) Get(_ context.Context, name string) (profile.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return profile.Profile{}, ErrClosed
	}
	p, ok := s.profiles[name]
	if !ok {
		return profile.Profile{}, ErrNotFound
	}
	return clone(p), nil
}

func (s *MemoryStore) List(_ context.Context) ([]profile.Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	out := make([]profile.Info, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, p.Info())
	}
	slices.SortFunc(out, func(a, b profile.Info) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (s *MemoryStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if _, ok := s.profiles[name]; !ok {
		return ErrNotFound
	}
	delete(s.profiles, name)
	return nil
}

func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.profiles)
}

// Close drops every profile. Later calls fail with ErrClosed.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.profiles = map[string]profile.Profile{}
	return nil
}

func clone(p profile.Profile) profile.Profile {
	p.Entities = slices.Clone(p.Entities)
	return p
}
