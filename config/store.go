package config

import "sync"

// Store holds the process-wide provider configuration. It is created once at
// start-up and passed by reference to whatever needs the defaults.
type Store struct {
	mu      sync.RWMutex
	initial ProviderConfig
	current ProviderConfig
}

// NewStore creates a store seeded with initial.
func NewStore(initial ProviderConfig) *Store {
	return &Store{
		initial: initial.Clone(),
		current: initial.Clone(),
	}
}

// Get returns a copy of the current configuration; callers may modify it freely.
func (s *Store) Get() ProviderConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// Set merges partial into the current configuration, keeping keys it does not name.
func (s *Store) Set(partial ProviderConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = s.current.Merge(partial)
}

// Replace swaps the whole configuration, as done on a file reload.
func (s *Store) Replace(cfg ProviderConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = cfg.Clone()
}

// Reset restores the configuration the store was created with.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = s.initial.Clone()
}
