// Package store holds the raw bytes of every resource fetched during a
// bootstrap run, keyed by resource name. A single instance is created by the
// pipeline orchestrator and handed to every consumer; the fetch phase is the
// only writer and runs to completion before any reader phase starts.
package store

import "sync"

// Store is the process-wide resource cache for one bootstrap run.
type Store struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// New creates an empty Store.
func New() *Store {
	return &Store{blobs: make(map[string][]byte)}
}

// Put stores the bytes for a resource name. A second Put for the same name
// overwrites the previous bytes.
func (s *Store) Put(name string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[name] = data
}

// Get returns the bytes stored under name and whether the name is present.
func (s *Store) Get(name string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[name]
	return data, ok
}

// Len reports how many resources are currently stored.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
