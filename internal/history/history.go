// Package history holds the process-lifetime record of every analysis
// result produced since startup. It is a single global, append-only store
// shared by all concurrent requests; access is serialized by a mutex.
package history

import (
	"sync"

	"soclisten/internal/models"
)

// Store is an append-only, in-memory result log. The zero value is not
// usable; create one with NewStore.
type Store struct {
	mu      sync.RWMutex
	results []models.AnalysisResult
}

func NewStore() *Store {
	return &Store{}
}

// Append adds a batch of results to the log in order.
func (s *Store) Append(batch []models.AnalysisResult) {
	if len(batch) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, batch...)
}

// Snapshot returns a copy of the accumulated results. Callers may retain or
// mutate the returned slice freely.
func (s *Store) Snapshot() []models.AnalysisResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.AnalysisResult, len(s.results))
	copy(out, s.results)
	return out
}

// Len reports the number of results recorded so far.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results)
}
