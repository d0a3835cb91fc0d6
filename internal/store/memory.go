package store

import (
	"context"
	"sync"

	"github.com/akozyrev/route-weather/internal/weather"
)

// MemoryStore is a concurrency-safe single-slot dataset store. Used in tests
// and as the fallback backend when no durable one is configured.
type MemoryStore struct {
	mu  sync.RWMutex
	ds  weather.Dataset
	set bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Replace swaps the slot's contents in one step. Callers treat datasets as
// immutable after handing them over.
func (s *MemoryStore) Replace(_ context.Context, ds weather.Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ds = ds
	s.set = true
	return nil
}

func (s *MemoryStore) Load(_ context.Context) (weather.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.set {
		return weather.Dataset{}, weather.ErrNoDataset
	}
	return s.ds, nil
}
