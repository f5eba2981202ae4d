package store

import (
	"errors"
	"sync"
	"time"

	"github.com/AliShahbazi81/OpenWeatherMapAPI/internal/weather"
)

var (
	// ErrNotFound is returned when no data is available for a given location.
	ErrNotFound = errors.New("no weather data for location")
)

// MemoryStore is a concurrency-safe in-memory implementation of weather.Store.
type MemoryStore struct {
	mu sync.RWMutex

	// key: location key, value: snapshots ordered by FetchedAt
	data map[string][]weather.Snapshot

	maxHistory int           // max number of snapshots per location
	maxAge     time.Duration // optional max age for snapshots
	now        func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited; same for maxAge.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string][]weather.Snapshot),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// SaveSnapshot appends a new snapshot for a location and enforces retention.
func (s *MemoryStore) SaveSnapshot(loc weather.Location, snapshot weather.Snapshot) {
	key := loc.Key()

	s.mu.Lock()
	defer s.mu.Unlock()

	history := append(s.data[key], snapshot)

	if s.maxHistory > 0 && len(history) > s.maxHistory {
		history = history[len(history)-s.maxHistory:]
	}

	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge)
		i := 0
		for i < len(history) && history[i].FetchedAt.Before(cutoff) {
			i++
		}
		// Always keep the newest snapshot as the last good value.
		if i == len(history) {
			i = len(history) - 1
		}
		history = history[i:]
	}

	s.data[key] = history
}

// GetLatest returns the most recent snapshot for a location.
func (s *MemoryStore) GetLatest(loc weather.Location) (weather.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.data[loc.Key()]
	if len(history) == 0 {
		return weather.Snapshot{}, ErrNotFound
	}
	return history[len(history)-1], nil
}

// GetHistory returns a copy of all retained snapshots for a location, oldest first.
func (s *MemoryStore) GetHistory(loc weather.Location) ([]weather.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.data[loc.Key()]
	if len(history) == 0 {
		return nil, ErrNotFound
	}
	out := make([]weather.Snapshot, len(history))
	copy(out, history)
	return out, nil
}
