package storage

import (
	"sync"
	"time"

	"github.com/iabalyuk/geoguide/places"
)

// Storage represents a thread-safe in-memory cache of place details
// It implements the StorageInterface
type Storage struct {
	mu          sync.RWMutex
	details     map[string]cachedDetail // map[placeID]cachedDetail
	lastUpdated time.Time               // Last time a record was written
	now         func() time.Time
}

// cachedDetail is a detail record with the moment it was fetched
type cachedDetail struct {
	Detail    places.PlaceDetail
	FetchedAt time.Time
}

// New creates a new storage instance
func New() *Storage {
	return &Storage{
		details: make(map[string]cachedDetail),
		now:     time.Now,
	}
}

// GetDetail returns a copy of the cached detail record
func (s *Storage) GetDetail(placeID string) (places.PlaceDetail, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.details[placeID]
	if !ok {
		return places.PlaceDetail{}, false
	}
	return copyDetail(entry.Detail), true
}

// PutDetail stores the detail record under its place id
func (s *Storage) PutDetail(detail places.PlaceDetail) {
	s.putWithTime(detail, s.now())
}

func (s *Storage) putWithTime(detail places.PlaceDetail, fetchedAt time.Time) {
	if detail.ID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.details[detail.ID] = cachedDetail{Detail: copyDetail(detail), FetchedAt: fetchedAt}
	if fetchedAt.After(s.lastUpdated) {
		s.lastUpdated = fetchedAt
	}
}

// PruneOlderThan removes records fetched more than maxAge ago
func (s *Storage) PruneOlderThan(maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-maxAge)
	removed := 0
	for id, entry := range s.details {
		if entry.FetchedAt.Before(cutoff) {
			delete(s.details, id)
			removed++
		}
	}
	return removed
}

// Count returns the number of cached records
func (s *Storage) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.details)
}

// GetLastUpdated returns the time of the last write
func (s *Storage) GetLastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.lastUpdated
}

// ResetStorage clears all stored data
func (s *Storage) ResetStorage() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.details = make(map[string]cachedDetail)
	s.lastUpdated = time.Time{}
}

// copyDetail duplicates the slice and pointer fields so callers cannot mutate the cache
func copyDetail(d places.PlaceDetail) places.PlaceDetail {
	if d.Rating != nil {
		rating := *d.Rating
		d.Rating = &rating
	}
	if d.OpeningHours != nil {
		hours := make([]string, len(d.OpeningHours))
		copy(hours, d.OpeningHours)
		d.OpeningHours = hours
	}
	return d
}
