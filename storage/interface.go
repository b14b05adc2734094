package storage

import (
	"time"

	"github.com/iabalyuk/geoguide/places"
)

// StorageInterface defines the interface for place detail cache implementations
type StorageInterface interface {
	// GetDetail returns a cached detail record by place id
	GetDetail(placeID string) (places.PlaceDetail, bool)

	// PutDetail stores or replaces the detail record of a place
	PutDetail(detail places.PlaceDetail)

	// PruneOlderThan removes records fetched more than maxAge ago and returns how many were removed
	PruneOlderThan(maxAge time.Duration) int

	// Count returns the number of cached records
	Count() int

	// GetLastUpdated returns the time of the last write
	GetLastUpdated() time.Time

	// ResetStorage clears all stored data
	ResetStorage()
}

var (
	_ StorageInterface   = (*Storage)(nil)
	_ StorageInterface   = (*SQLiteStorage)(nil)
	_ places.DetailCache = (*Storage)(nil)
	_ places.DetailCache = (*SQLiteStorage)(nil)
)
