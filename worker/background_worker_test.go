package worker

import (
	"testing"
	"time"

	"github.com/iabalyuk/geoguide/places"
	"github.com/iabalyuk/geoguide/storage"
	"github.com/stretchr/testify/assert"
)

type countSessions int

func (c countSessions) Len() int { return int(c) }

func TestSweepPrunesAndCounts(t *testing.T) {
	store := storage.New()
	store.PutDetail(places.PlaceDetail{Place: places.Place{ID: "a"}})
	store.PutDetail(places.PlaceDetail{Place: places.Place{ID: "b"}})

	w := NewBackgroundWorker(NewBackgroundWorkerConfig{
		Storage:        store,
		Sessions:       countSessions(3),
		DetailCacheTTL: time.Hour,
	})

	stats := w.Sweep()
	assert.Equal(t, 0, stats.PrunedDetails)
	assert.Equal(t, 2, stats.CachedDetails)
	assert.Equal(t, 3, stats.Sessions)
	assert.False(t, stats.LastUpdated.IsZero())
	assert.Equal(t, stats, w.LastStats())

	// A negative age makes every record stale.
	w.detailCacheTTL = -time.Minute
	stats = w.Sweep()
	assert.Equal(t, 2, stats.PrunedDetails)
	assert.Zero(t, stats.CachedDetails)
}

func TestSweepWithoutCollaborators(t *testing.T) {
	w := NewBackgroundWorker(NewBackgroundWorkerConfig{})
	assert.Equal(t, Stats{}, w.Sweep())
	assert.Equal(t, defaultInterval, w.interval)
	assert.Equal(t, defaultDetailCacheTTL, w.detailCacheTTL)
}

func TestStartStop(t *testing.T) {
	w := NewBackgroundWorker(NewBackgroundWorkerConfig{
		Storage:  storage.New(),
		Sessions: countSessions(1),
		Interval: 10 * time.Millisecond,
	})

	w.Start()
	w.Start()
	assert.Eventually(t, func() bool { return w.LastStats().Sessions == 1 }, time.Second, 5*time.Millisecond)
	w.Stop()
	w.Stop()

	assert.False(t, w.isRunning)
}
