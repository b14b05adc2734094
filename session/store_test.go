package session

import (
	"sync"
	"testing"
	"time"

	"github.com/iabalyuk/geoguide/geo"
	"github.com/iabalyuk/geoguide/places"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterestsToggle(t *testing.T) {
	in := Interests{}
	in.Toggle(places.CategoryNature)
	in.Toggle(places.CategoryHistoric)
	assert.True(t, in.Has(places.CategoryNature))
	assert.Equal(t, []places.Category{places.CategoryHistoric, places.CategoryNature}, in.Sorted())
	assert.Equal(t, []string{"historic", "nature"}, in.Codes())

	in.Toggle(places.CategoryNature)
	assert.False(t, in.Has(places.CategoryNature))
	assert.Equal(t, 1, in.Len())
}

func TestSessionSelection(t *testing.T) {
	s := New(time.Now())
	assert.Equal(t, StageAwaitingLocation, s.Stage)
	assert.False(t, s.HasSelection())

	s.Candidates = []places.Place{{ID: "a"}, {ID: "b"}}
	s.SelectedIndex = 1
	assert.True(t, s.HasSelection())

	s.SelectedIndex = 2
	assert.False(t, s.HasSelection())
}

func TestStageString(t *testing.T) {
	assert.Equal(t, "browsing", StageBrowsing.String())
	assert.Equal(t, "unknown", Stage(42).String())
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	store := NewMemoryStore(time.Hour, nil)

	_, ok := store.Get(1)
	assert.False(t, ok)

	s := New(time.Now())
	s.Location = &geo.Coordinate{Lat: 55.75, Lng: 37.62}
	s.Interests.Toggle(places.CategoryCulture)
	s.Candidates = []places.Place{{ID: "a"}}
	store.Put(1, s)

	s.Location.Lat = 0
	s.Interests.Toggle(places.CategoryNature)
	s.Candidates[0].ID = "mutated"

	got, ok := store.Get(1)
	require.True(t, ok)
	assert.Equal(t, 55.75, got.Location.Lat)
	assert.Equal(t, []places.Category{places.CategoryCulture}, got.Interests.Sorted())
	assert.Equal(t, "a", got.Candidates[0].ID)

	got.Stage = StageBrowsing
	again, _ := store.Get(1)
	assert.Equal(t, StageAwaitingLocation, again.Stage)

	assert.Equal(t, 1, store.Len())
	store.Remove(1)
	_, ok = store.Get(1)
	assert.False(t, ok)
}

func TestMemoryStoreExpires(t *testing.T) {
	store := NewMemoryStore(50*time.Millisecond, nil)
	store.Put(7, New(time.Now()))

	time.Sleep(120 * time.Millisecond)
	_, ok := store.Get(7)
	assert.False(t, ok)
}

func TestMemoryStoreLockSerializesUser(t *testing.T) {
	store := NewMemoryStore(time.Hour, nil)
	store.Put(1, New(time.Now()))

	cats := places.Categories()
	const rounds = 20

	var wg sync.WaitGroup
	for i := 0; i < rounds*len(cats); i++ {
		wg.Add(1)
		go func(c places.Category) {
			defer wg.Done()
			unlock := store.Lock(1)
			defer unlock()

			s, ok := store.Get(1)
			if !assert.True(t, ok) {
				return
			}
			s.Interests.Toggle(c)
			store.Put(1, s)
		}(cats[i%len(cats)])
	}
	wg.Wait()

	// Every category was toggled an even number of times.
	s, ok := store.Get(1)
	require.True(t, ok)
	assert.Zero(t, s.Interests.Len())
	assert.Zero(t, store.lockCount())
}

func TestMemoryStoreUnlockIsIdempotent(t *testing.T) {
	store := NewMemoryStore(time.Hour, nil)
	unlock := store.Lock(5)
	unlock()
	unlock()
	assert.Zero(t, store.lockCount())

	unlock = store.Lock(5)
	defer unlock()
	assert.Equal(t, 1, store.lockCount())
}
