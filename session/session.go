package session

import (
	"sort"
	"time"

	"github.com/iabalyuk/geoguide/geo"
	"github.com/iabalyuk/geoguide/places"
)

// Stage represents the stage of the user's dialogue
type Stage int

const (
	StageAwaitingLocation Stage = iota
	StageAwaitingRadius
	StageAwaitingInterests
	StageBrowsing
	StageTerminated
)

func (s Stage) String() string {
	switch s {
	case StageAwaitingLocation:
		return "awaiting_location"
	case StageAwaitingRadius:
		return "awaiting_radius"
	case StageAwaitingInterests:
		return "awaiting_interests"
	case StageBrowsing:
		return "browsing"
	case StageTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// NoSelection is the SelectedIndex of a session where no candidate was picked yet
const NoSelection = -1

// Interests is a set of chosen categories. The empty set means "all".
type Interests map[places.Category]struct{}

// Toggle adds c when absent and removes it when present
func (in Interests) Toggle(c places.Category) {
	if _, ok := in[c]; ok {
		delete(in, c)
		return
	}
	in[c] = struct{}{}
}

// Has reports whether c is selected
func (in Interests) Has(c places.Category) bool {
	_, ok := in[c]
	return ok
}

// Len returns the number of selected categories
func (in Interests) Len() int {
	return len(in)
}

// Sorted returns the selected categories in display order
func (in Interests) Sorted() []places.Category {
	out := make([]places.Category, 0, len(in))
	for _, c := range places.Categories() {
		if in.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// Session holds everything the dialogue has collected for one user
type Session struct {
	Stage          Stage
	Location       *geo.Coordinate
	Radius         int
	Interests      Interests
	Candidates     []places.Place
	SelectedIndex  int
	SelectedDetail *places.PlaceDetail
	StartedAt      time.Time
	UpdatedAt      time.Time
}

// New returns a fresh session waiting for a location
func New(now time.Time) *Session {
	return &Session{
		Stage:         StageAwaitingLocation,
		Interests:     Interests{},
		SelectedIndex: NoSelection,
		StartedAt:     now,
		UpdatedAt:     now,
	}
}

// HasSelection reports whether SelectedIndex points into Candidates
func (s *Session) HasSelection() bool {
	return s.SelectedIndex >= 0 && s.SelectedIndex < len(s.Candidates)
}

// Clone returns a deep copy of the session
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	if s.Location != nil {
		loc := *s.Location
		out.Location = &loc
	}
	out.Interests = make(Interests, len(s.Interests))
	for c := range s.Interests {
		out.Interests[c] = struct{}{}
	}
	if s.Candidates != nil {
		out.Candidates = make([]places.Place, len(s.Candidates))
		copy(out.Candidates, s.Candidates)
	}
	if s.SelectedDetail != nil {
		d := *s.SelectedDetail
		if d.Rating != nil {
			r := *d.Rating
			d.Rating = &r
		}
		if d.OpeningHours != nil {
			d.OpeningHours = append([]string(nil), d.OpeningHours...)
		}
		out.SelectedDetail = &d
	}
	return &out
}

// Codes returns the category codes in lexical order
func (in Interests) Codes() []string {
	out := make([]string, 0, len(in))
	for c := range in {
		out = append(out, string(c))
	}
	sort.Strings(out)
	return out
}
