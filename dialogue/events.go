package dialogue

import (
	"github.com/iabalyuk/geoguide/geo"
	"github.com/iabalyuk/geoguide/places"
)

// Event is a user input decoded by the transport
type Event interface {
	event()
}

type (
	// Start begins a new dialogue (/start)
	Start struct{}

	// LocationShared carries the user's position
	LocationShared struct{ Coordinate geo.Coordinate }

	// RadiusChosen carries the chosen search radius in meters
	RadiusChosen struct{ Meters int }

	// InterestToggled flips one interest category
	InterestToggled struct{ Category places.Category }

	// InterestsDone finishes interest selection and runs the search
	InterestsDone struct{}

	// PlaceSelected picks a candidate by its position in the list
	PlaceSelected struct{ Index int }

	// RouteRequested asks for a walking route to a candidate
	RouteRequested struct{ Index int }

	DescriptionRequested struct{}
	NarrationRequested   struct{}
	ReviewsRequested     struct{}

	// BackToList shows the candidate list again
	BackToList struct{}

	// Restart discards the session and starts over
	Restart struct{}

	// Cancel ends the dialogue (/cancel)
	Cancel struct{}

	// TextEntered is any free text the user typed
	TextEntered struct{ Text string }
)

func (Start) event()                {}
func (LocationShared) event()       {}
func (RadiusChosen) event()         {}
func (InterestToggled) event()      {}
func (InterestsDone) event()        {}
func (PlaceSelected) event()        {}
func (RouteRequested) event()       {}
func (DescriptionRequested) event() {}
func (NarrationRequested) event()   {}
func (ReviewsRequested) event()     {}
func (BackToList) event()           {}
func (Restart) event()              {}
func (Cancel) event()               {}
func (TextEntered) event()          {}

// EventName returns a short name of the event for logs
func EventName(ev Event) string {
	switch ev.(type) {
	case Start:
		return "start"
	case LocationShared:
		return "location"
	case RadiusChosen:
		return "radius"
	case InterestToggled:
		return "interest"
	case InterestsDone:
		return "interests_done"
	case PlaceSelected:
		return "place"
	case RouteRequested:
		return "route"
	case DescriptionRequested:
		return "describe"
	case NarrationRequested:
		return "narrate"
	case ReviewsRequested:
		return "reviews"
	case BackToList:
		return "back"
	case Restart:
		return "restart"
	case Cancel:
		return "cancel"
	case TextEntered:
		return "text"
	default:
		return "unknown"
	}
}
