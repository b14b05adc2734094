package dialogue

import (
	"github.com/iabalyuk/geoguide/places"
	"github.com/iabalyuk/geoguide/session"
)

// Prompt tells the renderer which screen to show
type Prompt int

const (
	PromptLocation Prompt = iota
	PromptRadius
	PromptInterests
	PromptCandidates
	PromptDetail
	PromptRoute
	PromptNarration
	PromptNoResults
	PromptCancelled
)

func (p Prompt) String() string {
	switch p {
	case PromptLocation:
		return "location"
	case PromptRadius:
		return "radius"
	case PromptInterests:
		return "interests"
	case PromptCandidates:
		return "candidates"
	case PromptDetail:
		return "detail"
	case PromptRoute:
		return "route"
	case PromptNarration:
		return "narration"
	case PromptNoResults:
		return "no_results"
	case PromptCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Topic is the kind of generated text in a narration reply
type Topic int

const (
	TopicNone Topic = iota
	TopicDescription
	TopicNarration
	TopicReviews
)

// InterestOption is one row of the interest picker
type InterestOption struct {
	Category places.Category
	Label    string
	Selected bool
}

// Candidate is a search result annotated with its distance from the user
type Candidate struct {
	Index          int
	Place          places.Place
	DistanceMeters float64
}

// Reply is everything the renderer needs to answer one event
type Reply struct {
	Prompt Prompt
	Stage  session.Stage

	// Stale is set when the event arrived without a live session
	Stale bool

	Radii      []int
	Interests  []InterestOption
	Candidates []Candidate

	SelectedIndex  int
	Detail         *places.PlaceDetail
	DetailDistance float64
	PhotoURL       string

	RouteURL string

	Topic     Topic
	PlaceName string
	Text      string
}
