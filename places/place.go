package places

import (
	"context"
	"errors"

	"github.com/iabalyuk/geoguide/geo"
)

// ErrNoAPIKey is returned by a directory that was configured without credentials.
var ErrNoAPIKey = errors.New("places: API key is not configured")

// ErrNoPlaceID is returned by Detail for a place the provider gave no id.
var ErrNoPlaceID = errors.New("places: place has no id")

// Place is a search result summary.
type Place struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Location geo.Coordinate `json:"location"`
	Vicinity string         `json:"vicinity,omitempty"` // Short address, when the provider returns one
}

// PlaceDetail is the full record of a place. Every field beyond the embedded
// summary is optional and left zero when the provider has no data.
type PlaceDetail struct {
	Place
	Address        string   `json:"address,omitempty"`
	Rating         *float64 `json:"rating,omitempty"`
	Phone          string   `json:"phone,omitempty"`
	Website        string   `json:"website,omitempty"`
	PhotoReference string   `json:"photo_reference,omitempty"` // Provider photo handle; the URL is built by a PhotoLinker
	OpeningHours   []string `json:"opening_hours,omitempty"`
}

// DetailFromPlace builds a detail record carrying only the summary fields.
func DetailFromPlace(p Place) PlaceDetail {
	return PlaceDetail{Place: p, Address: p.Vicinity}
}

// Directory searches places around a point and fetches their details.
type Directory interface {
	// Search returns places within radiusMeters of center, in provider order.
	// types is the provider place-type filter; an empty slice means no filter.
	Search(ctx context.Context, center geo.Coordinate, radiusMeters int, types []string) ([]Place, error)

	// Detail fetches the full record of a place by its provider id.
	Detail(ctx context.Context, placeID string) (PlaceDetail, error)
}

// RouteLinker builds a link that opens a walking route in a maps application.
type RouteLinker interface {
	RouteURL(from, to geo.Coordinate) string
}

// PhotoLinker turns a detail's photo reference into a fetchable URL.
// URLs carry the provider credentials, so they are built when a reply is
// rendered and never stored.
type PhotoLinker interface {
	PhotoURL(detail PlaceDetail) string
}
