package dialogue

import (
	"github.com/iabalyuk/geoguide/places"
	"github.com/iabalyuk/geoguide/session"
)

// AllowedRadii are the search radii offered to the user, in meters
var AllowedRadii = []int{100, 300, 500, 1000}

// RadiusAllowed reports whether meters is one of AllowedRadii
func RadiusAllowed(meters int) bool {
	for _, r := range AllowedRadii {
		if r == meters {
			return true
		}
	}
	return false
}

// ResolveTypeFilter returns the provider types for the chosen interests.
// No interests means every category.
func ResolveTypeFilter(in session.Interests) []string {
	if in.Len() == 0 {
		return places.AllTypes()
	}
	return places.TypesFor(in.Sorted())
}

func interestOptions(in session.Interests) []InterestOption {
	cats := places.Categories()
	out := make([]InterestOption, 0, len(cats))
	for _, c := range cats {
		out = append(out, InterestOption{Category: c, Label: c.Label(), Selected: in.Has(c)})
	}
	return out
}

func radii() []int {
	out := make([]int, len(AllowedRadii))
	copy(out, AllowedRadii)
	return out
}
