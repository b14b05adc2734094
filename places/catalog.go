package places

// Category is an interest category offered to the user.
type Category string

const (
	CategoryHistoric      Category = "historic"
	CategoryNature        Category = "nature"
	CategoryArchitecture  Category = "architecture"
	CategoryCulture       Category = "culture"
	CategoryEntertainment Category = "entertainment"
)

type categoryInfo struct {
	label string
	types []string
}

// categoryOrder is the display order of the categories.
var categoryOrder = []Category{
	CategoryHistoric,
	CategoryNature,
	CategoryArchitecture,
	CategoryCulture,
	CategoryEntertainment,
}

var categories = map[Category]categoryInfo{
	CategoryHistoric:      {label: "Исторические", types: []string{"museum", "historic", "landmark"}},
	CategoryNature:        {label: "Природные", types: []string{"park", "natural_feature"}},
	CategoryArchitecture:  {label: "Архитектура", types: []string{"church", "mosque", "hindu_temple", "synagogue", "point_of_interest"}},
	CategoryCulture:       {label: "Культурные", types: []string{"art_gallery", "library"}},
	CategoryEntertainment: {label: "Развлечения", types: []string{"amusement_park", "zoo", "aquarium"}},
}

// Categories returns every category in display order.
func Categories() []Category {
	out := make([]Category, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}

// Valid reports whether c belongs to the category enumeration.
func (c Category) Valid() bool {
	_, ok := categories[c]
	return ok
}

// Label returns the user-facing name of the category.
func (c Category) Label() string {
	return categories[c].label
}

// Types returns the provider place types mapped to the category.
func (c Category) Types() []string {
	info, ok := categories[c]
	if !ok {
		return nil
	}
	out := make([]string, len(info.types))
	copy(out, info.types)
	return out
}

// ParseCategory accepts either the category code or its label.
func ParseCategory(s string) (Category, bool) {
	if c := Category(s); c.Valid() {
		return c, true
	}
	for _, c := range categoryOrder {
		if categories[c].label == s {
			return c, true
		}
	}
	return "", false
}

// AllTypes returns the union of every category's types, deduplicated, in display order.
func AllTypes() []string {
	return TypesFor(categoryOrder)
}

// TypesFor returns the union of the types mapped to cats, deduplicated.
// Order follows the category enumeration, not the order of cats.
func TypesFor(cats []Category) []string {
	wanted := make(map[Category]bool, len(cats))
	for _, c := range cats {
		wanted[c] = true
	}
	seen := make(map[string]bool)
	var out []string
	for _, c := range categoryOrder {
		if !wanted[c] {
			continue
		}
		for _, t := range categories[c].types {
			if seen[t] {
				continue
			}
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
