package places

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/iabalyuk/geoguide/geo"
)

const (
	yandexDefaultSearchURL    = "https://search-maps.yandex.ru/v1/"
	yandexDefaultStaticMapURL = "https://static-maps.yandex.ru/1.x/"
	yandexDefaultQuery        = "достопримечательность"
	yandexStaticMapZoom       = 16
)

// yandexQueries translates place types into free-text queries. The first rule
// with a matching type wins, so the order matters.
var yandexQueries = []struct {
	types []string
	text  string
}{
	{types: []string{"museum", "historic", "landmark"}, text: "музей|памятник|достопримечательность"},
	{types: []string{"park", "natural_feature"}, text: "парк|сад|природная достопримечательность"},
	{types: []string{"church", "mosque", "hindu_temple", "synagogue"}, text: "храм|церковь|мечеть|синагога"},
	{types: []string{"art_gallery", "library"}, text: "галерея|библиотека|выставка"},
	{types: []string{"amusement_park", "zoo", "aquarium"}, text: "зоопарк|аквариум|парк развлечений"},
}

// YandexDirectory is a Directory backed by the Yandex organization search API.
type YandexDirectory struct {
	client       *Client
	apiKey       string
	searchURL    string
	staticMapURL string
}

// NewYandexDirectory creates a Yandex Maps backend.
func NewYandexDirectory(client *Client, apiKey string) *YandexDirectory {
	return &YandexDirectory{
		client:       client,
		apiKey:       apiKey,
		searchURL:    yandexDefaultSearchURL,
		staticMapURL: yandexDefaultStaticMapURL,
	}
}

// WithSearchURL points the backend at another search endpoint.
func (d *YandexDirectory) WithSearchURL(searchURL string) *YandexDirectory {
	d.searchURL = searchURL
	return d
}

type yandexPhone struct {
	Formatted string `json:"formatted"`
}

type yandexHours struct {
	Text string `json:"text"`
}

type yandexCompanyMeta struct {
	ID      string        `json:"id"`
	Name    string        `json:"name"`
	Address string        `json:"address"`
	URL     string        `json:"url"`
	Phones  []yandexPhone `json:"Phones"`
	Hours   *yandexHours  `json:"Hours"`
}

type yandexFeature struct {
	Geometry struct {
		Coordinates []float64 `json:"coordinates"` // [lng, lat]
	} `json:"geometry"`
	Properties struct {
		Name            string             `json:"name"`
		Description     string             `json:"description"`
		CompanyMetaData *yandexCompanyMeta `json:"CompanyMetaData"`
	} `json:"properties"`
}

type yandexSearchResponse struct {
	Features []yandexFeature `json:"features"`
}

// QueryForTypes returns the free-text query used for a type filter.
func QueryForTypes(types []string) string {
	present := make(map[string]bool, len(types))
	for _, t := range types {
		present[t] = true
	}
	for _, rule := range yandexQueries {
		for _, t := range rule.types {
			if present[t] {
				return rule.text
			}
		}
	}
	return yandexDefaultQuery
}

// Search implements Directory.
func (d *YandexDirectory) Search(ctx context.Context, center geo.Coordinate, radiusMeters int, types []string) ([]Place, error) {
	if d.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	span := float64(radiusMeters) / 100000
	params := url.Values{}
	params.Set("apikey", d.apiKey)
	params.Set("text", QueryForTypes(types))
	params.Set("lang", "ru_RU")
	params.Set("ll", fmt.Sprintf("%f,%f", center.Lng, center.Lat))
	params.Set("spn", fmt.Sprintf("%f,%f", span, span))
	params.Set("results", strconv.Itoa(searchResultLimit))
	params.Set("type", "biz")

	var resp yandexSearchResponse
	if err := d.client.getJSON(ctx, d.searchURL+"?"+params.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("yandex search: %w", err)
	}

	result := make([]Place, 0, len(resp.Features))
	for _, f := range resp.Features {
		p, ok := f.toPlace()
		if !ok {
			continue
		}
		result = append(result, p)
	}
	return result, nil
}

// Detail implements Directory. The API has no lookup by id, so the id is used
// as the search text and the first match is taken.
func (d *YandexDirectory) Detail(ctx context.Context, placeID string) (PlaceDetail, error) {
	if d.apiKey == "" {
		return PlaceDetail{}, ErrNoAPIKey
	}
	if strings.TrimSpace(placeID) == "" {
		return PlaceDetail{}, ErrNoPlaceID
	}

	params := url.Values{}
	params.Set("apikey", d.apiKey)
	params.Set("text", placeID)
	params.Set("lang", "ru_RU")
	params.Set("results", "1")
	params.Set("type", "biz")

	var resp yandexSearchResponse
	if err := d.client.getJSON(ctx, d.searchURL+"?"+params.Encode(), &resp); err != nil {
		return PlaceDetail{}, fmt.Errorf("yandex place details %s: %w", placeID, err)
	}
	if len(resp.Features) == 0 {
		return PlaceDetail{}, fmt.Errorf("yandex place details %s: not found", placeID)
	}

	f := resp.Features[0]
	p, ok := f.toPlace()
	if !ok {
		return PlaceDetail{}, fmt.Errorf("yandex place details %s: malformed feature", placeID)
	}
	p.ID = placeID

	detail := PlaceDetail{Place: p, Address: p.Vicinity}
	if meta := f.Properties.CompanyMetaData; meta != nil {
		detail.Website = meta.URL
		if len(meta.Phones) > 0 {
			detail.Phone = meta.Phones[0].Formatted
		}
		if meta.Hours != nil && meta.Hours.Text != "" {
			detail.OpeningHours = []string{meta.Hours.Text}
		}
	}
	// Yandex has no place photos; a static map preview stands in for one.
	detail.PhotoReference = p.Location.String()
	return detail, nil
}

// PhotoURL implements PhotoLinker with a static map preview of the place.
func (d *YandexDirectory) PhotoURL(detail PlaceDetail) string {
	if detail.PhotoReference == "" {
		return ""
	}
	return d.StaticMapURL(detail.Location)
}

// StaticMapURL returns a map preview centred on c with a marker.
func (d *YandexDirectory) StaticMapURL(c geo.Coordinate) string {
	ll := fmt.Sprintf("%f,%f", c.Lng, c.Lat)
	params := url.Values{}
	params.Set("ll", ll)
	params.Set("z", strconv.Itoa(yandexStaticMapZoom))
	params.Set("l", "map")
	params.Set("pt", ll+",pm2rdm")
	params.Set("apikey", d.apiKey)
	return d.staticMapURL + "?" + params.Encode()
}

// RouteURL implements RouteLinker with a Yandex Maps pedestrian route.
func (d *YandexDirectory) RouteURL(from, to geo.Coordinate) string {
	return fmt.Sprintf("https://yandex.ru/maps/?rtext=%s~%s&rtt=pd", from.String(), to.String())
}

func (f yandexFeature) toPlace() (Place, bool) {
	coords := f.Geometry.Coordinates
	if len(coords) < 2 || strings.TrimSpace(f.Properties.Name) == "" {
		return Place{}, false
	}
	p := Place{
		Name:     f.Properties.Name,
		Location: geo.Coordinate{Lat: coords[1], Lng: coords[0]},
	}
	if meta := f.Properties.CompanyMetaData; meta != nil {
		p.ID = meta.ID
		p.Vicinity = meta.Address
	}
	return p, true
}
