package places

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/iabalyuk/geoguide/geo"
)

const (
	googleDefaultBaseURL = "https://maps.googleapis.com/maps/api"
	googleDetailFields   = "place_id,name,formatted_address,rating,photos,geometry,opening_hours,website,price_level,formatted_phone_number"
	googlePhotoMaxWidth  = 600
	googleLanguage       = "ru"

	// searchResultLimit is how many results a backend keeps from one search.
	searchResultLimit = 20
)

// GoogleDirectory is a Directory backed by the Google Places web service.
type GoogleDirectory struct {
	client  *Client
	apiKey  string
	baseURL string
}

// NewGoogleDirectory creates a Google Places backend.
func NewGoogleDirectory(client *Client, apiKey string) *GoogleDirectory {
	return &GoogleDirectory{client: client, apiKey: apiKey, baseURL: googleDefaultBaseURL}
}

// WithBaseURL points the backend at another API root.
func (d *GoogleDirectory) WithBaseURL(baseURL string) *GoogleDirectory {
	d.baseURL = strings.TrimRight(baseURL, "/")
	return d
}

type googleLocation struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type googleGeometry struct {
	Location googleLocation `json:"location"`
}

type googlePhoto struct {
	PhotoReference string `json:"photo_reference"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
}

type googleOpeningHours struct {
	OpenNow     bool     `json:"open_now"`
	WeekdayText []string `json:"weekday_text"`
}

type googlePlaceResult struct {
	PlaceID              string              `json:"place_id"`
	Name                 string              `json:"name"`
	Geometry             googleGeometry      `json:"geometry"`
	Vicinity             string              `json:"vicinity"`
	FormattedAddress     string              `json:"formatted_address"`
	Rating               *float64            `json:"rating"`
	FormattedPhoneNumber string              `json:"formatted_phone_number"`
	Website              string              `json:"website"`
	Photos               []googlePhoto       `json:"photos"`
	OpeningHours         *googleOpeningHours `json:"opening_hours"`
}

type googleNearbyResponse struct {
	Results      []googlePlaceResult `json:"results"`
	Status       string              `json:"status"`
	ErrorMessage string              `json:"error_message"`
}

type googleDetailResponse struct {
	Result       googlePlaceResult `json:"result"`
	Status       string            `json:"status"`
	ErrorMessage string            `json:"error_message"`
}

// Search implements Directory.
func (d *GoogleDirectory) Search(ctx context.Context, center geo.Coordinate, radiusMeters int, types []string) ([]Place, error) {
	if d.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	params := url.Values{}
	params.Set("location", fmt.Sprintf("%f,%f", center.Lat, center.Lng))
	params.Set("radius", strconv.Itoa(radiusMeters))
	params.Set("key", d.apiKey)
	params.Set("language", googleLanguage)
	if joined := joinUniqueTypes(types); joined != "" {
		params.Set("type", joined)
	}

	var resp googleNearbyResponse
	if err := d.client.getJSON(ctx, d.baseURL+"/place/nearbysearch/json?"+params.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("google nearby search: %w", err)
	}
	if resp.Status != "OK" && resp.Status != "ZERO_RESULTS" {
		return nil, fmt.Errorf("google nearby search: status %s: %s", resp.Status, resp.ErrorMessage)
	}

	result := make([]Place, 0, len(resp.Results))
	for _, r := range resp.Results {
		if r.Name == "" {
			continue
		}
		result = append(result, r.toPlace())
		if len(result) >= searchResultLimit {
			break
		}
	}
	return result, nil
}

// Detail implements Directory.
func (d *GoogleDirectory) Detail(ctx context.Context, placeID string) (PlaceDetail, error) {
	if d.apiKey == "" {
		return PlaceDetail{}, ErrNoAPIKey
	}

	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("key", d.apiKey)
	params.Set("language", googleLanguage)
	params.Set("fields", googleDetailFields)

	var resp googleDetailResponse
	if err := d.client.getJSON(ctx, d.baseURL+"/place/details/json?"+params.Encode(), &resp); err != nil {
		return PlaceDetail{}, fmt.Errorf("google place details %s: %w", placeID, err)
	}
	if resp.Status != "OK" {
		return PlaceDetail{}, fmt.Errorf("google place details %s: status %s: %s", placeID, resp.Status, resp.ErrorMessage)
	}

	r := resp.Result
	if r.PlaceID == "" {
		r.PlaceID = placeID
	}
	detail := PlaceDetail{
		Place:   r.toPlace(),
		Address: r.FormattedAddress,
		Rating:  r.Rating,
		Phone:   r.FormattedPhoneNumber,
		Website: r.Website,
	}
	if detail.Address == "" {
		detail.Address = r.Vicinity
	}
	if r.OpeningHours != nil {
		detail.OpeningHours = r.OpeningHours.WeekdayText
	}
	if len(r.Photos) > 0 && r.Photos[0].PhotoReference != "" {
		detail.PhotoReference = r.Photos[0].PhotoReference
	}
	return detail, nil
}

// RouteURL implements RouteLinker with a Google Maps walking route.
func (d *GoogleDirectory) RouteURL(from, to geo.Coordinate) string {
	params := url.Values{}
	params.Set("api", "1")
	params.Set("origin", from.String())
	params.Set("destination", to.String())
	params.Set("travelmode", "walking")
	return "https://www.google.com/maps/dir/?" + params.Encode()
}

// PhotoURL implements PhotoLinker.
func (d *GoogleDirectory) PhotoURL(detail PlaceDetail) string {
	if detail.PhotoReference == "" {
		return ""
	}
	params := url.Values{}
	params.Set("maxwidth", strconv.Itoa(googlePhotoMaxWidth))
	params.Set("photoreference", detail.PhotoReference)
	params.Set("key", d.apiKey)
	return d.baseURL + "/place/photo?" + params.Encode()
}

func (r googlePlaceResult) toPlace() Place {
	return Place{
		ID:       r.PlaceID,
		Name:     r.Name,
		Location: geo.Coordinate{Lat: r.Geometry.Location.Lat, Lng: r.Geometry.Location.Lng},
		Vicinity: r.Vicinity,
	}
}

// joinUniqueTypes deduplicates and sorts the type filter so requests are stable.
func joinUniqueTypes(types []string) string {
	seen := make(map[string]bool, len(types))
	unique := make([]string, 0, len(types))
	for _, t := range types {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		unique = append(unique, t)
	}
	sort.Strings(unique)
	return strings.Join(unique, "|")
}
