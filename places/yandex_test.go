package places

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/iabalyuk/geoguide/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yandexFeaturesBody = `{
	"features": [
		{
			"geometry": {"coordinates": [37.6176, 55.7558]},
			"properties": {
				"name": "Государственный исторический музей",
				"CompanyMetaData": {
					"id": "1018907821",
					"address": "Красная пл., 1, Москва",
					"url": "https://shm.ru",
					"Phones": [{"formatted": "+7 (495) 692-40-19"}],
					"Hours": {"text": "ежедневно, 10:00–21:00"}
				}
			}
		},
		{"geometry": {"coordinates": [1]}, "properties": {"name": "Broken"}},
		{"geometry": {"coordinates": [37.62, 55.75]}, "properties": {"name": "Без метаданных"}}
	]
}`

func TestQueryForTypes(t *testing.T) {
	tests := []struct {
		types []string
		want  string
	}{
		{types: nil, want: "достопримечательность"},
		{types: []string{"museum"}, want: "музей|памятник|достопримечательность"},
		{types: []string{"zoo", "park"}, want: "парк|сад|природная достопримечательность"},
		{types: []string{"synagogue"}, want: "храм|церковь|мечеть|синагога"},
		{types: []string{"library"}, want: "галерея|библиотека|выставка"},
		{types: []string{"aquarium"}, want: "зоопарк|аквариум|парк развлечений"},
		{types: []string{"point_of_interest"}, want: "достопримечательность"},
		{types: AllTypes(), want: "музей|памятник|достопримечательность"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, QueryForTypes(tt.types), "types %v", tt.types)
	}
}

func TestYandexSearch(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		fmt.Fprint(w, yandexFeaturesBody)
	}))
	defer srv.Close()

	dir := NewYandexDirectory(newTestClient(), "ya-key").WithSearchURL(srv.URL + "/v1/")
	got, err := dir.Search(context.Background(), geo.Coordinate{Lat: 55.75, Lng: 37.62}, 500, []string{"museum"})
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "1018907821", got[0].ID)
	assert.Equal(t, "Государственный исторический музей", got[0].Name)
	assert.Equal(t, geo.Coordinate{Lat: 55.7558, Lng: 37.6176}, got[0].Location)
	assert.Equal(t, "Красная пл., 1, Москва", got[0].Vicinity)
	assert.Equal(t, "Без метаданных", got[1].Name)

	assert.Equal(t, "ya-key", gotQuery.Get("apikey"))
	assert.Equal(t, "музей|памятник|достопримечательность", gotQuery.Get("text"))
	assert.Equal(t, "37.620000,55.750000", gotQuery.Get("ll"))
	assert.Equal(t, "0.005000,0.005000", gotQuery.Get("spn"))
	assert.Equal(t, "biz", gotQuery.Get("type"))
	assert.Equal(t, "20", gotQuery.Get("results"))
}

func TestYandexDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1018907821", r.URL.Query().Get("text"))
		assert.Equal(t, "1", r.URL.Query().Get("results"))
		fmt.Fprint(w, yandexFeaturesBody)
	}))
	defer srv.Close()

	dir := NewYandexDirectory(newTestClient(), "ya-key").WithSearchURL(srv.URL)
	detail, err := dir.Detail(context.Background(), "1018907821")
	require.NoError(t, err)

	assert.Equal(t, "1018907821", detail.ID)
	assert.Equal(t, "Красная пл., 1, Москва", detail.Address)
	assert.Equal(t, "+7 (495) 692-40-19", detail.Phone)
	assert.Equal(t, "https://shm.ru", detail.Website)
	assert.Equal(t, []string{"ежедневно, 10:00–21:00"}, detail.OpeningHours)
	assert.Nil(t, detail.Rating)
	assert.Equal(t, "55.755800,37.617600", detail.PhotoReference)
	photo := dir.PhotoURL(detail)
	assert.Contains(t, photo, "static-maps.yandex.ru")
	assert.Contains(t, photo, "pm2rdm")
	assert.Empty(t, dir.PhotoURL(PlaceDetail{}))
}

func TestYandexDetailWithoutID(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		fmt.Fprint(w, yandexFeaturesBody)
	}))
	defer srv.Close()

	dir := NewYandexDirectory(newTestClient(), "ya-key").WithSearchURL(srv.URL)
	_, err := dir.Detail(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoPlaceID)
	assert.Zero(t, requests)
}

func TestYandexDetailNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"features": []}`)
	}))
	defer srv.Close()

	dir := NewYandexDirectory(newTestClient(), "ya-key").WithSearchURL(srv.URL)
	_, err := dir.Detail(context.Background(), "nope")
	assert.ErrorContains(t, err, "not found")
}

func TestYandexRouteURL(t *testing.T) {
	dir := NewYandexDirectory(newTestClient(), "ya-key")
	got := dir.RouteURL(geo.Coordinate{Lat: 55.75, Lng: 37.62}, geo.Coordinate{Lat: 55.7558, Lng: 37.6176})
	assert.Equal(t, "https://yandex.ru/maps/?rtext=55.750000,37.620000~55.755800,37.617600&rtt=pd", got)
}
