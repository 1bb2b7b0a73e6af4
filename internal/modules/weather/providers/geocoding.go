package providers

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-resty/resty/v2"

	"weatherdash/internal/modules/weather/types"
)

type geocodingResponse struct {
	Results []struct {
		Name        string  `json:"name"`
		Latitude    float64 `json:"latitude"`
		Longitude   float64 `json:"longitude"`
		Country     string  `json:"country"`
		CountryCode string  `json:"country_code"`
		Admin1      string  `json:"admin1"`
	} `json:"results"`
}

func (r geocodingResponse) places() []types.Place {
	out := make([]types.Place, 0, len(r.Results))
	for _, p := range r.Results {
		out = append(out, types.Place{
			Name:        p.Name,
			Country:     p.Country,
			CountryCode: p.CountryCode,
			Admin1:      p.Admin1,
			Coordinates: types.Coordinates{Latitude: p.Latitude, Longitude: p.Longitude},
		})
	}
	return out
}

// Geocoder talks to the open-meteo geocoding search endpoint.
type Geocoder struct {
	client *resty.Client
	url    string
}

func NewGeocoder(client *resty.Client, url string) *Geocoder {
	return &Geocoder{client: client, url: url}
}

// Search returns up to count places matching name. No match is an empty slice.
func (g *Geocoder) Search(ctx context.Context, name string, count int) ([]types.Place, error) {
	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"name":     name,
			"count":    strconv.Itoa(count),
			"language": "en",
			"format":   "json",
		}).
		Get(g.url)
	if err != nil {
		return nil, fmt.Errorf("%w: geocode %q: %v", ErrUpstream, name, err)
	}
	var out geocodingResponse
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	return out.places(), nil
}

// Lookup returns the best match for name, or ErrNotFound.
func (g *Geocoder) Lookup(ctx context.Context, name string) (types.Place, error) {
	places, err := g.Search(ctx, name, 1)
	if err != nil {
		return types.Place{}, err
	}
	if len(places) == 0 {
		return types.Place{}, fmt.Errorf("geocode %q: %w", name, ErrNotFound)
	}
	return places[0], nil
}

// Reverse returns the nearest named place for c, or ErrNotFound.
func (g *Geocoder) Reverse(ctx context.Context, c types.Coordinates) (types.Place, error) {
	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"latitude":  strconv.FormatFloat(c.Latitude, 'f', -1, 64),
			"longitude": strconv.FormatFloat(c.Longitude, 'f', -1, 64),
			"count":     "1",
			"language":  "en",
			"format":    "json",
		}).
		Get(g.url)
	if err != nil {
		return types.Place{}, fmt.Errorf("%w: reverse geocode: %v", ErrUpstream, err)
	}
	var out geocodingResponse
	if err := decode(resp, &out); err != nil {
		return types.Place{}, err
	}
	places := out.places()
	if len(places) == 0 {
		return types.Place{}, fmt.Errorf("reverse geocode %.4f,%.4f: %w", c.Latitude, c.Longitude, ErrNotFound)
	}
	return places[0], nil
}
