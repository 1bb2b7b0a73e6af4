package providers

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"

	"weatherdash/internal/modules/weather/types"
)

// IPLocation is what an IP geolocation provider knows about a caller. City may
// be empty.
type IPLocation struct {
	City        string
	CountryCode string
	Coordinates types.Coordinates
}

type ipResponse struct {
	City        string    `json:"city"`
	CountryCode string    `json:"country_code"`
	Latitude    flexFloat `json:"latitude"`
	Longitude   flexFloat `json:"longitude"`
	Error       bool      `json:"error"`
	Reason      string    `json:"reason"`
}

func (r ipResponse) location() IPLocation {
	return IPLocation{
		City:        r.City,
		CountryCode: r.CountryCode,
		Coordinates: types.Coordinates{Latitude: float64(r.Latitude), Longitude: float64(r.Longitude)},
	}
}

// GeoJS is the primary IP geolocation provider (get.geojs.io).
type GeoJS struct {
	client *resty.Client
	base   string
}

func NewGeoJS(client *resty.Client, base string) *GeoJS {
	return &GeoJS{client: client, base: strings.TrimRight(base, "/")}
}

func (g *GeoJS) Name() string { return "geojs" }

// Locate looks up ip, or the address the request originates from when ip is
// empty.
func (g *GeoJS) Locate(ctx context.Context, ip string) (IPLocation, error) {
	u := g.base + ".json"
	if ip != "" {
		u = g.base + "/" + url.PathEscape(ip) + ".json"
	}
	return locateIP(ctx, g.client, u)
}

// IPAPI is the secondary IP geolocation provider (ipapi.co).
type IPAPI struct {
	client *resty.Client
	base   string
}

func NewIPAPI(client *resty.Client, base string) *IPAPI {
	return &IPAPI{client: client, base: strings.TrimRight(base, "/")}
}

func (i *IPAPI) Name() string { return "ipapi" }

func (i *IPAPI) Locate(ctx context.Context, ip string) (IPLocation, error) {
	u := i.base + "/json/"
	if ip != "" {
		u = i.base + "/" + url.PathEscape(ip) + "/json/"
	}
	return locateIP(ctx, i.client, u)
}

func locateIP(ctx context.Context, client *resty.Client, u string) (IPLocation, error) {
	resp, err := client.R().SetContext(ctx).Get(u)
	if err != nil {
		return IPLocation{}, fmt.Errorf("%w: ip lookup: %v", ErrUpstream, err)
	}
	var out ipResponse
	if err := decode(resp, &out); err != nil {
		return IPLocation{}, err
	}
	// ipapi reports quota and lookup failures with a 200 and an error flag.
	if out.Error {
		return IPLocation{}, fmt.Errorf("%w: ip lookup: %s", ErrUpstream, out.Reason)
	}
	return out.location(), nil
}
