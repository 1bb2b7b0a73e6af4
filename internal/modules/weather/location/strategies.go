package location

import (
	"context"
	"errors"
	"fmt"
	"time"

	"weatherdash/internal/modules/weather/providers"
	"weatherdash/internal/modules/weather/types"
)

// Positioner yields the device position.
type Positioner interface {
	Position(ctx context.Context) (types.Coordinates, error)
}

// ReportedPosition is a position the browser already sent along with the request.
type ReportedPosition types.Coordinates

func (p ReportedPosition) Position(context.Context) (types.Coordinates, error) {
	return types.Coordinates(p), nil
}

type ReverseGeocoder interface {
	Reverse(ctx context.Context, c types.Coordinates) (types.Place, error)
}

type ForwardGeocoder interface {
	Lookup(ctx context.Context, name string) (types.Place, error)
}

type IPProvider interface {
	Name() string
	Locate(ctx context.Context, ip string) (providers.IPLocation, error)
}

const DefaultGeolocationTimeout = 10 * time.Second

// DeviceStrategy uses the device position and names it by reverse geocoding.
// Raw coordinates without a name are not trusted.
type DeviceStrategy struct {
	geocoder ReverseGeocoder
	timeout  time.Duration
}

func NewDeviceStrategy(geocoder ReverseGeocoder, timeout time.Duration) *DeviceStrategy {
	if timeout <= 0 {
		timeout = DefaultGeolocationTimeout
	}
	return &DeviceStrategy{geocoder: geocoder, timeout: timeout}
}

func (s *DeviceStrategy) Name() string { return "device" }

func (s *DeviceStrategy) Locate(ctx context.Context, req Request) (Candidate, error) {
	if req.Device == nil {
		return Candidate{}, ErrUnavailable
	}
	posCtx, cancel := context.WithTimeout(ctx, s.timeout)
	pos, err := req.Device.Position(posCtx)
	cancel()
	if err != nil {
		return Candidate{}, fmt.Errorf("device position: %w", err)
	}
	place, err := s.geocoder.Reverse(ctx, pos)
	if err != nil {
		return Candidate{}, err
	}
	if place.Name == "" {
		return Candidate{}, fmt.Errorf("reverse geocode: %w", providers.ErrNotFound)
	}
	return Candidate{Coordinates: pos, DisplayName: place.Name, CountryCode: place.CountryCode}, nil
}

var errNoCity = errors.New("provider returned no city")

// IPStrategy asks one IP geolocation provider.
type IPStrategy struct {
	provider IPProvider
}

func NewIPStrategy(provider IPProvider) *IPStrategy {
	return &IPStrategy{provider: provider}
}

func (s *IPStrategy) Name() string { return "ip:" + s.provider.Name() }

func (s *IPStrategy) Locate(ctx context.Context, req Request) (Candidate, error) {
	loc, err := s.provider.Locate(ctx, req.ClientIP)
	if err != nil {
		return Candidate{}, err
	}
	if loc.City == "" {
		return Candidate{}, errNoCity
	}
	if loc.Coordinates == (types.Coordinates{}) {
		return Candidate{}, fmt.Errorf("%s: no coordinates for %q", s.provider.Name(), loc.City)
	}
	return Candidate{Coordinates: loc.Coordinates, DisplayName: loc.City, CountryCode: loc.CountryCode}, nil
}

// DefaultCityStrategy geocodes a fixed city name.
type DefaultCityStrategy struct {
	geocoder ForwardGeocoder
	city     string
}

func NewDefaultCityStrategy(geocoder ForwardGeocoder, city string) *DefaultCityStrategy {
	return &DefaultCityStrategy{geocoder: geocoder, city: city}
}

func (s *DefaultCityStrategy) Name() string { return "default-city" }

func (s *DefaultCityStrategy) Locate(ctx context.Context, _ Request) (Candidate, error) {
	place, err := s.geocoder.Lookup(ctx, s.city)
	if err != nil {
		return Candidate{}, err
	}
	return Candidate{Coordinates: place.Coordinates, DisplayName: place.Name, CountryCode: place.CountryCode}, nil
}
