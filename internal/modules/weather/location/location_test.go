package location

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"weatherdash/internal/modules/weather/providers"
	"weatherdash/internal/modules/weather/types"
)

// captureHandler records log records for assertion in tests.
type captureHandler struct {
	mu      sync.Mutex
	records []map[string]slog.Value
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	m := map[string]slog.Value{"msg": slog.StringValue(r.Message), "level": slog.StringValue(r.Level.String())}
	r.Attrs(func(a slog.Attr) bool {
		m[a.Key] = a.Value
		return true
	})
	h.records = append(h.records, m)
	return nil
}

func (h *captureHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h *captureHandler) WithGroup(string) slog.Handler { return h }

func (h *captureHandler) recordsFor(msg string) []map[string]slog.Value {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []map[string]slog.Value
	for _, m := range h.records {
		if m["msg"].String() == msg {
			out = append(out, m)
		}
	}
	return out
}

type fakePositioner struct {
	pos types.Coordinates
	err error
}

func (f fakePositioner) Position(context.Context) (types.Coordinates, error) { return f.pos, f.err }

// blockingPositioner waits until its context expires, like a prompt nobody answers.
type blockingPositioner struct{}

func (blockingPositioner) Position(ctx context.Context) (types.Coordinates, error) {
	<-ctx.Done()
	return types.Coordinates{}, ctx.Err()
}

type fakeGeocoder struct {
	reverse    types.Place
	reverseErr error
	lookup     types.Place
	lookupErr  error
	lookedUp   []string
}

func (f *fakeGeocoder) Reverse(context.Context, types.Coordinates) (types.Place, error) {
	return f.reverse, f.reverseErr
}

func (f *fakeGeocoder) Lookup(_ context.Context, name string) (types.Place, error) {
	f.lookedUp = append(f.lookedUp, name)
	return f.lookup, f.lookupErr
}

type fakeIP struct {
	name  string
	loc   providers.IPLocation
	err   error
	calls int
	ip    string
}

func (f *fakeIP) Name() string { return f.name }

func (f *fakeIP) Locate(_ context.Context, ip string) (providers.IPLocation, error) {
	f.calls++
	f.ip = ip
	return f.loc, f.err
}

var belgrade = types.Place{Name: "Belgrade", CountryCode: "RS", Coordinates: types.Coordinates{Latitude: 44.8, Longitude: 20.46}}

func newChain(h slog.Handler, geo *fakeGeocoder, primary, secondary *fakeIP) *Chain {
	return NewChain(slog.New(h),
		NewDefaultCityStrategy(geo, "Belgrade"),
		NewDeviceStrategy(geo, time.Second),
		NewIPStrategy(primary),
		NewIPStrategy(secondary),
	)
}

func TestChain_secondaryIPProviderWins(t *testing.T) {
	h := &captureHandler{}
	geo := &fakeGeocoder{reverseErr: errors.New("network down"), lookup: belgrade}
	primary := &fakeIP{name: "geojs", err: errors.New("503")}
	secondary := &fakeIP{name: "ipapi", loc: providers.IPLocation{
		City: "Paris", CountryCode: "FR", Coordinates: types.Coordinates{Latitude: 48.8, Longitude: 2.3},
	}}
	chain := newChain(h, geo, primary, secondary)

	req := Request{Device: fakePositioner{err: errors.New("permission denied")}, ClientIP: "198.51.100.7"}
	got, err := chain.Resolve(context.Background(), req, types.LanguageSerbian)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Locale.Language != types.LanguageEnglish {
		t.Errorf("Locale = %q; want en", got.Locale.Language)
	}
	if got.Coordinates != (types.Coordinates{Latitude: 48.8, Longitude: 2.3}) {
		t.Errorf("Coordinates = %+v; want 48.8,2.3", got.Coordinates)
	}
	if got.DisplayName != "Paris" || got.Source != "ip:ipapi" {
		t.Errorf("Resolution = %+v", got)
	}
	if secondary.ip != "198.51.100.7" {
		t.Errorf("secondary queried for %q; want caller ip", secondary.ip)
	}
	if len(geo.lookedUp) != 0 {
		t.Errorf("default city looked up: %v", geo.lookedUp)
	}
	if n := len(h.recordsFor("location strategy failed")); n != 2 {
		t.Errorf("got %d strategy failure logs; want 2", n)
	}
}

func TestChain_deviceWins(t *testing.T) {
	geo := &fakeGeocoder{reverse: types.Place{Name: "Munich", CountryCode: "DE"}}
	primary := &fakeIP{name: "geojs"}
	chain := newChain(&captureHandler{}, geo, primary, &fakeIP{name: "ipapi"})

	pos := types.Coordinates{Latitude: 48.14, Longitude: 11.58}
	got, err := chain.Resolve(context.Background(), Request{Device: ReportedPosition(pos)}, types.LanguageEnglish)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Coordinates != pos || got.DisplayName != "Munich" || got.Locale.Language != types.LanguageGerman {
		t.Errorf("Resolution = %+v", got)
	}
	if primary.calls != 0 {
		t.Errorf("primary IP provider called %d times; want 0", primary.calls)
	}
}

func TestChain_deviceWithoutNameFallsThrough(t *testing.T) {
	geo := &fakeGeocoder{reverseErr: providers.ErrNotFound}
	primary := &fakeIP{name: "geojs", loc: providers.IPLocation{
		City: "Novi Sad", CountryCode: "RS", Coordinates: types.Coordinates{Latitude: 45.25, Longitude: 19.84},
	}}
	chain := newChain(&captureHandler{}, geo, primary, &fakeIP{name: "ipapi"})

	got, err := chain.Resolve(context.Background(), Request{Device: ReportedPosition{Latitude: 1, Longitude: 1}}, types.LanguageEnglish)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.DisplayName != "Novi Sad" || got.Locale.Language != types.LanguageSerbian {
		t.Errorf("Resolution = %+v", got)
	}
}

func TestChain_emptyCityFallsThroughToDefault(t *testing.T) {
	h := &captureHandler{}
	geo := &fakeGeocoder{lookup: belgrade}
	primary := &fakeIP{name: "geojs", loc: providers.IPLocation{CountryCode: "DE", Coordinates: types.Coordinates{Latitude: 51, Longitude: 9}}}
	secondary := &fakeIP{name: "ipapi", err: errors.New("rate limited")}
	chain := newChain(h, geo, primary, secondary)

	got, err := chain.Resolve(context.Background(), Request{}, types.LanguageGerman)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Source != "default-city" || got.DisplayName != "Belgrade" || got.Locale.Language != types.LanguageSerbian {
		t.Errorf("Resolution = %+v", got)
	}
	if len(h.recordsFor("location strategy skipped")) != 1 {
		t.Errorf("device strategy not reported as skipped")
	}
}

func TestChain_defaultCityFailureIsFatal(t *testing.T) {
	lookupErr := errors.New("geocoding down")
	geo := &fakeGeocoder{reverseErr: errors.New("x"), lookupErr: lookupErr}
	chain := newChain(&captureHandler{}, geo, &fakeIP{name: "geojs", err: errors.New("x")}, &fakeIP{name: "ipapi", err: errors.New("y")})

	_, err := chain.Resolve(context.Background(), Request{}, types.LanguageEnglish)
	if !errors.Is(err, ErrLocationUnavailable) {
		t.Fatalf("Resolve error = %v; want ErrLocationUnavailable", err)
	}
	if !errors.Is(err, lookupErr) {
		t.Errorf("Resolve error = %v; want wrapped lookup error", err)
	}
}

func TestChain_missingCountryKeepsCurrentLanguage(t *testing.T) {
	geo := &fakeGeocoder{}
	primary := &fakeIP{name: "geojs", loc: providers.IPLocation{City: "Somewhere", Coordinates: types.Coordinates{Latitude: 1, Longitude: 2}}}
	chain := newChain(&captureHandler{}, geo, primary, &fakeIP{name: "ipapi"})

	got, err := chain.Resolve(context.Background(), Request{}, types.LanguageSerbian)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Locale.Language != types.LanguageSerbian {
		t.Errorf("Locale = %q; want sr", got.Locale.Language)
	}
}

func TestDeviceStrategy_timeout(t *testing.T) {
	s := NewDeviceStrategy(&fakeGeocoder{reverse: belgrade}, 20*time.Millisecond)
	start := time.Now()
	_, err := s.Locate(context.Background(), Request{Device: blockingPositioner{}})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Locate error = %v; want deadline exceeded", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Locate took %v; want bounded by timeout", elapsed)
	}
}

func TestDeviceStrategy_unavailable(t *testing.T) {
	s := NewDeviceStrategy(&fakeGeocoder{}, 0)
	if s.timeout != DefaultGeolocationTimeout {
		t.Errorf("timeout = %v; want %v", s.timeout, DefaultGeolocationTimeout)
	}
	if _, err := s.Locate(context.Background(), Request{}); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Locate error = %v; want ErrUnavailable", err)
	}
}
